package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/export"
	"github.com/paiban/oncall/pkg/model"
)

// ImportConfig 导入YAML配置，返回JSON
// 请求体可以是 YAML 文本，也可以是 multipart 表单中的 file 字段
func (h *Handler) ImportConfig(w http.ResponseWriter, r *http.Request) {
	data, appErr := readConfigBody(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	cfg, err := export.UnmarshalYAML(data)
	if err != nil {
		respondError(w, errors.From(err))
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// ExportConfig 将JSON配置导出为YAML附件
func (h *Handler) ExportConfig(w http.ResponseWriter, r *http.Request) {
	var cfg export.RosterConfig
	if err := decodeJSON(r, &cfg); err != nil {
		respondError(w, err)
		return
	}

	data, err := export.MarshalYAML(cfg)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInternal, "生成YAML失败"))
		return
	}
	respondAttachment(w, "application/x-yaml", "oncall-config.yaml", data)
}

func readConfigBody(r *http.Request) ([]byte, *errors.AppError) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "读取请求失败")
		}
		return data, nil
	}

	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "解析上传表单失败")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.InvalidInput("file", "缺少配置文件")
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".yaml", ".yml":
	default:
		return nil, errors.New(errors.CodeUnsupportedFormat, "只支持 .yaml 或 .yml 文件").WithDetails(header.Filename)
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "读取上传文件失败")
	}
	return data, nil
}

// GetDraft 读取草稿
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	draft, err := h.drafts.Load(r.Context(), key)
	if err != nil {
		respondError(w, errors.From(err))
		return
	}
	if draft == nil {
		respondError(w, errors.NotFound("草稿", key))
		return
	}
	respondJSON(w, http.StatusOK, draft)
}

// SaveDraft 保存草稿
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var draft model.Draft
	if err := decodeJSON(r, &draft); err != nil {
		respondError(w, err)
		return
	}
	if err := h.drafts.Save(r.Context(), chi.URLParam(r, "key"), &draft); err != nil {
		respondError(w, errors.From(err))
		return
	}
	respondJSON(w, http.StatusOK, draft)
}

// ClearDraft 删除草稿
func (h *Handler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Clear(r.Context(), chi.URLParam(r, "key")); err != nil {
		respondError(w, errors.From(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
