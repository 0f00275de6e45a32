package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/export"
	"github.com/paiban/oncall/pkg/logger"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/roster"
)

// NotifyResponse 通知结果
type NotifyResponse struct {
	RosterID string `json:"roster_id"`
	Date     string `json:"date"`
	Message  string `json:"message"`
}

// HTML 将分配结果渲染为可打印的HTML页面
func (h *Handler) HTML(w http.ResponseWriter, r *http.Request) {
	var req AssignmentsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	writeRosterHTML(w, "值班表", req.Assignments)
}

// GetRosterHTML 渲染已保存的值班表
func (h *Handler) GetRosterHTML(w http.ResponseWriter, r *http.Request) {
	saved, ok := h.loadRoster(w, r)
	if !ok {
		return
	}
	writeRosterHTML(w, saved.Name, saved.Assignments)
}

func writeRosterHTML(w http.ResponseWriter, title string, assignments []model.Assignment) {
	var buf bytes.Buffer
	if err := export.WriteHTML(&buf, title, roster.FormatTable(assignments)); err != nil {
		respondError(w, errors.From(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// NotifyRoster 推送已保存值班表某天的交接消息，date 缺省为当天
func (h *Handler) NotifyRoster(w http.ResponseWriter, r *http.Request) {
	if h.notifier == nil {
		respondError(w, errors.New(errors.CodeUnavailable, "未配置 Slack 通知"))
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = model.FormatDate(time.Now().UTC())
	}
	if _, err := model.ParseDate(date); err != nil {
		respondError(w, errors.InvalidInput("date", "日期格式错误，应为 YYYY-MM-DD"))
		return
	}

	saved, ok := h.loadRoster(w, r)
	if !ok {
		return
	}

	text, err := h.notifier.Handoff(r.Context(), saved.Assignments, date)
	if err != nil {
		respondError(w, errors.From(err))
		return
	}

	logger.WithContext(r.Context()).Info().
		Str("roster_id", saved.ID.String()).
		Str("date", date).
		Msg("值班交接已推送")

	respondJSON(w, http.StatusOK, NotifyResponse{
		RosterID: saved.ID.String(),
		Date:     date,
		Message:  text,
	})
}
