// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/paiban/oncall/internal/config"
	"github.com/paiban/oncall/internal/database"
	"github.com/paiban/oncall/internal/metrics"
	"github.com/paiban/oncall/internal/middleware"
	"github.com/paiban/oncall/internal/repository"
	"github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/logger"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/notify"
)

// maxBodyBytes 请求体上限
const maxBodyBytes = 1 << 20

// BuildInfo 构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// DraftStore 草稿存储
type DraftStore interface {
	Save(ctx context.Context, key string, draft *model.Draft) error
	Load(ctx context.Context, key string) (*model.Draft, error)
	Clear(ctx context.Context, key string) error
}

// Handler HTTP处理器
type Handler struct {
	cfg      *config.Config
	db       *database.DB
	rosters  repository.RosterRepositoryInterface
	drafts   DraftStore
	metrics  *metrics.Registry
	notifier *notify.Notifier
	build    BuildInfo
}

// New 创建处理器
func New(cfg *config.Config, db *database.DB, registry *metrics.Registry, build BuildInfo) *Handler {
	if registry == nil {
		registry = metrics.GetRegistry()
	}
	h := &Handler{
		cfg:     cfg,
		db:      db,
		rosters: repository.NewRosterRepository(db),
		drafts:  repository.NewDraftRepository(db),
		metrics: registry,
		build:   build,
	}
	if cfg.Notify.Slack.Enabled() {
		n, err := notify.NewSlackNotifier(cfg.Notify.Slack)
		if err != nil {
			logger.Warn().Err(err).Msg("Slack 通知初始化失败")
		} else {
			h.notifier = n
		}
	}
	return h
}

// Routes 返回配置好所有路由的处理器
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// 中间件执行顺序：requestID -> realIP -> 响应头 -> 日志 -> 恢复 -> cors -> 限流
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestIDHeader)
	r.Use(middleware.LoggingMiddleware(h.metrics))
	r.Use(middleware.RecoveryMiddleware)
	if h.cfg.API.CORS.Enabled {
		r.Use(middleware.CORSMiddleware(h.cfg.API.CORS.Origins))
	}
	if h.cfg.API.RateLimit > 0 {
		r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(float64(h.cfg.API.RateLimit))))
	}

	// 系统端点
	r.Get("/health", h.Health)
	r.Get("/version", h.Version)
	if h.cfg.Metrics.Enabled {
		r.Method(http.MethodGet, h.cfg.Metrics.Path, h.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(middleware.AuthConfig{APIKey: h.cfg.API.APIKey}))
		if h.cfg.API.Timeout > 0 {
			r.Use(chimw.Timeout(h.cfg.API.Timeout))
		}

		r.Route("/roster", func(r chi.Router) {
			r.Post("/generate", h.Generate)
			r.Post("/table", h.Table)
			r.Post("/validate", h.Validate)
			r.Post("/csv", h.CSV)
			r.Post("/html", h.HTML)
			r.Post("/swap/evaluate", h.EvaluateSwap)
			r.Post("/swap/recommend", h.RecommendSwap)
		})

		r.Route("/rosters", func(r chi.Router) {
			r.Get("/", h.ListRosters)
			r.Get("/{id}", h.GetRoster)
			r.Get("/{id}/csv", h.GetRosterCSV)
			r.Get("/{id}/html", h.GetRosterHTML)
			r.Post("/{id}/notify", h.NotifyRoster)
			r.Delete("/{id}", h.DeleteRoster)
		})

		r.Route("/config", func(r chi.Router) {
			r.Post("/import", h.ImportConfig)
			r.Post("/export", h.ExportConfig)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/{key}", h.GetDraft)
			r.Put("/{key}", h.SaveDraft)
			r.Delete("/{key}", h.ClearDraft)
		})

		r.Get("/constraints", h.ListConstraints)
		r.Get("/constraints/{name}", h.GetConstraint)

		r.Route("/stats", func(r chi.Router) {
			r.Post("/fairness", h.Fairness)
			r.Post("/coverage", h.Coverage)
		})
	})

	return r
}

// Health 健康检查
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "service": "oncall"}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Health(ctx); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			respondJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	respondJSON(w, http.StatusOK, status)
}

// Version 版本信息
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.build)
}

// decodeJSON 解析JSON请求体
func decodeJSON(r *http.Request, v interface{}) *errors.AppError {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败")
	}
	return nil
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	body := map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	}
	if len(err.Fields) > 0 {
		body["fields"] = err.Fields
	}
	respondJSON(w, err.HTTPStatus, body)
}

// respondAttachment 返回文件下载
func respondAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(filename, `"`, "")+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
