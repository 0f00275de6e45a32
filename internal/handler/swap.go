package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paiban/oncall/internal/constraints"
	"github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/swap"
)

// SwapEvaluateRequest 换人评估请求
type SwapEvaluateRequest struct {
	swap.Roster
	swap.SwapRequest
}

// SwapRecommendRequest 替班推荐请求
type SwapRecommendRequest struct {
	swap.Roster
	Index   int        `json:"index"`
	Role    model.Role `json:"role"`
	Limit   int        `json:"limit,omitempty"`
	Exclude []string   `json:"exclude,omitempty"`
}

// SwapRecommendResponse 替班推荐响应
type SwapRecommendResponse struct {
	Index           int                   `json:"index"`
	Role            model.Role            `json:"role"`
	Recommendations []swap.Recommendation `json:"recommendations"`
}

// EvaluateSwap 评估换人API
func (h *Handler) EvaluateSwap(w http.ResponseWriter, r *http.Request) {
	var req SwapEvaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := swap.NewSwapEvaluator(h.cfg.Roster.Rules()).EvaluateSwap(req.Roster, req.SwapRequest)
	if err != nil {
		respondError(w, errors.From(err))
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// RecommendSwap 替班推荐API
func (h *Handler) RecommendSwap(w http.ResponseWriter, r *http.Request) {
	var req SwapRecommendRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Role == "" {
		req.Role = model.RolePrimary
	}

	opts := swap.DefaultRecommendOptions()
	if req.Limit > 0 {
		opts.MaxRecommendations = req.Limit
	}
	opts.ExcludeMembers = req.Exclude

	recs, err := swap.NewRecommender(h.cfg.Roster.Rules()).RecommendReplacements(req.Roster, req.Index, req.Role, opts)
	if err != nil {
		respondError(w, errors.From(err))
		return
	}
	respondJSON(w, http.StatusOK, SwapRecommendResponse{
		Index:           req.Index,
		Role:            req.Role,
		Recommendations: recs,
	})
}

// ListConstraints 约束库API
func (h *Handler) ListConstraints(w http.ResponseWriter, r *http.Request) {
	rules := h.cfg.Roster.Rules()
	respondJSON(w, http.StatusOK, constraints.LibraryResponse{
		Rules:   rules,
		Library: constraints.GetLibrary(rules),
	})
}

// GetConstraint 单个约束定义API
func (h *Handler) GetConstraint(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	def, ok := constraints.GetByName(h.cfg.Roster.Rules(), name)
	if !ok {
		respondError(w, errors.NotFound("约束", name))
		return
	}
	respondJSON(w, http.StatusOK, def)
}
