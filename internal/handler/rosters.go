package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paiban/oncall/internal/repository"
	"github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/roster"
)

// RosterDetail 已保存值班表详情
type RosterDetail struct {
	*model.Roster
	Table []model.RosterRow `json:"table"`
}

// ListRostersResponse 值班表列表响应
type ListRostersResponse struct {
	Rosters []*model.Roster `json:"rosters"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// ListRosters 列出已保存的值班表
func (h *Handler) ListRosters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.DefaultListFilter().
		WithSearch(q.Get("search")).
		WithDateRange(q.Get("start_date"), q.Get("end_date"))

	if limit := q.Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			filter = filter.WithLimit(l)
		}
	}
	if offset := q.Get("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil {
			filter = filter.WithOffset(o)
		}
	}

	filter = filter.Normalize()
	rosters, total, err := h.rosters.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.From(err))
		return
	}

	respondJSON(w, http.StatusOK, ListRostersResponse{
		Rosters: rosters,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

// GetRoster 获取值班表详情
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	saved, ok := h.loadRoster(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, RosterDetail{
		Roster: saved,
		Table:  roster.FormatTable(saved.Assignments),
	})
}

// GetRosterCSV 导出已保存的值班表
func (h *Handler) GetRosterCSV(w http.ResponseWriter, r *http.Request) {
	saved, ok := h.loadRoster(w, r)
	if !ok {
		return
	}
	writeRosterCSV(w, saved.Assignments, "roster-"+saved.StartDate+".csv")
}

// DeleteRoster 删除值班表
func (h *Handler) DeleteRoster(w http.ResponseWriter, r *http.Request) {
	id, appErr := parseID(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	if err := h.rosters.Delete(r.Context(), id); err != nil {
		respondError(w, errors.From(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) loadRoster(w http.ResponseWriter, r *http.Request) (*model.Roster, bool) {
	id, appErr := parseID(r)
	if appErr != nil {
		respondError(w, appErr)
		return nil, false
	}
	saved, err := h.rosters.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.From(err))
		return nil, false
	}
	return saved, true
}

func parseID(r *http.Request) (uuid.UUID, *errors.AppError) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errors.InvalidInput("id", "无效的值班表ID格式")
	}
	return id, nil
}
