package handler

import (
	"net/http"

	"github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/stats"
)

// FairnessRequest 公平性分析请求
type FairnessRequest struct {
	Loads []model.MemberLoad `json:"loads"`
}

// CoverageRequest 覆盖率分析请求
type CoverageRequest struct {
	Assignments []model.Assignment `json:"assignments"`
	StartDate   string             `json:"start_date,omitempty"`
	EndDate     string             `json:"end_date,omitempty"`
}

// Fairness 公平性分析API
func (h *Handler) Fairness(w http.ResponseWriter, r *http.Request) {
	var req FairnessRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats.NewWorkloadAnalyzer().Analyze(req.Loads))
}

// Coverage 覆盖率分析API，给定日期时只统计范围内的时段
func (h *Handler) Coverage(w http.ResponseWriter, r *http.Request) {
	var req CoverageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	analyzer := stats.NewCoverageAnalyzer()
	if (req.StartDate == "") != (req.EndDate == "") {
		respondError(w, errors.New(errors.CodeInvalidDateRange, "start_date 和 end_date 需要同时提供"))
		return
	}
	if req.StartDate != "" {
		dr := model.DateRange{StartDate: req.StartDate, EndDate: req.EndDate}
		if dr.Days() == 0 {
			respondError(w, errors.New(errors.CodeInvalidDateRange, "日期范围无效"))
			return
		}
		respondJSON(w, http.StatusOK, analyzer.AnalyzeRange(req.Assignments, req.StartDate, req.EndDate))
		return
	}
	respondJSON(w, http.StatusOK, analyzer.Analyze(req.Assignments))
}
