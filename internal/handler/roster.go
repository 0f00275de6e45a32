package handler

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/export"
	"github.com/paiban/oncall/pkg/logger"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/roster"
	"github.com/paiban/oncall/pkg/scheduler/constraint"
	"github.com/paiban/oncall/pkg/scheduler/solver"
	"github.com/paiban/oncall/pkg/stats"
	"github.com/paiban/oncall/pkg/validator"
)

// GenerateRequest 值班表生成请求
type GenerateRequest struct {
	Members   []string      `json:"members"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Leaves    []model.Leave `json:"leaves"`
	Save      bool          `json:"save,omitempty"` // 是否保存生成结果
	Name      string        `json:"name,omitempty"`
}

// GenerateResponse 值班表生成响应
type GenerateResponse struct {
	RunID       string                 `json:"run_id"`
	Assignments []model.Assignment     `json:"assignments"`
	Table       []model.RosterRow      `json:"table"`
	Loads       []model.MemberLoad     `json:"loads"`
	Statistics  *solver.Statistics     `json:"statistics"`
	Fairness    *stats.FairnessMetrics `json:"fairness"`
	Coverage    *stats.CoverageMetrics `json:"coverage"`
	RosterID    string                 `json:"roster_id,omitempty"`
	Duration    string                 `json:"duration"`
}

// AssignmentsRequest 只包含分配结果的请求
type AssignmentsRequest struct {
	Assignments []model.Assignment `json:"assignments"`
}

// ValidateRequest 值班表校验请求
type ValidateRequest struct {
	Assignments []model.Assignment `json:"assignments"`
	Leaves      []model.Leave      `json:"leaves"`
	Rules       *constraint.Rules  `json:"rules,omitempty"` // 为空时使用服务配置
}

// ValidateResponse 值班表校验响应
type ValidateResponse struct {
	Valid     bool                 `json:"valid"`
	Conflicts []validator.Conflict `json:"conflicts"`
}

// Generate 生成值班表
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	// 未给结束日期时按默认天数补齐
	if req.EndDate == "" && req.StartDate != "" && h.cfg.Roster.DefaultDays > 0 {
		if start, err := model.ParseDate(req.StartDate); err == nil {
			req.EndDate = model.FormatDate(start.AddDate(0, 0, h.cfg.Roster.DefaultDays-1))
		}
	}

	cfg := export.RosterConfig{
		TeamMembers: req.Members,
		DateRange:   model.DateRange{StartDate: req.StartDate, EndDate: req.EndDate},
		Leaves:      req.Leaves,
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		respondError(w, errors.From(err))
		return
	}
	for i := range cfg.Leaves {
		if cfg.Leaves[i].ID == 0 {
			cfg.Leaves[i].ID = int64(i + 1)
		}
	}

	ctx := r.Context()
	if h.cfg.Roster.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.Roster.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := roster.Plan(ctx, cfg.TeamMembers, req.StartDate, req.EndDate, cfg.Leaves,
		roster.WithRules(h.cfg.Roster.Rules()))
	h.metrics.RecordGeneration(err == nil, time.Since(start))
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			respondError(w, errors.New(errors.CodeTimeout, "值班表生成超时，请缩短日期范围"))
			return
		}
		respondError(w, errors.Wrap(err, errors.CodeInternal, "值班表生成失败"))
		return
	}

	fairness := stats.NewWorkloadAnalyzer().Analyze(result.Loads)
	coverage := stats.NewCoverageAnalyzer().Analyze(result.Assignments)

	h.metrics.SetUnfilledSlots(model.RolePrimary, result.Statistics.UnfilledPrimary)
	h.metrics.SetUnfilledSlots(model.RoleSecondary, result.Statistics.UnfilledSecondary)
	h.metrics.SetFillRate(result.Statistics.FillRate)
	h.metrics.SetFairnessGini("load", fairness.LoadGini)
	h.metrics.SetFairnessGini("weekend", fairness.WeekendGini)

	resp := GenerateResponse{
		RunID:       result.RunID,
		Assignments: result.Assignments,
		Table:       roster.FormatTable(result.Assignments),
		Loads:       result.Loads,
		Statistics:  result.Statistics,
		Fairness:    fairness,
		Coverage:    coverage,
		Duration:    result.Duration.String(),
	}

	if req.Save {
		name := req.Name
		if name == "" {
			name = fmt.Sprintf("值班表 %s ~ %s", req.StartDate, req.EndDate)
		}
		saved := &model.Roster{
			Name:        name,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			Members:     cfg.TeamMembers,
			Leaves:      cfg.Leaves,
			Assignments: result.Assignments,
			Loads:       result.Loads,
			FillRate:    result.Statistics.FillRate,
		}
		if err := h.rosters.Create(r.Context(), saved); err != nil {
			respondError(w, errors.From(err))
			return
		}
		resp.RosterID = saved.ID.String()
	}

	logger.WithContext(r.Context()).Info().
		Str("run_id", result.RunID).
		Int("members", len(cfg.TeamMembers)).
		Int("slots", result.Statistics.TotalSlots).
		Float64("fill_rate", result.Statistics.FillRate).
		Bool("saved", req.Save).
		Msg("值班表已生成")

	respondJSON(w, http.StatusOK, resp)
}

// Table 将分配结果折叠为按日期的表格
func (h *Handler) Table(w http.ResponseWriter, r *http.Request) {
	var req AssignmentsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rows": roster.FormatTable(req.Assignments),
	})
}

// Validate 校验手工编辑过的值班表
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	rules := h.cfg.Roster.Rules()
	if req.Rules != nil {
		rules = *req.Rules
	}

	detector := validator.NewConflictDetector(&validator.DetectorConfig{
		Rules:       rules,
		CheckLeaves: true,
	})
	conflicts := detector.DetectAll(req.Assignments, req.Leaves)
	if conflicts == nil {
		conflicts = []validator.Conflict{}
	}

	respondJSON(w, http.StatusOK, ValidateResponse{
		Valid:     len(conflicts) == 0,
		Conflicts: conflicts,
	})
}

// CSV 将分配结果导出为CSV
func (h *Handler) CSV(w http.ResponseWriter, r *http.Request) {
	var req AssignmentsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	writeRosterCSV(w, req.Assignments, "roster.csv")
}

// writeRosterCSV 写出CSV附件
func writeRosterCSV(w http.ResponseWriter, assignments []model.Assignment, filename string) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, roster.FormatTable(assignments)); err != nil {
		respondError(w, errors.From(err))
		return
	}
	respondAttachment(w, "text/csv; charset=utf-8", filename, buf.Bytes())
}
