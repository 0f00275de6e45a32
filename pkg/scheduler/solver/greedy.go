// Package solver 提供值班表求解器
package solver

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/oncall/pkg/logger"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/constraint"
)

// Solver 求解器接口
type Solver interface {
	// Solve 按时段顺序生成值班分配
	Solve(ctx context.Context, schedCtx *constraint.Context, slots []model.Slot) (*Result, error)

	// Name 返回求解器名称
	Name() string
}

// Result 求解结果
type Result struct {
	RunID       string             `json:"run_id"`
	Assignments []model.Assignment `json:"assignments"`
	Loads       []model.MemberLoad `json:"loads"`
	Statistics  *Statistics        `json:"statistics"`
	Duration    time.Duration      `json:"duration"`
}

// Statistics 生成统计
type Statistics struct {
	TotalSlots        int     `json:"total_slots"`
	FilledPrimary     int     `json:"filled_primary"`
	FilledSecondary   int     `json:"filled_secondary"`
	UnfilledPrimary   int     `json:"unfilled_primary"`
	UnfilledSecondary int     `json:"unfilled_secondary"`
	FillRate          float64 `json:"fill_rate"`
}

// Weights 负载权重
type Weights struct {
	PrimaryWeekday     float64 `json:"primary_weekday" mapstructure:"primary_weekday"`
	PrimaryWeekend     float64 `json:"primary_weekend" mapstructure:"primary_weekend"`
	SecondaryWeekday   float64 `json:"secondary_weekday" mapstructure:"secondary_weekday"`
	SecondaryWeekend   float64 `json:"secondary_weekend" mapstructure:"secondary_weekend"`
	PrimaryWeekendUnit float64 `json:"primary_weekend_unit" mapstructure:"primary_weekend_unit"`
	// 副值班的周末计数按半个计
	SecondaryWeekendUnit float64 `json:"secondary_weekend_unit" mapstructure:"secondary_weekend_unit"`
}

// DefaultWeights 返回默认负载权重
func DefaultWeights() Weights {
	return Weights{
		PrimaryWeekday:       1,
		PrimaryWeekend:       2,
		SecondaryWeekday:     0.5,
		SecondaryWeekend:     1,
		PrimaryWeekendUnit:   1,
		SecondaryWeekendUnit: 0.5,
	}
}

// For 返回指定角色在指定时段的负载增量与周末计数增量
func (w Weights) For(role model.Role, kind model.SlotKind) (load, weekend float64) {
	if role == model.RoleSecondary {
		if kind.IsWeekend() {
			return w.SecondaryWeekend, w.SecondaryWeekendUnit
		}
		return w.SecondaryWeekday, 0
	}
	if kind.IsWeekend() {
		return w.PrimaryWeekend, w.PrimaryWeekendUnit
	}
	return w.PrimaryWeekday, 0
}

// GreedySolver 贪心求解器
// 每个时段先选主值班再选副值班，选中即写入账本，不回溯
type GreedySolver struct {
	constraintManager *constraint.Manager
	weights           Weights
	logger            *logger.RosterLogger
}

// NewGreedySolver 创建贪心求解器
func NewGreedySolver(cm *constraint.Manager) *GreedySolver {
	return &GreedySolver{
		constraintManager: cm,
		weights:           DefaultWeights(),
		logger:            logger.NewRosterLogger(),
	}
}

// Name 返回求解器名称
func (s *GreedySolver) Name() string {
	return "GreedySolver"
}

// SetWeights 设置负载权重
func (s *GreedySolver) SetWeights(w Weights) {
	s.weights = w
}

// Solve 使用贪心算法生成值班分配
// 无人可用的角色记为 Unfilled，不返回错误；只有 ctx 取消时返回错误
// 成员为空时每个时段都是 Unfilled
func (s *GreedySolver) Solve(ctx context.Context, schedCtx *constraint.Context, slots []model.Slot) (*Result, error) {
	startTime := time.Now()
	runID := uuid.New().String()
	s.logger.StartGeneration(runID, len(schedCtx.Members), len(slots))

	result := &Result{
		RunID:       runID,
		Assignments: make([]model.Assignment, 0, len(slots)),
		Statistics:  &Statistics{TotalSlots: len(slots)},
	}

	for _, slot := range slots {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		assignment := model.Assignment{
			Date:      slot.Date,
			Kind:      slot.Kind,
			Index:     slot.Index,
			Primary:   model.Unfilled,
			Secondary: model.Unfilled,
		}

		primary, ok := s.pick(schedCtx, slot, model.RolePrimary)
		if !ok {
			// 主值班无人时不再尝试副值班
			s.logger.SlotUnfilled(slot.Date, string(slot.Kind), string(model.RolePrimary))
			result.Statistics.UnfilledPrimary++
			result.Statistics.UnfilledSecondary++
			result.Assignments = append(result.Assignments, assignment)
			continue
		}
		s.record(schedCtx, primary, slot, model.RolePrimary)
		assignment.Primary = primary
		result.Statistics.FilledPrimary++

		secondary, ok := s.pick(schedCtx, slot, model.RoleSecondary)
		if ok {
			s.record(schedCtx, secondary, slot, model.RoleSecondary)
			assignment.Secondary = secondary
			result.Statistics.FilledSecondary++
		} else {
			s.logger.SlotUnfilled(slot.Date, string(slot.Kind), string(model.RoleSecondary))
			result.Statistics.UnfilledSecondary++
		}

		result.Assignments = append(result.Assignments, assignment)
	}

	result.Statistics.FillRate = fillRate(result.Statistics)
	result.Loads = schedCtx.Ledger.Snapshot()
	result.Duration = time.Since(startTime)
	s.logger.GenerationComplete(runID, result.Duration, result.Statistics.FillRate)

	return result, nil
}

// pick 选出排序第一的合格成员
func (s *GreedySolver) pick(schedCtx *constraint.Context, slot model.Slot, role model.Role) (string, bool) {
	candidates := s.constraintManager.Eligible(schedCtx, slot, role)
	if len(candidates) == 0 {
		return "", false
	}
	rankCandidates(candidates, schedCtx.Ledger, slot.Kind)
	return candidates[0], true
}

// rankCandidates 周末时段按 (周末计数, 负载) 升序，工作日按负载升序
// 稳定排序，并列时保持成员输入顺序
func rankCandidates(candidates []string, ledger *constraint.Ledger, kind model.SlotKind) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if kind.IsWeekend() {
			wa, wb := ledger.WeekendCount(a), ledger.WeekendCount(b)
			if wa != wb {
				return wa < wb
			}
		}
		return ledger.Load(a) < ledger.Load(b)
	})
}

func (s *GreedySolver) record(schedCtx *constraint.Context, member string, slot model.Slot, role model.Role) {
	load, weekend := s.weights.For(role, slot.Kind)
	schedCtx.Ledger.Record(member, role, slot.Index, load, weekend)
}

func fillRate(st *Statistics) float64 {
	if st.TotalSlots == 0 {
		return 0
	}
	filled := st.FilledPrimary + st.FilledSecondary
	return float64(filled) / float64(2*st.TotalSlots) * 100
}
