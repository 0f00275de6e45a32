// Package roster 提供值班表生成与折叠的入口函数
package roster

import (
	"context"

	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/constraint"
	"github.com/paiban/oncall/pkg/scheduler/constraint/builtin"
	"github.com/paiban/oncall/pkg/scheduler/slot"
	"github.com/paiban/oncall/pkg/scheduler/solver"
)

type options struct {
	rules   constraint.Rules
	weights solver.Weights
	manager *constraint.Manager
}

// Option 生成选项
type Option func(*options)

// WithRules 覆盖默认间隔规则
func WithRules(r constraint.Rules) Option {
	return func(o *options) { o.rules = r }
}

// WithWeights 覆盖默认负载权重
func WithWeights(w solver.Weights) Option {
	return func(o *options) { o.weights = w }
}

// WithManager 使用自定义约束管理器
func WithManager(m *constraint.Manager) Option {
	return func(o *options) { o.manager = m }
}

// Generate 生成值班分配
// 成员为空或日期缺失时返回空切片；无人可用的角色记为 model.Unfilled
func Generate(members []string, startDate, endDate string, leaves []model.Leave) []model.Assignment {
	result, err := Plan(context.Background(), members, startDate, endDate, leaves)
	if err != nil {
		return []model.Assignment{}
	}
	return result.Assignments
}

// Plan 生成值班分配并返回负载与统计
// 唯一可能的错误来自 ctx 取消
func Plan(ctx context.Context, members []string, startDate, endDate string, leaves []model.Leave, opts ...Option) (*solver.Result, error) {
	o := &options{
		rules:   constraint.DefaultRules(),
		weights: solver.DefaultWeights(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.manager == nil {
		o.manager = builtin.NewDefaultManager()
	}

	var slots []model.Slot
	if len(members) > 0 {
		slots = slot.EnumerateRange(startDate, endDate)
	}

	schedCtx := constraint.NewContext(members, leaves, o.rules)
	s := solver.NewGreedySolver(o.manager)
	s.SetWeights(o.weights)

	return s.Solve(ctx, schedCtx, slots)
}

// FormatTable 将分配按日期折叠为表格行，保持日期首次出现的顺序
// 周末标记取自日期本身；同一日期同一时段重复时以最后一条为准
func FormatTable(assignments []model.Assignment) []model.RosterRow {
	rows := make([]model.RosterRow, 0)
	byDate := make(map[string]int)

	for _, a := range assignments {
		idx, ok := byDate[a.Date]
		if !ok {
			rows = append(rows, model.RosterRow{
				Date:      a.Date,
				IsWeekend: model.IsWeekendDate(a.Date),
			})
			idx = len(rows) - 1
			byDate[a.Date] = idx
		}

		row := &rows[idx]
		switch a.Kind {
		case model.SlotMorning:
			row.MorningPrimary = a.Primary
			row.MorningSecondary = a.Secondary
		case model.SlotEvening:
			row.EveningPrimary = a.Primary
			row.EveningSecondary = a.Secondary
		case model.SlotWeekend:
			row.WeekendPrimary = a.Primary
			row.WeekendSecondary = a.Secondary
		}
	}

	return rows
}
