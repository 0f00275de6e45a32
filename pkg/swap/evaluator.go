// Package swap 提供值班换人评估和替班推荐
package swap

import (
	"fmt"
	"math"

	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/constraint"
	"github.com/paiban/oncall/pkg/scheduler/solver"
	"github.com/paiban/oncall/pkg/stats"
	"github.com/paiban/oncall/pkg/validator"
)

// SwapEvaluator 换人评估器
type SwapEvaluator struct {
	conflictDetector *validator.ConflictDetector
	weights          solver.Weights
	analyzer         *stats.WorkloadAnalyzer
}

// NewSwapEvaluator 创建换人评估器
func NewSwapEvaluator(rules constraint.Rules) *SwapEvaluator {
	return &SwapEvaluator{
		conflictDetector: validator.NewConflictDetector(&validator.DetectorConfig{
			Rules:       rules,
			CheckLeaves: true,
		}),
		weights:  solver.DefaultWeights(),
		analyzer: stats.NewWorkloadAnalyzer(),
	}
}

// Roster 评估所需的值班表数据
type Roster struct {
	Members     []string           `json:"members"`
	Assignments []model.Assignment `json:"assignments"`
	Leaves      []model.Leave      `json:"leaves"`
}

// SwapRequest 换人请求：把 Index 时段的 Role 角色换成 NewMember
type SwapRequest struct {
	Index     int        `json:"index"`
	Role      model.Role `json:"role"`
	NewMember string     `json:"new_member"`
}

// SwapEvaluation 换人评估结果
type SwapEvaluation struct {
	Feasible       bool               `json:"feasible"`
	Score          float64            `json:"score"`  // 0-100
	Issues         []SwapIssue        `json:"issues"` // 换人后新增的问题
	Impact         *SwapImpact        `json:"impact"`
	Recommendation string             `json:"recommendation"`
	Assignments    []model.Assignment `json:"assignments"` // 换人后的分配
}

// SwapIssue 换人问题
type SwapIssue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"` // error/warning
	Member   string `json:"member"`
	Index    int    `json:"index"`
	Message  string `json:"message"`
}

// SwapImpact 换人影响
type SwapImpact struct {
	Source         *MemberImpact `json:"source,omitempty"` // 原值班人，空缺时为 nil
	Target         *MemberImpact `json:"target"`
	LoadGiniChange float64       `json:"load_gini_change"` // 正数表示更不公平
}

// MemberImpact 成员负载变化
type MemberImpact struct {
	Member        string  `json:"member"`
	LoadBefore    float64 `json:"load_before"`
	LoadAfter     float64 `json:"load_after"`
	WeekendBefore float64 `json:"weekend_before"`
	WeekendAfter  float64 `json:"weekend_after"`
}

// EvaluateSwap 评估换人可行性
// 请求本身无效时返回错误，规则冲突体现在结果的 Issues 中
func (e *SwapEvaluator) EvaluateSwap(roster Roster, request SwapRequest) (*SwapEvaluation, error) {
	pos, err := e.validate(roster, request)
	if err != nil {
		return nil, err
	}

	result := &SwapEvaluation{
		Feasible: true,
		Score:    100,
		Issues:   make([]SwapIssue, 0),
	}

	// 1. 模拟换人
	simulated := simulateSwap(roster.Assignments, pos, request)
	result.Assignments = simulated

	// 2. 只报告换人后新增的冲突
	before := conflictKeys(e.conflictDetector.DetectAll(roster.Assignments, roster.Leaves))
	for _, c := range e.conflictDetector.DetectAll(simulated, roster.Leaves) {
		if before[keyOf(c)] {
			continue
		}
		result.Issues = append(result.Issues, SwapIssue{
			Type:     string(c.Type),
			Severity: c.Severity,
			Member:   c.Member,
			Index:    c.Index,
			Message:  c.Message,
		})
		if c.Severity == "error" {
			result.Feasible = false
		}
	}

	// 3. 计算影响
	previous := roster.Assignments[pos].Member(request.Role)
	result.Impact = e.calculateImpact(roster.Members, roster.Assignments, simulated, previous, request.NewMember)

	// 4. 评分：每个冲突扣 25 分，公平性变差按基尼增量扣分
	score := 100 - 25*float64(len(result.Issues))
	if result.Impact.LoadGiniChange > 0 {
		score -= result.Impact.LoadGiniChange * 100
	}
	result.Score = math.Max(0, math.Min(100, score))

	// 5. 生成建议
	result.Recommendation = e.generateRecommendation(result)

	return result, nil
}

// CanSwap 快速检查换人是否可行
func (e *SwapEvaluator) CanSwap(roster Roster, request SwapRequest) (bool, string) {
	evaluation, err := e.EvaluateSwap(roster, request)
	if err != nil {
		return false, apperrors.From(err).Message
	}
	if !evaluation.Feasible {
		if len(evaluation.Issues) > 0 {
			return false, evaluation.Issues[0].Message
		}
		return false, "换人不可行"
	}
	return true, ""
}

// validate 检查请求并返回目标分配的位置
func (e *SwapEvaluator) validate(roster Roster, request SwapRequest) (int, error) {
	if request.Role != model.RolePrimary && request.Role != model.RoleSecondary {
		return -1, apperrors.InvalidInput("role", "角色必须是 primary 或 secondary")
	}

	known := false
	for _, m := range roster.Members {
		if m == request.NewMember {
			known = true
			break
		}
	}
	if request.NewMember == model.Unfilled || !known {
		return -1, apperrors.InvalidInput("new_member", fmt.Sprintf("未知成员 %q", request.NewMember))
	}

	for i, a := range roster.Assignments {
		if a.Index != request.Index {
			continue
		}
		if a.Member(request.Role) == request.NewMember {
			return -1, apperrors.InvalidInput("new_member", "新成员与当前值班人相同")
		}
		return i, nil
	}
	return -1, apperrors.NotFound("时段", fmt.Sprintf("%d", request.Index))
}

// simulateSwap 复制分配并替换目标角色
func simulateSwap(assignments []model.Assignment, pos int, request SwapRequest) []model.Assignment {
	simulated := make([]model.Assignment, len(assignments))
	copy(simulated, assignments)
	if request.Role == model.RoleSecondary {
		simulated[pos].Secondary = request.NewMember
	} else {
		simulated[pos].Primary = request.NewMember
	}
	return simulated
}

// calculateImpact 计算双方负载变化和整体基尼变化
func (e *SwapEvaluator) calculateImpact(members []string, before, after []model.Assignment, source, target string) *SwapImpact {
	loadsBefore := e.Loads(members, before)
	loadsAfter := e.Loads(members, after)

	impact := &SwapImpact{
		Target: memberImpact(target, loadsBefore, loadsAfter),
		LoadGiniChange: e.analyzer.Analyze(loadsAfter).LoadGini -
			e.analyzer.Analyze(loadsBefore).LoadGini,
	}
	if source != model.Unfilled {
		impact.Source = memberImpact(source, loadsBefore, loadsAfter)
	}
	return impact
}

// Loads 按默认权重从分配结果重算成员负载
func (e *SwapEvaluator) Loads(members []string, assignments []model.Assignment) []model.MemberLoad {
	ledger := constraint.NewLedger(members)
	for _, a := range assignments {
		for _, role := range []model.Role{model.RolePrimary, model.RoleSecondary} {
			m := a.Member(role)
			if m == model.Unfilled {
				continue
			}
			load, weekend := e.weights.For(role, a.Kind)
			ledger.Record(m, role, a.Index, load, weekend)
		}
	}
	return ledger.Snapshot()
}

func memberImpact(member string, before, after []model.MemberLoad) *MemberImpact {
	impact := &MemberImpact{Member: member}
	for _, l := range before {
		if l.Member == member {
			impact.LoadBefore = l.Load
			impact.WeekendBefore = l.WeekendCount
		}
	}
	for _, l := range after {
		if l.Member == member {
			impact.LoadAfter = l.Load
			impact.WeekendAfter = l.WeekendCount
		}
	}
	return impact
}

// generateRecommendation 生成建议
func (e *SwapEvaluator) generateRecommendation(result *SwapEvaluation) string {
	if !result.Feasible {
		return "不建议换人：存在规则冲突"
	}
	if result.Impact != nil && result.Impact.LoadGiniChange > 0.05 {
		return "可以换人，但负载分布会明显变得不均"
	}
	if result.Score >= 90 {
		return "建议换人"
	}
	return "可以换人"
}

type conflictKey struct {
	typ    validator.ConflictType
	member string
	index  int
	role   model.Role
}

func keyOf(c validator.Conflict) conflictKey {
	return conflictKey{typ: c.Type, member: c.Member, index: c.Index, role: c.Role}
}

func conflictKeys(conflicts []validator.Conflict) map[conflictKey]bool {
	keys := make(map[conflictKey]bool, len(conflicts))
	for _, c := range conflicts {
		keys[keyOf(c)] = true
	}
	return keys
}
