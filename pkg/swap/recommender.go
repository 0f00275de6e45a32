package swap

import (
	"fmt"
	"sort"
	"strconv"

	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/constraint"
)

// Recommender 替班推荐器
type Recommender struct {
	evaluator *SwapEvaluator
}

// NewRecommender 创建替班推荐器
func NewRecommender(rules constraint.Rules) *Recommender {
	return &Recommender{
		evaluator: NewSwapEvaluator(rules),
	}
}

// Recommendation 替班推荐
type Recommendation struct {
	Member        string  `json:"member"`
	Score         float64 `json:"score"`
	LoadAfter     float64 `json:"load_after"`
	Reason        string  `json:"reason"`
	ImpactSummary string  `json:"impact_summary"`
	Rank          int     `json:"rank"`
}

// RecommendOptions 推荐选项
type RecommendOptions struct {
	MaxRecommendations int      // 最大推荐数量
	ExcludeMembers     []string // 排除的成员
	MinScore           float64  // 最低得分
}

// DefaultRecommendOptions 返回默认选项
func DefaultRecommendOptions() *RecommendOptions {
	return &RecommendOptions{
		MaxRecommendations: 5,
		MinScore:           0,
	}
}

// RecommendReplacements 为指定时段和角色推荐可行的替班成员
// 按替班后负载升序，同负载保持成员输入顺序
func (r *Recommender) RecommendReplacements(roster Roster, index int, role model.Role, options *RecommendOptions) ([]Recommendation, error) {
	if options == nil {
		options = DefaultRecommendOptions()
	}
	excluded := make(map[string]bool, len(options.ExcludeMembers))
	for _, m := range options.ExcludeMembers {
		excluded[m] = true
	}

	var current *model.Assignment
	for i := range roster.Assignments {
		if roster.Assignments[i].Index == index {
			current = &roster.Assignments[i]
			break
		}
	}
	if current == nil {
		return nil, apperrors.NotFound("时段", strconv.Itoa(index))
	}

	recommendations := make([]Recommendation, 0)
	for _, member := range roster.Members {
		if excluded[member] || member == current.Primary || member == current.Secondary {
			continue
		}

		evaluation, err := r.evaluator.EvaluateSwap(roster, SwapRequest{Index: index, Role: role, NewMember: member})
		if err != nil {
			return nil, err
		}
		if !evaluation.Feasible || evaluation.Score < options.MinScore {
			continue
		}

		recommendations = append(recommendations, Recommendation{
			Member:        member,
			Score:         evaluation.Score,
			LoadAfter:     evaluation.Impact.Target.LoadAfter,
			Reason:        r.generateReason(evaluation),
			ImpactSummary: r.generateImpactSummary(evaluation),
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].LoadAfter < recommendations[j].LoadAfter
	})

	if options.MaxRecommendations > 0 && len(recommendations) > options.MaxRecommendations {
		recommendations = recommendations[:options.MaxRecommendations]
	}
	for i := range recommendations {
		recommendations[i].Rank = i + 1
	}
	return recommendations, nil
}

// generateReason 生成推荐原因
func (r *Recommender) generateReason(evaluation *SwapEvaluation) string {
	if evaluation.Impact.LoadGiniChange < 0 {
		return "无规则冲突，负载更均衡"
	}
	return "无规则冲突"
}

// generateImpactSummary 生成影响摘要
func (r *Recommender) generateImpactSummary(evaluation *SwapEvaluation) string {
	target := evaluation.Impact.Target
	return fmt.Sprintf("%s 负载 %.1f → %.1f", target.Member, target.LoadBefore, target.LoadAfter)
}
