package swap

import (
	"testing"

	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/constraint"
)

// testRoster 两个工作日的四个时段，Index 2 无人值班
func testRoster() Roster {
	return Roster{
		Members: []string{"Alice", "Bob", "Carol", "Dave", "Erin"},
		Assignments: []model.Assignment{
			{Date: "2024-01-01", Kind: model.SlotMorning, Index: 0, Primary: "Alice", Secondary: "Bob"},
			{Date: "2024-01-01", Kind: model.SlotEvening, Index: 1, Primary: "Carol", Secondary: "Dave"},
			{Date: "2024-01-02", Kind: model.SlotMorning, Index: 2},
			{Date: "2024-01-02", Kind: model.SlotEvening, Index: 3, Primary: "Alice", Secondary: "Bob"},
		},
	}
}

func TestEvaluateSwap_Feasible(t *testing.T) {
	evaluator := NewSwapEvaluator(constraint.DefaultRules())

	result, err := evaluator.EvaluateSwap(testRoster(), SwapRequest{Index: 0, Role: model.RoleSecondary, NewMember: "Erin"})
	if err != nil {
		t.Fatalf("EvaluateSwap failed: %v", err)
	}

	if !result.Feasible {
		t.Fatalf("Expected feasible swap, issues: %+v", result.Issues)
	}
	if len(result.Issues) != 0 {
		t.Errorf("Expected no issues, got %d", len(result.Issues))
	}
	if result.Score != 100 {
		t.Errorf("负载更均衡时应为满分, got %f", result.Score)
	}
	if result.Recommendation != "建议换人" {
		t.Errorf("unexpected recommendation: %s", result.Recommendation)
	}
	if result.Assignments[0].Secondary != "Erin" {
		t.Errorf("simulated assignment not updated: %+v", result.Assignments[0])
	}

	impact := result.Impact
	if impact.Source == nil || impact.Source.Member != "Bob" {
		t.Fatalf("Expected source Bob, got %+v", impact.Source)
	}
	if impact.Source.LoadBefore != 1 || impact.Source.LoadAfter != 0.5 {
		t.Errorf("Bob load %v -> %v, expected 1 -> 0.5", impact.Source.LoadBefore, impact.Source.LoadAfter)
	}
	if impact.Target.LoadBefore != 0 || impact.Target.LoadAfter != 0.5 {
		t.Errorf("Erin load %v -> %v, expected 0 -> 0.5", impact.Target.LoadBefore, impact.Target.LoadAfter)
	}
	if impact.LoadGiniChange >= 0 {
		t.Errorf("基尼系数应下降, got %f", impact.LoadGiniChange)
	}
}

func TestEvaluateSwap_DoesNotMutateInput(t *testing.T) {
	roster := testRoster()
	evaluator := NewSwapEvaluator(constraint.DefaultRules())

	if _, err := evaluator.EvaluateSwap(roster, SwapRequest{Index: 0, Role: model.RolePrimary, NewMember: "Erin"}); err != nil {
		t.Fatalf("EvaluateSwap failed: %v", err)
	}
	if roster.Assignments[0].Primary != "Alice" {
		t.Errorf("input roster was modified: %+v", roster.Assignments[0])
	}
}

func TestEvaluateSwap_GapConflict(t *testing.T) {
	evaluator := NewSwapEvaluator(constraint.DefaultRules())

	// Alice 在 Index 0 和 3 已是主值班
	result, err := evaluator.EvaluateSwap(testRoster(), SwapRequest{Index: 2, Role: model.RolePrimary, NewMember: "Alice"})
	if err != nil {
		t.Fatalf("EvaluateSwap failed: %v", err)
	}

	if result.Feasible {
		t.Fatal("Expected infeasible swap")
	}
	if len(result.Issues) == 0 {
		t.Fatal("Expected issues")
	}
	for _, issue := range result.Issues {
		if issue.Type != "primary_gap" {
			t.Errorf("unexpected issue type %s", issue.Type)
		}
		if issue.Member != "Alice" {
			t.Errorf("unexpected issue member %s", issue.Member)
		}
	}
	if result.Recommendation != "不建议换人：存在规则冲突" {
		t.Errorf("unexpected recommendation: %s", result.Recommendation)
	}
	if result.Score > 75 {
		t.Errorf("冲突应扣分, got %f", result.Score)
	}
}

func TestEvaluateSwap_SameSlot(t *testing.T) {
	evaluator := NewSwapEvaluator(constraint.DefaultRules())

	result, err := evaluator.EvaluateSwap(testRoster(), SwapRequest{Index: 0, Role: model.RoleSecondary, NewMember: "Alice"})
	if err != nil {
		t.Fatalf("EvaluateSwap failed: %v", err)
	}
	if result.Feasible {
		t.Fatal("主副同一人不可行")
	}

	found := false
	for _, issue := range result.Issues {
		if issue.Type == "same_slot" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected same_slot issue, got %+v", result.Issues)
	}
}

func TestEvaluateSwap_LeaveConflict(t *testing.T) {
	roster := testRoster()
	roster.Leaves = []model.Leave{
		{ID: 1, Member: "Erin", Type: model.LeaveComplete},
	}

	ok, reason := NewSwapEvaluator(constraint.DefaultRules()).CanSwap(roster, SwapRequest{Index: 0, Role: model.RoleSecondary, NewMember: "Erin"})
	if ok {
		t.Fatal("请假成员不能替班")
	}
	if reason == "" {
		t.Error("Expected a reason")
	}
}

func TestEvaluateSwap_IgnoresExistingConflicts(t *testing.T) {
	roster := testRoster()
	roster.Assignments[3].Secondary = "Alice" // 已有的 same_slot 冲突

	result, err := NewSwapEvaluator(constraint.DefaultRules()).EvaluateSwap(roster, SwapRequest{Index: 0, Role: model.RoleSecondary, NewMember: "Erin"})
	if err != nil {
		t.Fatalf("EvaluateSwap failed: %v", err)
	}
	if !result.Feasible || len(result.Issues) != 0 {
		t.Errorf("已有冲突不应计入, got %+v", result.Issues)
	}
}

func TestEvaluateSwap_FillUnfilledSlot(t *testing.T) {
	result, err := NewSwapEvaluator(constraint.DefaultRules()).EvaluateSwap(testRoster(), SwapRequest{Index: 2, Role: model.RoleSecondary, NewMember: "Erin"})
	if err != nil {
		t.Fatalf("EvaluateSwap failed: %v", err)
	}
	if !result.Feasible {
		t.Fatalf("Expected feasible, issues: %+v", result.Issues)
	}
	if result.Impact.Source != nil {
		t.Errorf("空缺时段没有原值班人, got %+v", result.Impact.Source)
	}
}

func TestEvaluateSwap_InvalidRequests(t *testing.T) {
	evaluator := NewSwapEvaluator(constraint.DefaultRules())

	tests := []struct {
		name    string
		request SwapRequest
		code    apperrors.Code
	}{
		{"unknown member", SwapRequest{Index: 0, Role: model.RolePrimary, NewMember: "Zed"}, apperrors.CodeInvalidInput},
		{"empty member", SwapRequest{Index: 0, Role: model.RolePrimary}, apperrors.CodeInvalidInput},
		{"same member", SwapRequest{Index: 0, Role: model.RolePrimary, NewMember: "Alice"}, apperrors.CodeInvalidInput},
		{"bad role", SwapRequest{Index: 0, Role: "lead", NewMember: "Erin"}, apperrors.CodeInvalidInput},
		{"unknown index", SwapRequest{Index: 99, Role: model.RolePrimary, NewMember: "Erin"}, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evaluator.EvaluateSwap(testRoster(), tt.request)
			if err == nil {
				t.Fatal("Expected error")
			}
			if code := apperrors.GetCode(err); code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, code)
			}
		})
	}
}

func TestRecommendReplacements(t *testing.T) {
	recommender := NewRecommender(constraint.DefaultRules())

	// Index 3 副值班：Carol 距主值班太近，Dave 和 Erin 可行
	recs, err := recommender.RecommendReplacements(testRoster(), 3, model.RoleSecondary, nil)
	if err != nil {
		t.Fatalf("RecommendReplacements failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Expected 2 recommendations, got %+v", recs)
	}
	if recs[0].Member != "Erin" || recs[1].Member != "Dave" {
		t.Errorf("应按替班后负载升序, got %s, %s", recs[0].Member, recs[1].Member)
	}
	if recs[0].Rank != 1 || recs[1].Rank != 2 {
		t.Errorf("unexpected ranks: %d, %d", recs[0].Rank, recs[1].Rank)
	}
	if recs[0].LoadAfter != 0.5 || recs[1].LoadAfter != 1 {
		t.Errorf("unexpected loads: %v, %v", recs[0].LoadAfter, recs[1].LoadAfter)
	}
	if recs[0].ImpactSummary == "" || recs[0].Reason == "" {
		t.Error("Expected reason and impact summary")
	}
}

func TestRecommendReplacements_Options(t *testing.T) {
	recommender := NewRecommender(constraint.DefaultRules())

	recs, err := recommender.RecommendReplacements(testRoster(), 3, model.RoleSecondary, &RecommendOptions{MaxRecommendations: 1})
	if err != nil {
		t.Fatalf("RecommendReplacements failed: %v", err)
	}
	if len(recs) != 1 || recs[0].Member != "Erin" {
		t.Errorf("Expected only Erin, got %+v", recs)
	}

	recs, err = recommender.RecommendReplacements(testRoster(), 3, model.RoleSecondary, &RecommendOptions{ExcludeMembers: []string{"Erin"}})
	if err != nil {
		t.Fatalf("RecommendReplacements failed: %v", err)
	}
	if len(recs) != 1 || recs[0].Member != "Dave" {
		t.Errorf("Expected only Dave, got %+v", recs)
	}
}

func TestRecommendReplacements_UnknownIndex(t *testing.T) {
	_, err := NewRecommender(constraint.DefaultRules()).RecommendReplacements(testRoster(), 42, model.RolePrimary, nil)
	if !apperrors.Is(err, apperrors.CodeNotFound) {
		t.Errorf("Expected NOT_FOUND, got %v", err)
	}
}
