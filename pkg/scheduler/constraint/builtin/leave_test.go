package builtin

import (
	"testing"

	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/constraint"
)

func TestIsOnLeave(t *testing.T) {
	const (
		monday   = "2024-01-01"
		saturday = "2024-01-06"
	)

	tests := []struct {
		name  string
		leave model.Leave
		date  string
		kind  model.SlotKind
		want  bool
	}{
		{"全部早班命中早班", model.Leave{Member: "Alice", Type: model.LeaveAllMorning}, monday, model.SlotMorning, true},
		{"全部早班不影响晚班", model.Leave{Member: "Alice", Type: model.LeaveAllMorning}, monday, model.SlotEvening, false},
		{"全部早班不影响周末", model.Leave{Member: "Alice", Type: model.LeaveAllMorning}, saturday, model.SlotWeekend, false},
		{"全部晚班命中晚班", model.Leave{Member: "Alice", Type: model.LeaveAllEvening}, monday, model.SlotEvening, true},
		{"全部晚班不影响周末", model.Leave{Member: "Alice", Type: model.LeaveAllEvening}, saturday, model.SlotWeekend, false},
		{"整期请假命中工作日", model.Leave{Member: "Alice", Type: model.LeaveComplete}, monday, model.SlotMorning, true},
		{"整期请假命中周末", model.Leave{Member: "Alice", Type: model.LeaveComplete}, saturday, model.SlotWeekend, true},
		{"周末请假命中周六", model.Leave{Member: "Alice", Type: model.LeaveWeekend}, saturday, model.SlotWeekend, true},
		{"周末请假不影响周一", model.Leave{Member: "Alice", Type: model.LeaveWeekend}, monday, model.SlotMorning, false},
		{"周末请假按星期判断", model.Leave{Member: "Alice", Type: model.LeaveWeekend}, saturday, model.SlotMorning, true},
		{"自定义全天", model.Leave{Member: "Alice", Type: model.LeaveCustom, Date: monday, Slot: model.ScopeBoth}, monday, model.SlotEvening, true},
		{"自定义早班命中早班", model.Leave{Member: "Alice", Type: model.LeaveCustom, Date: monday, Slot: model.ScopeMorning}, monday, model.SlotMorning, true},
		{"自定义早班不影响晚班", model.Leave{Member: "Alice", Type: model.LeaveCustom, Date: monday, Slot: model.ScopeMorning}, monday, model.SlotEvening, false},
		{"自定义晚班命中周末", model.Leave{Member: "Alice", Type: model.LeaveCustom, Date: saturday, Slot: model.ScopeEvening}, saturday, model.SlotWeekend, true},
		{"自定义早班命中周末", model.Leave{Member: "Alice", Type: model.LeaveCustom, Date: saturday, Slot: model.ScopeMorning}, saturday, model.SlotWeekend, true},
		{"自定义日期不同", model.Leave{Member: "Alice", Type: model.LeaveCustom, Date: "2024-01-02", Slot: model.ScopeBoth}, monday, model.SlotMorning, false},
		{"其他成员的请假", model.Leave{Member: "Bob", Type: model.LeaveComplete}, monday, model.SlotMorning, false},
		{"未知请假类型", model.Leave{Member: "Alice", Type: model.LeaveType("sabbatical")}, monday, model.SlotMorning, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsOnLeave("Alice", tt.date, tt.kind, []model.Leave{tt.leave})
			if got != tt.want {
				t.Errorf("IsOnLeave() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestIsOnLeave_AnyMatchBlocks(t *testing.T) {
	leaves := []model.Leave{
		{Member: "Alice", Type: model.LeaveAllEvening},
		{Member: "Alice", Type: model.LeaveCustom, Date: "2024-01-01", Slot: model.ScopeMorning},
	}

	if !IsOnLeave("Alice", "2024-01-01", model.SlotMorning, leaves) {
		t.Error("自定义请假应命中周一早班")
	}
	if !IsOnLeave("Alice", "2024-01-02", model.SlotEvening, leaves) {
		t.Error("全部晚班应命中周二晚班")
	}
	if IsOnLeave("Alice", "2024-01-02", model.SlotMorning, leaves) {
		t.Error("周二早班不应被拦截")
	}
}

func TestLeaveConstraint_Allows(t *testing.T) {
	ctx := constraint.NewContext(
		[]string{"Alice", "Bob"},
		[]model.Leave{{Member: "Alice", Type: model.LeaveComplete}},
		constraint.DefaultRules(),
	)
	c := NewLeaveConstraint()
	s := model.Slot{Date: "2024-01-01", Kind: model.SlotMorning, Index: 0}

	if c.Allows(ctx, "Alice", s, model.RolePrimary) {
		t.Error("Alice 整期请假，不应允许")
	}
	if !c.Allows(ctx, "Bob", s, model.RoleSecondary) {
		t.Error("Bob 无请假，应允许")
	}
}
