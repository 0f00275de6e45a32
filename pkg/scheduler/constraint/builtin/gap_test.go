package builtin

import (
	"testing"

	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/constraint"
)

func newGapContext(history func(l *constraint.Ledger)) *constraint.Context {
	ctx := constraint.NewContext([]string{"Alice"}, nil, constraint.DefaultRules())
	if history != nil {
		history(ctx.Ledger)
	}
	return ctx
}

func TestPrimaryGapConstraint_Allows(t *testing.T) {
	tests := []struct {
		name    string
		history func(l *constraint.Ledger)
		index   int
		role    model.Role
		want    bool
	}{
		{"从未值班", nil, 0, model.RolePrimary, true},
		{"上次主值班相距 2", func(l *constraint.Ledger) { l.Record("Alice", model.RolePrimary, 3, 1, 0) }, 5, model.RolePrimary, false},
		{"上次主值班相距 3", func(l *constraint.Ledger) { l.Record("Alice", model.RolePrimary, 3, 1, 0) }, 6, model.RolePrimary, true},
		{"上次副值班相距 2", func(l *constraint.Ledger) { l.Record("Alice", model.RoleSecondary, 3, 0.5, 0) }, 5, model.RolePrimary, false},
		{"上次副值班相距 3", func(l *constraint.Ledger) { l.Record("Alice", model.RoleSecondary, 3, 0.5, 0) }, 6, model.RolePrimary, true},
		{"副值班检查主值班历史", func(l *constraint.Ledger) { l.Record("Alice", model.RolePrimary, 3, 1, 0) }, 4, model.RoleSecondary, false},
		{"副值班不检查副值班历史", func(l *constraint.Ledger) { l.Record("Alice", model.RoleSecondary, 3, 0.5, 0) }, 4, model.RoleSecondary, true},
	}

	c := NewPrimaryGapConstraint()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newGapContext(tt.history)
			s := model.Slot{Date: "2024-01-03", Kind: model.SlotMorning, Index: tt.index}
			if got := c.Allows(ctx, "Alice", s, tt.role); got != tt.want {
				t.Errorf("Allows() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestSecondaryWindowConstraint_Allows(t *testing.T) {
	tests := []struct {
		name    string
		history func(l *constraint.Ledger)
		index   int
		role    model.Role
		want    bool
	}{
		{"从未担任副值班", nil, 1, model.RoleSecondary, true},
		{"紧邻上一个副值班", func(l *constraint.Ledger) { l.Record("Alice", model.RoleSecondary, 3, 0.5, 0) }, 4, model.RoleSecondary, false},
		{"间隔一个时段", func(l *constraint.Ledger) { l.Record("Alice", model.RoleSecondary, 3, 0.5, 0) }, 5, model.RoleSecondary, true},
		{"主值班不受影响", func(l *constraint.Ledger) { l.Record("Alice", model.RoleSecondary, 3, 0.5, 0) }, 4, model.RolePrimary, true},
	}

	c := NewSecondaryWindowConstraint()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newGapContext(tt.history)
			s := model.Slot{Date: "2024-01-03", Kind: model.SlotEvening, Index: tt.index}
			if got := c.Allows(ctx, "Alice", s, tt.role); got != tt.want {
				t.Errorf("Allows() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestGapConstraints_CustomRules(t *testing.T) {
	ctx := constraint.NewContext([]string{"Alice"}, nil, constraint.Rules{PrimaryGap: 0, SecondaryWindow: 0})
	ctx.Ledger.Record("Alice", model.RolePrimary, 0, 1, 0)

	s := model.Slot{Date: "2024-01-01", Kind: model.SlotEvening, Index: 1}
	if !NewPrimaryGapConstraint().Allows(ctx, "Alice", s, model.RolePrimary) {
		t.Error("PrimaryGap=0 时相邻时段应允许")
	}
}

func TestDistinctRolesConstraint_Allows(t *testing.T) {
	ctx := constraint.NewContext([]string{"Alice", "Bob"}, nil, constraint.DefaultRules())
	ctx.Ledger.Record("Alice", model.RolePrimary, 4, 1, 0)
	c := NewDistinctRolesConstraint()
	s := model.Slot{Date: "2024-01-03", Kind: model.SlotMorning, Index: 4}

	if c.Allows(ctx, "Alice", s, model.RoleSecondary) {
		t.Error("同一时段的主值班不能兼任副值班")
	}
	if !c.Allows(ctx, "Bob", s, model.RoleSecondary) {
		t.Error("Bob 应可担任副值班")
	}
	if !c.Allows(ctx, "Alice", s, model.RolePrimary) {
		t.Error("主值班角色不受该约束影响")
	}
}

func TestRegisterDefaultConstraints(t *testing.T) {
	manager := NewDefaultManager()

	if manager.Count() != 4 {
		t.Fatalf("Expected 4 constraints, got %d", manager.Count())
	}
	for _, typ := range []constraint.Type{
		constraint.TypeLeave, constraint.TypePrimaryGap,
		constraint.TypeSecondaryGap, constraint.TypeDistinctRoles,
	} {
		if manager.GetConstraint(typ) == nil {
			t.Errorf("missing constraint %s", typ)
		}
	}
}
