package builtin

import (
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/constraint"
)

// PrimaryGapConstraint 主值班冷却约束
// 主值班要求距本人上次主值班、副值班都超过 PrimaryGap 个时段；
// 副值班同样要求距上次主值班超过 PrimaryGap 个时段
type PrimaryGapConstraint struct {
	*BaseConstraint
}

// NewPrimaryGapConstraint 创建主值班冷却约束
func NewPrimaryGapConstraint() *PrimaryGapConstraint {
	return &PrimaryGapConstraint{
		BaseConstraint: NewBaseConstraint("主值班冷却", constraint.TypePrimaryGap),
	}
}

// Allows 检查间隔
func (c *PrimaryGapConstraint) Allows(ctx *constraint.Context, member string, s model.Slot, role model.Role) bool {
	gap := ctx.Rules.PrimaryGap

	if last, ok := ctx.Ledger.LastIndex(member, model.RolePrimary); ok && s.Index-last <= gap {
		return false
	}
	if role == model.RolePrimary {
		if last, ok := ctx.Ledger.LastIndex(member, model.RoleSecondary); ok && s.Index-last <= gap {
			return false
		}
	}
	return true
}

// SecondaryWindowConstraint 副值班冷却约束
// 副值班只要求距上次副值班的绝对距离超过 SecondaryWindow
type SecondaryWindowConstraint struct {
	*BaseConstraint
}

// NewSecondaryWindowConstraint 创建副值班冷却约束
func NewSecondaryWindowConstraint() *SecondaryWindowConstraint {
	return &SecondaryWindowConstraint{
		BaseConstraint: NewBaseConstraint("副值班冷却", constraint.TypeSecondaryGap),
	}
}

// Allows 主值班不受该约束影响
func (c *SecondaryWindowConstraint) Allows(ctx *constraint.Context, member string, s model.Slot, role model.Role) bool {
	if role != model.RoleSecondary {
		return true
	}
	last, ok := ctx.Ledger.LastIndex(member, model.RoleSecondary)
	if !ok {
		return true
	}
	return abs(s.Index-last) > ctx.Rules.SecondaryWindow
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
