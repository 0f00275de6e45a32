package builtin

import (
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/constraint"
)

// DistinctRolesConstraint 同一时段主副值班不能是同一人
type DistinctRolesConstraint struct {
	*BaseConstraint
}

// NewDistinctRolesConstraint 创建主副不同人约束
func NewDistinctRolesConstraint() *DistinctRolesConstraint {
	return &DistinctRolesConstraint{
		BaseConstraint: NewBaseConstraint("主副不同人", constraint.TypeDistinctRoles),
	}
}

// Allows 副值班候选不能是本时段已选定的主值班
func (c *DistinctRolesConstraint) Allows(ctx *constraint.Context, member string, s model.Slot, role model.Role) bool {
	if role != model.RoleSecondary {
		return true
	}
	last, ok := ctx.Ledger.LastIndex(member, model.RolePrimary)
	return !ok || last != s.Index
}
