package builtin

import (
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/constraint"
)

// LeaveConstraint 请假约束
// 成员任一请假记录命中目标时段即不可分配
type LeaveConstraint struct {
	*BaseConstraint
}

// NewLeaveConstraint 创建请假约束
func NewLeaveConstraint() *LeaveConstraint {
	return &LeaveConstraint{
		BaseConstraint: NewBaseConstraint("请假", constraint.TypeLeave),
	}
}

// Allows 成员未请假时允许分配，与角色无关
func (c *LeaveConstraint) Allows(ctx *constraint.Context, member string, s model.Slot, role model.Role) bool {
	return !IsOnLeave(member, s.Date, s.Kind, ctx.MemberLeaves(member))
}

// IsOnLeave 判断成员在指定日期与时段是否不可用
// 其他成员的请假记录会被跳过
func IsOnLeave(member, date string, kind model.SlotKind, leaves []model.Leave) bool {
	for _, l := range leaves {
		if l.Member != member {
			continue
		}
		if leaveMatches(l, date, kind) {
			return true
		}
	}
	return false
}

func leaveMatches(l model.Leave, date string, kind model.SlotKind) bool {
	switch l.Type {
	case model.LeaveCustom:
		if l.Date != date {
			return false
		}
		switch {
		case l.Slot == model.ScopeBoth:
			return true
		case string(l.Slot) == string(kind):
			return true
		// 周末只有一个时段，任何半天请假都视为整天不可用
		case kind == model.SlotWeekend && (l.Slot == model.ScopeMorning || l.Slot == model.ScopeEvening):
			return true
		}
		return false
	case model.LeaveAllMorning:
		return kind == model.SlotMorning
	case model.LeaveAllEvening:
		return kind == model.SlotEvening
	case model.LeaveComplete:
		return true
	case model.LeaveWeekend:
		// 按日期的星期判断，而不是时段类型
		return model.IsWeekendDate(date)
	}
	return false
}
