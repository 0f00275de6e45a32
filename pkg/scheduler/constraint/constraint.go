// Package constraint 定义候选资格约束接口、排班上下文和管理器
package constraint

import (
	"github.com/paiban/oncall/pkg/model"
)

// Type 约束类型标识
type Type string

const (
	TypeLeave         Type = "leave"          // 请假
	TypePrimaryGap    Type = "primary_gap"    // 主值班冷却
	TypeSecondaryGap  Type = "secondary_gap"  // 副值班冷却
	TypeDistinctRoles Type = "distinct_roles" // 同一时段主副不同人
)

// Constraint 约束接口
// 所有约束都是硬约束：任一不满足即不可分配
type Constraint interface {
	// Name 返回约束名称
	Name() string

	// Type 返回约束类型
	Type() Type

	// Allows 判断成员能否以指定角色承担时段
	Allows(ctx *Context, member string, s model.Slot, role model.Role) bool
}

// Rules 间隔规则
type Rules struct {
	// PrimaryGap 主值班要求距上次主值班、副值班的时段数都严格大于该值
	PrimaryGap int `json:"primary_gap" mapstructure:"primary_gap"`
	// SecondaryWindow 副值班要求距上次副值班的时段数绝对值严格大于该值
	SecondaryWindow int `json:"secondary_window" mapstructure:"secondary_window"`
}

// DefaultRules 返回默认间隔规则
func DefaultRules() Rules {
	return Rules{
		PrimaryGap:      2,
		SecondaryWindow: 1,
	}
}

// Context 排班上下文
// 一次生成独占一个上下文，生成结束即丢弃
type Context struct {
	// 输入数据
	Members []string      `json:"members"`
	Leaves  []model.Leave `json:"leaves"`
	Rules   Rules         `json:"rules"`

	// 运行状态
	Ledger *Ledger `json:"-"`

	// 索引缓存
	leavesByMember map[string][]model.Leave
}

// NewContext 创建新的排班上下文
func NewContext(members []string, leaves []model.Leave, rules Rules) *Context {
	c := &Context{
		Members: members,
		Leaves:  leaves,
		Rules:   rules,
		Ledger:  NewLedger(members),
	}
	c.leavesByMember = make(map[string][]model.Leave)
	for _, l := range leaves {
		c.leavesByMember[l.Member] = append(c.leavesByMember[l.Member], l)
	}
	return c
}

// MemberLeaves 获取成员的请假记录
func (c *Context) MemberLeaves(member string) []model.Leave {
	return c.leavesByMember[member]
}
