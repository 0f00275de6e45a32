// Package builtin 提供内置约束实现
package builtin

import (
	"github.com/paiban/oncall/pkg/scheduler/constraint"
)

// RegisterDefaultConstraints 注册默认约束到管理器
// 间隔参数从 ctx.Rules 读取，这里只决定启用哪些约束
func RegisterDefaultConstraints(manager *constraint.Manager) {
	manager.Register(NewLeaveConstraint())
	manager.Register(NewPrimaryGapConstraint())
	manager.Register(NewSecondaryWindowConstraint())
	manager.Register(NewDistinctRolesConstraint())
}

// NewDefaultManager 创建注册了全部默认约束的管理器
func NewDefaultManager() *constraint.Manager {
	manager := constraint.NewManager()
	RegisterDefaultConstraints(manager)
	return manager
}
