// Package builtin 提供内置约束实现
package builtin

import (
	"github.com/paiban/oncall/pkg/scheduler/constraint"
)

// BaseConstraint 约束基类
type BaseConstraint struct {
	name string
	typ  constraint.Type
}

// NewBaseConstraint 创建基础约束
func NewBaseConstraint(name string, typ constraint.Type) *BaseConstraint {
	return &BaseConstraint{
		name: name,
		typ:  typ,
	}
}

// Name 返回约束名称
func (c *BaseConstraint) Name() string { return c.name }

// Type 返回约束类型
func (c *BaseConstraint) Type() constraint.Type { return c.typ }
