// Package constraint 定义候选资格约束接口、排班上下文和管理器
package constraint

import (
	"fmt"
	"sync"

	"github.com/paiban/oncall/pkg/model"
)

// Manager 约束管理器
type Manager struct {
	constraints []Constraint
	mu          sync.RWMutex
}

// NewManager 创建约束管理器
func NewManager() *Manager {
	return &Manager{
		constraints: make([]Constraint, 0),
	}
}

// Register 注册约束，同类型约束会被替换
func (m *Manager) Register(c Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.constraints {
		if existing.Type() == c.Type() {
			m.constraints[i] = c
			return
		}
	}

	m.constraints = append(m.constraints, c)
}

// Unregister 注销约束
func (m *Manager) Unregister(t Type) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.constraints {
		if c.Type() == t {
			m.constraints = append(m.constraints[:i], m.constraints[i+1:]...)
			return
		}
	}
}

// GetConstraint 获取约束
func (m *Manager) GetConstraint(t Type) Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.constraints {
		if c.Type() == t {
			return c
		}
	}
	return nil
}

// GetAll 获取所有约束
func (m *Manager) GetAll() []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Constraint, len(m.constraints))
	copy(result, m.constraints)
	return result
}

// CanAssign 检查成员能否以指定角色承担时段
// 不满足时返回第一个拦截的约束名称
func (m *Manager) CanAssign(ctx *Context, member string, s model.Slot, role model.Role) (bool, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.constraints {
		if !c.Allows(ctx, member, s, role) {
			return false, fmt.Sprintf("违反约束: %s", c.Name())
		}
	}
	return true, ""
}

// Eligible 按输入顺序返回所有满足约束的成员
func (m *Manager) Eligible(ctx *Context, s model.Slot, role model.Role) []string {
	eligible := make([]string, 0, len(ctx.Members))
	for _, member := range ctx.Members {
		if ok, _ := m.CanAssign(ctx, member, s, role); ok {
			eligible = append(eligible, member)
		}
	}
	return eligible
}

// Clear 清除所有约束
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = make([]Constraint, 0)
}

// Count 返回约束数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.constraints)
}
