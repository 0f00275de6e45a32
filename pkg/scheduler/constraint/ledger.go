package constraint

import (
	"github.com/paiban/oncall/pkg/model"
)

// Ledger 记录一次生成过程中每个成员的累计负载和最近值班位置
// 负载与周末计数只增不减
type Ledger struct {
	members     []string
	load        map[string]float64
	weekend     map[string]float64
	primaries   map[string]int
	secondaries map[string]int
	// 未出现在 map 中表示从未担任该角色，相当于负无穷
	lastPrimary   map[string]int
	lastSecondary map[string]int
}

// NewLedger 创建负载账本，所有成员负载为 0
func NewLedger(members []string) *Ledger {
	l := &Ledger{
		members:       members,
		load:          make(map[string]float64, len(members)),
		weekend:       make(map[string]float64, len(members)),
		primaries:     make(map[string]int, len(members)),
		secondaries:   make(map[string]int, len(members)),
		lastPrimary:   make(map[string]int, len(members)),
		lastSecondary: make(map[string]int, len(members)),
	}
	for _, m := range members {
		l.load[m] = 0
		l.weekend[m] = 0
	}
	return l
}

// Load 返回成员累计负载
func (l *Ledger) Load(member string) float64 {
	return l.load[member]
}

// WeekendCount 返回成员累计周末时段数（副值班按半个计）
func (l *Ledger) WeekendCount(member string) float64 {
	return l.weekend[member]
}

// LastIndex 返回成员最近一次担任该角色的时段序号
// ok 为 false 表示从未担任，不受间隔约束
func (l *Ledger) LastIndex(member string, role model.Role) (index int, ok bool) {
	if role == model.RoleSecondary {
		index, ok = l.lastSecondary[member]
		return
	}
	index, ok = l.lastPrimary[member]
	return
}

// Record 记录一次分配
func (l *Ledger) Record(member string, role model.Role, index int, load, weekend float64) {
	l.load[member] += load
	l.weekend[member] += weekend
	if role == model.RoleSecondary {
		l.lastSecondary[member] = index
		l.secondaries[member]++
		return
	}
	l.lastPrimary[member] = index
	l.primaries[member]++
}

// Snapshot 按输入顺序导出每个成员的负载，重复成员只出现一次
func (l *Ledger) Snapshot() []model.MemberLoad {
	seen := make(map[string]bool, len(l.members))
	loads := make([]model.MemberLoad, 0, len(l.members))
	for _, m := range l.members {
		if seen[m] {
			continue
		}
		seen[m] = true
		loads = append(loads, model.MemberLoad{
			Member:         m,
			Load:           l.load[m],
			WeekendCount:   l.weekend[m],
			PrimaryCount:   l.primaries[m],
			SecondaryCount: l.secondaries[m],
		})
	}
	return loads
}
