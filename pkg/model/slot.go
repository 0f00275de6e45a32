package model

// SlotKind 值班时段类型
type SlotKind string

const (
	SlotMorning SlotKind = "Morning" // 工作日早班
	SlotEvening SlotKind = "Evening" // 工作日晚班
	SlotWeekend SlotKind = "Weekend" // 周末全天
)

// IsWeekend 是否为周末时段
func (k SlotKind) IsWeekend() bool {
	return k == SlotWeekend
}

// Valid 检查时段类型是否合法
func (k SlotKind) Valid() bool {
	switch k {
	case SlotMorning, SlotEvening, SlotWeekend:
		return true
	}
	return false
}

// Role 值班角色
type Role string

const (
	RolePrimary   Role = "primary"   // 主值班
	RoleSecondary Role = "secondary" // 副值班
)

// Slot 值班时段
// Index 是整个排班周期内从 0 开始的顺序号，间隔计算基于它而非时间戳
type Slot struct {
	Date  string   `json:"date"`
	Kind  SlotKind `json:"slot"`
	Index int      `json:"index"`
}
