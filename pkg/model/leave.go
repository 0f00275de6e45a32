package model

// LeaveType 请假类型
type LeaveType string

const (
	LeaveAllMorning LeaveType = "allMorning" // 所有早班
	LeaveAllEvening LeaveType = "allEvening" // 所有晚班
	LeaveComplete   LeaveType = "complete"   // 整个排班周期
	LeaveWeekend    LeaveType = "weekend"    // 所有周末
	LeaveCustom     LeaveType = "custom"     // 指定日期和时段
)

// Valid 检查请假类型是否合法
func (t LeaveType) Valid() bool {
	switch t {
	case LeaveAllMorning, LeaveAllEvening, LeaveComplete, LeaveWeekend, LeaveCustom:
		return true
	}
	return false
}

// LeaveScope 自定义请假的时段范围
type LeaveScope string

const (
	ScopeMorning LeaveScope = "Morning"
	ScopeEvening LeaveScope = "Evening"
	ScopeBoth    LeaveScope = "Both"
)

// Valid 检查时段范围是否合法
func (s LeaveScope) Valid() bool {
	switch s {
	case ScopeMorning, ScopeEvening, ScopeBoth:
		return true
	}
	return false
}

// Leave 请假约束
// 请假不会被消耗，每次候选评估都独立查询
type Leave struct {
	ID     int64      `json:"id,omitempty" yaml:"-"`
	Member string     `json:"member" yaml:"member"`
	Type   LeaveType  `json:"type" yaml:"type"`
	Date   string     `json:"date,omitempty" yaml:"date,omitempty"`
	Slot   LeaveScope `json:"slot,omitempty" yaml:"slot,omitempty"`
}
