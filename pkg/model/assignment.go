package model

import "time"

// Unfilled 未能分配的哨兵值
const Unfilled = ""

// UnfilledDisplay 未分配在表格和导出中的展示文本
const UnfilledDisplay = "—"

// Display 返回成员的展示文本
func Display(member string) string {
	if member == Unfilled {
		return UnfilledDisplay
	}
	return member
}

// Assignment 单个时段的值班分配
type Assignment struct {
	Date      string   `json:"date" db:"date"`
	Kind      SlotKind `json:"slot" db:"slot"`
	Index     int      `json:"index" db:"slot_index"`
	Primary   string   `json:"primary" db:"primary_member"`
	Secondary string   `json:"secondary" db:"secondary_member"`
}

// HasPrimary 是否分配了主值班
func (a *Assignment) HasPrimary() bool {
	return a.Primary != Unfilled
}

// HasSecondary 是否分配了副值班
func (a *Assignment) HasSecondary() bool {
	return a.Secondary != Unfilled
}

// Member 返回指定角色的成员
func (a *Assignment) Member(role Role) string {
	if role == RoleSecondary {
		return a.Secondary
	}
	return a.Primary
}

// Slot 返回分配对应的时段
func (a *Assignment) Slot() Slot {
	return Slot{Date: a.Date, Kind: a.Kind, Index: a.Index}
}

// MemberLoad 成员工作量（由排班引擎直接输出）
type MemberLoad struct {
	Member         string  `json:"member" db:"member"`
	Load           float64 `json:"load" db:"load_units"`
	WeekendCount   float64 `json:"weekend_count" db:"weekend_count"`
	PrimaryCount   int     `json:"primary_count" db:"primary_count"`
	SecondaryCount int     `json:"secondary_count" db:"secondary_count"`
}

// RosterRow 按日期折叠后的排班表行
type RosterRow struct {
	Date             string `json:"date"`
	IsWeekend        bool   `json:"is_weekend"`
	MorningPrimary   string `json:"morning_primary"`
	MorningSecondary string `json:"morning_secondary"`
	EveningPrimary   string `json:"evening_primary"`
	EveningSecondary string `json:"evening_secondary"`
	WeekendPrimary   string `json:"weekend_primary"`
	WeekendSecondary string `json:"weekend_secondary"`
}

// Roster 已保存的排班结果
type Roster struct {
	BaseModel
	Name        string       `json:"name" db:"name"`
	StartDate   string       `json:"start_date" db:"start_date"`
	EndDate     string       `json:"end_date" db:"end_date"`
	Members     []string     `json:"members" db:"-"`
	Leaves      []Leave      `json:"leaves" db:"-"`
	Assignments []Assignment `json:"assignments,omitempty" db:"-"`
	Loads       []MemberLoad `json:"loads,omitempty" db:"-"`
	FillRate    float64      `json:"fill_rate" db:"fill_rate"`
}

// Draft 工作中的排班输入（成员、日期、请假），对应页面本地保存的会话
type Draft struct {
	Members   []string  `json:"members"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Leaves    []Leave   `json:"leaves"`
	SavedAt   time.Time `json:"saved_at"`
}
