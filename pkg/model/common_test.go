package model

import (
	"testing"
)

func TestDateRange_Days(t *testing.T) {
	tests := []struct {
		name     string
		r        DateRange
		expected int
	}{
		{"单日", DateRange{"2024-01-01", "2024-01-01"}, 1},
		{"一周", DateRange{"2024-01-01", "2024-01-07"}, 7},
		{"跨月", DateRange{"2024-01-30", "2024-02-02"}, 4},
		{"闰年二月", DateRange{"2024-02-28", "2024-03-01"}, 3},
		{"起止颠倒", DateRange{"2024-01-05", "2024-01-01"}, 0},
		{"日期为空", DateRange{"", "2024-01-01"}, 0},
		{"格式错误", DateRange{"2024/01/01", "2024-01-02"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Days(); got != tt.expected {
				t.Errorf("Days() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestDateRange_Contains(t *testing.T) {
	r := DateRange{StartDate: "2024-01-01", EndDate: "2024-01-31"}

	if !r.Contains("2024-01-01") || !r.Contains("2024-01-31") {
		t.Error("边界日期应在范围内")
	}
	if r.Contains("2023-12-31") || r.Contains("2024-02-01") {
		t.Error("范围外日期不应包含")
	}
}

func TestIsWeekendDate(t *testing.T) {
	tests := []struct {
		date     string
		expected bool
	}{
		{"2024-01-01", false}, // 周一
		{"2024-01-05", false}, // 周五
		{"2024-01-06", true},  // 周六
		{"2024-01-07", true},  // 周日
		{"not-a-date", false},
	}

	for _, tt := range tests {
		if got := IsWeekendDate(tt.date); got != tt.expected {
			t.Errorf("IsWeekendDate(%q) = %v, expected %v", tt.date, got, tt.expected)
		}
	}
}

func TestNewBaseModel(t *testing.T) {
	base := NewBaseModel()

	if base.ID.String() == "" {
		t.Error("ID should not be empty")
	}
	if base.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
	if !base.CreatedAt.Equal(base.UpdatedAt) {
		t.Error("CreatedAt and UpdatedAt should match on creation")
	}
}

func TestDisplay(t *testing.T) {
	if Display(Unfilled) != UnfilledDisplay {
		t.Errorf("未分配应显示为 %q", UnfilledDisplay)
	}
	if Display("Alice") != "Alice" {
		t.Error("成员名应原样显示")
	}
}

func TestLeaveTypeAndScope_Valid(t *testing.T) {
	for _, lt := range []LeaveType{LeaveAllMorning, LeaveAllEvening, LeaveComplete, LeaveWeekend, LeaveCustom} {
		if !lt.Valid() {
			t.Errorf("%s 应为合法请假类型", lt)
		}
	}
	if LeaveType("vacation").Valid() {
		t.Error("未知请假类型应不合法")
	}
	if !ScopeBoth.Valid() || LeaveScope("Weekend").Valid() {
		t.Error("时段范围校验错误")
	}
	if !SlotWeekend.Valid() || SlotKind("Night").Valid() {
		t.Error("时段类型校验错误")
	}
}
