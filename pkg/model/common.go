// Package model 定义值班排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout 日期格式 YYYY-MM-DD
const DateLayout = "2006-01-02"

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now().UTC()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ParseDate 解析日历日期（UTC 零点）
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate 格式化日历日期
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// IsWeekendDay 判断是否为周六或周日
func IsWeekendDay(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsWeekendDate 判断日期字符串是否落在周末，无法解析时返回 false
func IsWeekendDate(date string) bool {
	t, err := ParseDate(date)
	if err != nil {
		return false
	}
	return IsWeekendDay(t)
}

// DateRange 日期范围（闭区间）
type DateRange struct {
	StartDate string `json:"start_date" yaml:"start"`
	EndDate   string `json:"end_date" yaml:"end"`
}

// Bounds 解析起止日期
func (r DateRange) Bounds() (start, end time.Time, err error) {
	if start, err = ParseDate(r.StartDate); err != nil {
		return
	}
	end, err = ParseDate(r.EndDate)
	return
}

// Days 返回范围内的天数，范围无效时返回 0
func (r DateRange) Days() int {
	start, end, err := r.Bounds()
	if err != nil || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// Contains 检查日期是否在范围内
func (r DateRange) Contains(date string) bool {
	// YYYY-MM-DD 的字典序与时间序一致
	return date >= r.StartDate && date <= r.EndDate
}
