// Package slot 将日期范围展开为有序的值班时段序列
package slot

import (
	"time"

	"github.com/paiban/oncall/pkg/model"
)

// Enumerate 展开闭区间 [start, end] 内的所有时段
// 周六、周日只产生一个 Weekend 时段，工作日依次产生 Morning、Evening
// start 晚于 end 时返回空序列
func Enumerate(start, end time.Time) []model.Slot {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return []model.Slot{}
	}

	days := int(end.Sub(start).Hours()/24) + 1
	slots := make([]model.Slot, 0, days*2)
	index := 0

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := model.FormatDate(d)
		if model.IsWeekendDay(d) {
			slots = append(slots, model.Slot{Date: date, Kind: model.SlotWeekend, Index: index})
			index++
			continue
		}
		slots = append(slots,
			model.Slot{Date: date, Kind: model.SlotMorning, Index: index},
			model.Slot{Date: date, Kind: model.SlotEvening, Index: index + 1},
		)
		index += 2
	}

	return slots
}

// EnumerateRange 解析 YYYY-MM-DD 日期后展开时段
// 任一端为空或无法解析时返回空序列，校验由调用方负责
func EnumerateRange(startDate, endDate string) []model.Slot {
	if startDate == "" || endDate == "" {
		return []model.Slot{}
	}
	start, err := model.ParseDate(startDate)
	if err != nil {
		return []model.Slot{}
	}
	end, err := model.ParseDate(endDate)
	if err != nil {
		return []model.Slot{}
	}
	return Enumerate(start, end)
}

// Count 统计日期范围内的工作日与周末天数
func Count(startDate, endDate string) (weekdays, weekends int) {
	for _, s := range EnumerateRange(startDate, endDate) {
		switch s.Kind {
		case model.SlotWeekend:
			weekends++
		case model.SlotMorning:
			weekdays++
		}
	}
	return
}

// truncateDay 取日历日期，保留原日期的年月日
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
