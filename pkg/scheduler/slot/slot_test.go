package slot

import (
	"testing"
	"time"

	"github.com/paiban/oncall/pkg/model"
)

func TestEnumerateRange_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantSlots int
		wantKinds []model.SlotKind
	}{
		{
			name:      "单个工作日",
			start:     "2024-01-01",
			end:       "2024-01-01",
			wantSlots: 2,
			wantKinds: []model.SlotKind{model.SlotMorning, model.SlotEvening},
		},
		{
			name:      "周六周日",
			start:     "2024-01-06",
			end:       "2024-01-07",
			wantSlots: 2,
			wantKinds: []model.SlotKind{model.SlotWeekend, model.SlotWeekend},
		},
		{
			name:      "周五到周一",
			start:     "2024-01-05",
			end:       "2024-01-08",
			wantSlots: 6,
			wantKinds: []model.SlotKind{
				model.SlotMorning, model.SlotEvening,
				model.SlotWeekend, model.SlotWeekend,
				model.SlotMorning, model.SlotEvening,
			},
		},
		{"起止颠倒", "2024-01-08", "2024-01-01", 0, nil},
		{"开始日期为空", "", "2024-01-01", 0, nil},
		{"结束日期为空", "2024-01-01", "", 0, nil},
		{"日期无法解析", "2024-13-01", "2024-12-31", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := EnumerateRange(tt.start, tt.end)
			if len(slots) != tt.wantSlots {
				t.Fatalf("len = %d, expected %d", len(slots), tt.wantSlots)
			}
			for i, kind := range tt.wantKinds {
				if slots[i].Kind != kind {
					t.Errorf("slot %d kind = %s, expected %s", i, slots[i].Kind, kind)
				}
			}
		})
	}
}

func TestEnumerateRange_IndexStrictlyIncreasing(t *testing.T) {
	slots := EnumerateRange("2024-01-01", "2024-03-31")

	for i, s := range slots {
		if s.Index != i {
			t.Fatalf("slot %d has index %d", i, s.Index)
		}
	}
}

func TestEnumerateRange_TwoWPlusE(t *testing.T) {
	// 2024 年 1 月：23 个工作日，8 个周末日
	slots := EnumerateRange("2024-01-01", "2024-01-31")
	weekdays, weekends := Count("2024-01-01", "2024-01-31")

	if weekdays != 23 || weekends != 8 {
		t.Fatalf("Count() = (%d, %d), expected (23, 8)", weekdays, weekends)
	}
	if len(slots) != 2*weekdays+weekends {
		t.Errorf("len = %d, expected %d", len(slots), 2*weekdays+weekends)
	}
}

func TestEnumerate_NeverMixesShapesOnOneDate(t *testing.T) {
	byDate := make(map[string][]model.SlotKind)
	for _, s := range EnumerateRange("2024-02-01", "2024-02-29") {
		byDate[s.Date] = append(byDate[s.Date], s.Kind)
	}

	for date, kinds := range byDate {
		weekend := model.IsWeekendDate(date)
		switch {
		case weekend && (len(kinds) != 1 || kinds[0] != model.SlotWeekend):
			t.Errorf("%s: 周末应只有一个 Weekend 时段, got %v", date, kinds)
		case !weekend && (len(kinds) != 2 || kinds[0] != model.SlotMorning || kinds[1] != model.SlotEvening):
			t.Errorf("%s: 工作日应为 Morning+Evening, got %v", date, kinds)
		}
	}
}

func TestEnumerate_IgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	start := time.Date(2024, 1, 6, 23, 30, 0, 0, loc) // 周六深夜
	end := time.Date(2024, 1, 6, 1, 0, 0, 0, loc)

	slots := Enumerate(start, end)
	if len(slots) != 1 || slots[0].Date != "2024-01-06" || slots[0].Kind != model.SlotWeekend {
		t.Errorf("unexpected slots: %+v", slots)
	}
}

func TestEnumerate_LongRange(t *testing.T) {
	start, _ := model.ParseDate("2000-01-01")
	end, _ := model.ParseDate("2029-12-31")

	slots := Enumerate(start, end)
	days := int(end.Sub(start).Hours()/24) + 1
	if len(slots) <= days || len(slots) >= 2*days {
		t.Errorf("30 年范围的时段数异常: %d (days=%d)", len(slots), days)
	}
}
