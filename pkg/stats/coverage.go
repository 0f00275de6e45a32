package stats

import (
	"fmt"
	"strings"

	"github.com/paiban/oncall/pkg/model"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	// 整体覆盖率
	TotalSlots        int     `json:"total_slots"`        // 总时段数
	FilledPrimary     int     `json:"filled_primary"`     // 主值班已分配数
	FilledSecondary   int     `json:"filled_secondary"`   // 副值班已分配数
	PrimaryCoverage   float64 `json:"primary_coverage"`   // 主值班覆盖率 (%)
	SecondaryCoverage float64 `json:"secondary_coverage"` // 副值班覆盖率 (%)
	OverallCoverage   float64 `json:"overall_coverage"`   // 整体覆盖率 (%)

	// 按日期统计
	DailyCoverage map[string]DayCoverage `json:"daily_coverage"`

	// 按时段类型统计
	KindCoverage map[model.SlotKind]float64 `json:"kind_coverage"`

	// 问题识别
	UnfilledSlots []UnfilledSlot `json:"unfilled_slots"`
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Date         string  `json:"date"`
	TotalRoles   int     `json:"total_roles"`
	Filled       int     `json:"filled"`
	CoverageRate float64 `json:"coverage_rate"`
}

// UnfilledSlot 未覆盖时段
type UnfilledSlot struct {
	Date  string         `json:"date"`
	Kind  model.SlotKind `json:"slot"`
	Index int            `json:"index"`
	Role  model.Role     `json:"role"`
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze 分析覆盖率，每个时段计主、副两个角色
func (c *CoverageAnalyzer) Analyze(assignments []model.Assignment) *CoverageMetrics {
	if len(assignments) == 0 {
		return &CoverageMetrics{
			DailyCoverage:     make(map[string]DayCoverage),
			KindCoverage:      make(map[model.SlotKind]float64),
			UnfilledSlots:     []UnfilledSlot{},
			PrimaryCoverage:   100,
			SecondaryCoverage: 100,
			OverallCoverage:   100,
		}
	}

	metrics := &CoverageMetrics{
		TotalSlots:    len(assignments),
		UnfilledSlots: []UnfilledSlot{},
	}

	dailyStats := make(map[string]*DayCoverage)
	kindTotals := make(map[model.SlotKind]int)
	kindFilled := make(map[model.SlotKind]int)

	for _, a := range assignments {
		day, exists := dailyStats[a.Date]
		if !exists {
			day = &DayCoverage{Date: a.Date}
			dailyStats[a.Date] = day
		}
		day.TotalRoles += 2
		kindTotals[a.Kind] += 2

		if a.HasPrimary() {
			metrics.FilledPrimary++
			day.Filled++
			kindFilled[a.Kind]++
		} else {
			metrics.UnfilledSlots = append(metrics.UnfilledSlots, UnfilledSlot{
				Date: a.Date, Kind: a.Kind, Index: a.Index, Role: model.RolePrimary,
			})
		}

		if a.HasSecondary() {
			metrics.FilledSecondary++
			day.Filled++
			kindFilled[a.Kind]++
		} else {
			metrics.UnfilledSlots = append(metrics.UnfilledSlots, UnfilledSlot{
				Date: a.Date, Kind: a.Kind, Index: a.Index, Role: model.RoleSecondary,
			})
		}
	}

	metrics.PrimaryCoverage = percent(metrics.FilledPrimary, metrics.TotalSlots)
	metrics.SecondaryCoverage = percent(metrics.FilledSecondary, metrics.TotalSlots)
	metrics.OverallCoverage = percent(metrics.FilledPrimary+metrics.FilledSecondary, 2*metrics.TotalSlots)

	metrics.DailyCoverage = make(map[string]DayCoverage, len(dailyStats))
	for date, day := range dailyStats {
		day.CoverageRate = percent(day.Filled, day.TotalRoles)
		metrics.DailyCoverage[date] = *day
	}

	metrics.KindCoverage = make(map[model.SlotKind]float64, len(kindTotals))
	for kind, total := range kindTotals {
		metrics.KindCoverage[kind] = percent(kindFilled[kind], total)
	}

	return metrics
}

// AnalyzeRange 只分析闭区间 [start, end] 内的分配
func (c *CoverageAnalyzer) AnalyzeRange(assignments []model.Assignment, start, end string) *CoverageMetrics {
	r := model.DateRange{StartDate: start, EndDate: end}
	filtered := make([]model.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if r.Contains(a.Date) {
			filtered = append(filtered, a)
		}
	}
	return c.Analyze(filtered)
}

// GenerateCoverageReport 生成覆盖率报告
func (c *CoverageAnalyzer) GenerateCoverageReport(metrics *CoverageMetrics) string {
	var b strings.Builder

	b.WriteString("=== 覆盖率分析报告 ===\n\n")
	b.WriteString("【整体覆盖情况】\n")
	fmt.Fprintf(&b, "  总时段数: %d\n", metrics.TotalSlots)
	fmt.Fprintf(&b, "  主值班覆盖率: %.1f%%\n", metrics.PrimaryCoverage)
	fmt.Fprintf(&b, "  副值班覆盖率: %.1f%%\n", metrics.SecondaryCoverage)
	fmt.Fprintf(&b, "  整体覆盖率: %.1f%%\n", metrics.OverallCoverage)

	if len(metrics.UnfilledSlots) > 0 {
		b.WriteString("\n【未覆盖时段】\n")
		for _, s := range metrics.UnfilledSlots {
			fmt.Fprintf(&b, "  - %s %s %s\n", s.Date, s.Kind, s.Role)
		}
	}

	return b.String()
}

func percent(n, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(n) / float64(total) * 100
}
