// Package stats 提供值班表统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/paiban/oncall/pkg/model"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	// 负载公平性
	LoadGini     float64 `json:"load_gini"`     // 负载基尼系数 (0=完全公平, 1=完全不公平)
	LoadVariance float64 `json:"load_variance"` // 负载方差
	LoadStdDev   float64 `json:"load_std_dev"`  // 负载标准差
	AvgLoad      float64 `json:"avg_load"`      // 人均负载
	MaxLoad      float64 `json:"max_load"`      // 最大负载
	MinLoad      float64 `json:"min_load"`      // 最小负载
	LoadRange    float64 `json:"load_range"`    // 负载极差

	// 周末公平性
	WeekendGini float64 `json:"weekend_gini"` // 周末计数基尼系数

	// 成员级别统计
	MemberStats []MemberStat `json:"member_stats"`

	// 综合评分
	OverallFairnessScore float64 `json:"overall_fairness_score"` // 综合公平性评分 (0-100)
}

// MemberStat 成员统计
type MemberStat struct {
	Member         string  `json:"member"`
	Load           float64 `json:"load"`
	WeekendCount   float64 `json:"weekend_count"`
	PrimaryCount   int     `json:"primary_count"`
	SecondaryCount int     `json:"secondary_count"`
	Deviation      float64 `json:"deviation"` // 与平均值的偏差百分比
}

// WorkloadAnalyzer 工作量分析器
// 输入为排班引擎输出的成员负载，不再从分配结果反推
type WorkloadAnalyzer struct{}

// NewWorkloadAnalyzer 创建工作量分析器
func NewWorkloadAnalyzer() *WorkloadAnalyzer {
	return &WorkloadAnalyzer{}
}

// Analyze 分析负载公平性
func (f *WorkloadAnalyzer) Analyze(loads []model.MemberLoad) *FairnessMetrics {
	if len(loads) == 0 {
		return &FairnessMetrics{
			MemberStats:          []MemberStat{},
			OverallFairnessScore: 100,
		}
	}

	values := make([]float64, len(loads))
	weekends := make([]float64, len(loads))
	memberStats := make([]MemberStat, len(loads))
	for i, l := range loads {
		values[i] = l.Load
		weekends[i] = l.WeekendCount
		memberStats[i] = MemberStat{
			Member:         l.Member,
			Load:           l.Load,
			WeekendCount:   l.WeekendCount,
			PrimaryCount:   l.PrimaryCount,
			SecondaryCount: l.SecondaryCount,
		}
	}

	avg := f.calculateMean(values)
	variance := f.calculateVariance(values, avg)
	stdDev := math.Sqrt(variance)
	maxLoad, minLoad := f.calculateRange(values)

	for i := range memberStats {
		if avg > 0 {
			memberStats[i].Deviation = (memberStats[i].Load - avg) / avg * 100
		}
	}

	// 负载高的在前，同负载保持输入顺序
	sort.SliceStable(memberStats, func(i, j int) bool {
		return memberStats[i].Load > memberStats[j].Load
	})

	loadGini := f.calculateGini(values)
	weekendGini := f.calculateGini(weekends)

	return &FairnessMetrics{
		LoadGini:             loadGini,
		LoadVariance:         variance,
		LoadStdDev:           stdDev,
		AvgLoad:              avg,
		MaxLoad:              maxLoad,
		MinLoad:              minLoad,
		LoadRange:            maxLoad - minLoad,
		WeekendGini:          weekendGini,
		MemberStats:          memberStats,
		OverallFairnessScore: f.calculateOverallScore(loadGini, weekendGini, stdDev, avg),
	}
}

// calculateMean 计算平均值
func (f *WorkloadAnalyzer) calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateVariance 计算方差
func (f *WorkloadAnalyzer) calculateVariance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// calculateRange 计算极值
func (f *WorkloadAnalyzer) calculateRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// calculateGini 计算基尼系数
func (f *WorkloadAnalyzer) calculateGini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

// calculateOverallScore 计算综合公平性评分
func (f *WorkloadAnalyzer) calculateOverallScore(loadGini, weekendGini, stdDev, avg float64) float64 {
	const (
		loadWeight    = 0.5
		weekendWeight = 0.3
		stdDevWeight  = 0.2
	)

	// 基尼系数转换为分数 (0=100分, 1=0分)
	loadScore := (1 - loadGini) * 100
	weekendScore := (1 - weekendGini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if avg > 0 {
		cv := stdDev / avg
		cvScore = math.Max(0, 100-cv*200)
	}

	score := loadWeight*loadScore +
		weekendWeight*weekendScore +
		stdDevWeight*cvScore

	return math.Max(0, math.Min(100, score))
}

// Compare 比较两份值班表的公平性
func (f *WorkloadAnalyzer) Compare(loads1, loads2 []model.MemberLoad) map[string]float64 {
	metrics1 := f.Analyze(loads1)
	metrics2 := f.Analyze(loads2)

	return map[string]float64{
		"load_gini_diff":        metrics2.LoadGini - metrics1.LoadGini,
		"weekend_gini_diff":     metrics2.WeekendGini - metrics1.WeekendGini,
		"overall_score_diff":    metrics2.OverallFairnessScore - metrics1.OverallFairnessScore,
		"roster1_overall_score": metrics1.OverallFairnessScore,
		"roster2_overall_score": metrics2.OverallFairnessScore,
	}
}
