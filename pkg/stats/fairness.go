// Package stats 提供排班方案的统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/zhiban/zhiban/pkg/model"
)

// FairnessMetrics 公平性指标
type FairnessMetrics struct {
	// 工时公平性
	WorkloadGini     float64 `json:"workload_gini"`     // 工时基尼系数 (0=完全公平, 1=完全不公平)
	WorkloadVariance float64 `json:"workload_variance"` // 工时方差
	WorkloadStdDev   float64 `json:"workload_std_dev"`  // 工时标准差
	AvgHours         float64 `json:"avg_hours"`         // 人均工时
	MaxHours         float64 `json:"max_hours"`         // 最大工时
	MinHours         float64 `json:"min_hours"`         // 最小工时
	HoursRange       float64 `json:"hours_range"`       // 工时极差

	// 班次类型分布
	ShiftTypeDistribution map[model.ShiftType]float64 `json:"shift_type_distribution"` // 各类型占比 (%)
	MorningGini           float64                     `json:"morning_gini"`            // 早班分配基尼系数

	// 值班员级别统计
	WorkerStats []WorkerStat `json:"worker_stats"`

	// 综合评分
	OverallFairnessScore float64 `json:"overall_fairness_score"` // 综合公平性评分 (0-100)
}

// WorkerStat 值班员统计
type WorkerStat struct {
	WorkerID     int     `json:"worker_id"`
	WorkerName   string  `json:"worker_name"`
	TotalHours   int     `json:"total_hours"`
	WindowHours  int     `json:"window_hours"`
	RemoteHours  int     `json:"remote_hours"`
	MorningHours int     `json:"morning_hours"` // 12点前的班次小时数
	DesiredHours float64 `json:"desired_hours"`
	Deviation    float64 `json:"deviation"` // 与人均工时的偏差百分比
}

// FairnessAnalyzer 公平性分析器
type FairnessAnalyzer struct {
	env         *model.Environment
	morningTill int // 早班截止小时
}

// NewFairnessAnalyzer 创建公平性分析器
func NewFairnessAnalyzer(env *model.Environment) *FairnessAnalyzer {
	return &FairnessAnalyzer{
		env:         env,
		morningTill: 12,
	}
}

// Analyze 分析排班公平性
func (f *FairnessAnalyzer) Analyze(s model.Schedule) *FairnessMetrics {
	workers := f.env.Workers()
	if len(workers) == 0 {
		return &FairnessMetrics{
			ShiftTypeDistribution: make(map[model.ShiftType]float64),
			OverallFairnessScore:  100,
		}
	}

	workerStats := f.calculateWorkerStats(s)

	hours := lo.Map(workerStats, func(st WorkerStat, _ int) float64 {
		return float64(st.TotalHours)
	})
	mornings := lo.Map(workerStats, func(st WorkerStat, _ int) float64 {
		return float64(st.MorningHours)
	})

	avgHours := f.calculateMean(hours)
	variance := f.calculateVariance(hours, avgHours)
	stdDev := math.Sqrt(variance)
	maxHours, minHours := f.calculateRange(hours)

	for i := range workerStats {
		if avgHours > 0 {
			workerStats[i].Deviation = (float64(workerStats[i].TotalHours) - avgHours) / avgHours * 100
		}
	}

	workloadGini := f.calculateGini(hours)
	morningGini := f.calculateGini(mornings)
	overallScore := f.calculateOverallScore(workloadGini, morningGini, stdDev, avgHours)

	return &FairnessMetrics{
		WorkloadGini:          workloadGini,
		WorkloadVariance:      variance,
		WorkloadStdDev:        stdDev,
		AvgHours:              avgHours,
		MaxHours:              maxHours,
		MinHours:              minHours,
		HoursRange:            maxHours - minHours,
		ShiftTypeDistribution: f.calculateShiftTypeDistribution(s),
		MorningGini:           morningGini,
		WorkerStats:           workerStats,
		OverallFairnessScore:  overallScore,
	}
}

// calculateWorkerStats 按值班员汇总分配数据，结果按总工时降序排列
func (f *FairnessAnalyzer) calculateWorkerStats(s model.Schedule) []WorkerStat {
	statMap := make(map[int]*WorkerStat)
	for _, w := range f.env.Workers() {
		statMap[w.ID] = &WorkerStat{
			WorkerID:     w.ID,
			WorkerName:   w.Name,
			DesiredHours: w.DesiredHours,
		}
	}

	for i, id := range s {
		if id == model.Unassigned {
			continue
		}
		stat, known := statMap[id]
		if !known {
			continue
		}
		slot := f.env.Slot(i)

		stat.TotalHours++
		if slot.Type == model.ShiftWindow {
			stat.WindowHours++
		} else {
			stat.RemoteHours++
		}
		if slot.Hour < f.morningTill {
			stat.MorningHours++
		}
	}

	result := make([]WorkerStat, 0, len(statMap))
	for _, w := range f.env.Workers() {
		result = append(result, *statMap[w.ID])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalHours > result[j].TotalHours
	})
	return result
}

// calculateMean 计算平均值
func (f *FairnessAnalyzer) calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return lo.Sum(values) / float64(len(values))
}

// calculateVariance 计算总体方差
func (f *FairnessAnalyzer) calculateVariance(values []float64, mean float64) float64 {
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
func (f *FairnessAnalyzer) calculateRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return lo.Max(values), lo.Min(values)
}

// calculateGini 计算基尼系数
func (f *FairnessAnalyzer) calculateGini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := lo.Sum(sorted)
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

// calculateShiftTypeDistribution 计算窗口/远程班次占比
func (f *FairnessAnalyzer) calculateShiftTypeDistribution(s model.Schedule) map[model.ShiftType]float64 {
	typeCounts := make(map[model.ShiftType]int)
	total := 0
	for i, id := range s {
		if id == model.Unassigned {
			continue
		}
		typeCounts[f.env.Slot(i).Type]++
		total++
	}

	distribution := make(map[model.ShiftType]float64)
	if total > 0 {
		for st, count := range typeCounts {
			distribution[st] = float64(count) / float64(total) * 100
		}
	}
	return distribution
}

// calculateOverallScore 计算综合公平性评分
func (f *FairnessAnalyzer) calculateOverallScore(workloadGini, morningGini, stdDev, avgHours float64) float64 {
	const (
		workloadWeight = 0.55
		morningWeight  = 0.25
		stdDevWeight   = 0.2
	)

	// 基尼系数转换为分数 (0=100分, 1=0分)
	workloadScore := (1 - workloadGini) * 100
	morningScore := (1 - morningGini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if avgHours > 0 {
		cv := stdDev / avgHours
		cvScore = math.Max(0, 100-cv*200)
	}

	score := workloadWeight*workloadScore +
		morningWeight*morningScore +
		stdDevWeight*cvScore
	return math.Max(0, math.Min(100, score))
}

// CompareSchedules 比较两个排班方案的公平性
func (f *FairnessAnalyzer) CompareSchedules(s1, s2 model.Schedule) map[string]float64 {
	m1 := f.Analyze(s1)
	m2 := f.Analyze(s2)

	return map[string]float64{
		"workload_gini_diff":      m2.WorkloadGini - m1.WorkloadGini,
		"morning_gini_diff":       m2.MorningGini - m1.MorningGini,
		"overall_score_diff":      m2.OverallFairnessScore - m1.OverallFairnessScore,
		"schedule1_overall_score": m1.OverallFairnessScore,
		"schedule2_overall_score": m2.OverallFairnessScore,
	}
}
