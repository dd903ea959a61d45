// Package stats 提供排班方案的统计分析功能
package stats

import (
	"fmt"

	"github.com/zhiban/zhiban/pkg/model"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	// 整体覆盖率
	TotalSlots      int     `json:"total_slots"`      // 总槽位数
	AssignedSlots   int     `json:"assigned_slots"`   // 已分配槽位数
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)

	// 按日期统计
	DailyCoverage map[int]DayCoverage `json:"daily_coverage"`

	// 按班次类型统计
	ShiftTypeCoverage map[model.ShiftType]float64 `json:"shift_type_coverage"`

	// 按时段统计
	HourlyCoverage map[int]float64 `json:"hourly_coverage"` // 按小时覆盖率 (0-23)

	// 人力需求满足度：各单元格分类型人数对最低要求的满足比例
	DemandSatisfaction float64 `json:"demand_satisfaction"`

	// 问题识别
	Understaffed []UnderstaffedCell `json:"understaffed,omitempty"` // 人手不足的单元格
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Day          int     `json:"day"`
	TotalSlots   int     `json:"total_slots"`
	Assigned     int     `json:"assigned"`
	CoverageRate float64 `json:"coverage_rate"`
	WorkerCount  int     `json:"worker_count"` // 当日出勤人数
}

// UnderstaffedCell 低于最低人数要求的 (日期,小时,类型) 单元格
type UnderstaffedCell struct {
	Day      int             `json:"day"`
	Hour     int             `json:"hour"`
	Type     model.ShiftType `json:"type"`
	Required int             `json:"required"`
	Assigned int             `json:"assigned"`
	Shortage int             `json:"shortage"`
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct {
	env      *model.Environment
	coverage map[model.ShiftType]model.CoverageRule
}

// NewCoverageAnalyzer 创建覆盖率分析器，按给定的人数区间衡量需求满足度
func NewCoverageAnalyzer(env *model.Environment, coverage map[model.ShiftType]model.CoverageRule) *CoverageAnalyzer {
	return &CoverageAnalyzer{env: env, coverage: coverage}
}

// Analyze 分析排班覆盖率
func (c *CoverageAnalyzer) Analyze(s model.Schedule) *CoverageMetrics {
	totalSlots := c.env.NumSlots()
	if totalSlots == 0 {
		return &CoverageMetrics{
			DailyCoverage:      make(map[int]DayCoverage),
			ShiftTypeCoverage:  make(map[model.ShiftType]float64),
			HourlyCoverage:     make(map[int]float64),
			OverallCoverage:    100,
			DemandSatisfaction: 100,
		}
	}

	assignedSlots := 0

	dailyStats := make(map[int]*DayCoverage)
	dailyWorkers := make(map[int]map[int]bool)

	typeTotals := make(map[model.ShiftType]int)
	typeAssigned := make(map[model.ShiftType]int)

	hourlyTotals := make(map[int]int)
	hourlyAssigned := make(map[int]int)

	type cellKey struct {
		day  int
		hour int
		typ  model.ShiftType
	}
	cellAssigned := make(map[cellKey]int)

	for i := 0; i < totalSlots && i < len(s); i++ {
		slot := c.env.Slot(i)
		isAssigned := s[i] != model.Unassigned
		if isAssigned {
			assignedSlots++
		}

		day, exists := dailyStats[slot.Day]
		if !exists {
			day = &DayCoverage{Day: slot.Day}
			dailyStats[slot.Day] = day
		}
		day.TotalSlots++
		if isAssigned {
			day.Assigned++
			if dailyWorkers[slot.Day] == nil {
				dailyWorkers[slot.Day] = make(map[int]bool)
			}
			dailyWorkers[slot.Day][s[i]] = true
		}

		typeTotals[slot.Type]++
		hourlyTotals[slot.Hour]++
		if isAssigned {
			typeAssigned[slot.Type]++
			hourlyAssigned[slot.Hour]++
			cellAssigned[cellKey{slot.Day, slot.Hour, slot.Type}]++
		}
	}

	overallCoverage := float64(assignedSlots) / float64(totalSlots) * 100

	dailyCoverage := make(map[int]DayCoverage)
	for d, stats := range dailyStats {
		if stats.TotalSlots > 0 {
			stats.CoverageRate = float64(stats.Assigned) / float64(stats.TotalSlots) * 100
		}
		stats.WorkerCount = len(dailyWorkers[d])
		dailyCoverage[d] = *stats
	}

	shiftTypeCoverage := make(map[model.ShiftType]float64)
	for st, total := range typeTotals {
		if total > 0 {
			shiftTypeCoverage[st] = float64(typeAssigned[st]) / float64(total) * 100
		}
	}

	hourlyCoverage := make(map[int]float64)
	for hour, total := range hourlyTotals {
		if total > 0 {
			hourlyCoverage[hour] = float64(hourlyAssigned[hour]) / float64(total) * 100
		}
	}

	// 逐单元格对照最低人数要求
	var understaffed []UnderstaffedCell
	totalRequired := 0
	totalSatisfied := 0
	for day := 0; day < c.env.Days(); day++ {
		for _, gk := range c.env.GroupKeys() {
			if gk.Day != day {
				continue
			}
			rule, ok := c.coverage[gk.Type]
			if !ok || rule.Min == 0 {
				continue
			}
			for _, hour := range c.env.GroupHours(gk) {
				n := cellAssigned[cellKey{day, hour, gk.Type}]
				totalRequired += rule.Min
				if n >= rule.Min {
					totalSatisfied += rule.Min
					continue
				}
				totalSatisfied += n
				understaffed = append(understaffed, UnderstaffedCell{
					Day:      day,
					Hour:     hour,
					Type:     gk.Type,
					Required: rule.Min,
					Assigned: n,
					Shortage: rule.Min - n,
				})
			}
		}
	}

	demandSatisfaction := 100.0
	if totalRequired > 0 {
		demandSatisfaction = float64(totalSatisfied) / float64(totalRequired) * 100
	}

	return &CoverageMetrics{
		TotalSlots:         totalSlots,
		AssignedSlots:      assignedSlots,
		OverallCoverage:    overallCoverage,
		DailyCoverage:      dailyCoverage,
		ShiftTypeCoverage:  shiftTypeCoverage,
		HourlyCoverage:     hourlyCoverage,
		DemandSatisfaction: demandSatisfaction,
		Understaffed:       understaffed,
	}
}

// Summary 生成一段可读的覆盖率摘要
func (c *CoverageAnalyzer) Summary(m *CoverageMetrics) string {
	out := fmt.Sprintf("覆盖率 %.1f%% (%d/%d)，需求满足度 %.1f%%",
		m.OverallCoverage, m.AssignedSlots, m.TotalSlots, m.DemandSatisfaction)
	if len(m.Understaffed) > 0 {
		out += fmt.Sprintf("，%d 个时段人手不足", len(m.Understaffed))
	}
	return out
}
