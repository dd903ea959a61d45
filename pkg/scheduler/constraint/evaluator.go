// Package constraint 定义排班评分的约束权重与评估器
package constraint

import (
	"math"
	"sort"

	"github.com/zhiban/zhiban/pkg/model"
)

// Evaluator 约束评估器，绑定一个排班环境与一组权重。
// Evaluate 为纯函数：不修改环境，相同输入产生相同输出。
type Evaluator struct {
	env     *model.Environment
	weights Weights
}

// NewEvaluator 创建约束评估器
func NewEvaluator(env *model.Environment, weights Weights) *Evaluator {
	return &Evaluator{env: env, weights: weights}
}

// Weights 返回评估器使用的权重
func (e *Evaluator) Weights() Weights {
	return e.weights
}

// cell 覆盖单元格的分类型已分配人数
type cellCount struct {
	day   int
	hour  int
	count map[model.ShiftType]int
}

// Evaluate 评估排班向量，返回总罚分与按类别的违规统计。
// 罚分为0且统计全零表示完全满足约束。
func (e *Evaluator) Evaluate(s model.Schedule) (float64, Breakdown) {
	penalty := 0.0
	breakdown := NewBreakdown()

	numSlots := e.env.NumSlots()
	workers := e.env.Workers()

	// 每个值班员的周工时、早班次数、按日已排小时集合
	hours := make(map[int]int, len(workers))
	mornings := make(map[int]int, len(workers))
	dayHours := make(map[int]map[int]map[int]bool, len(workers)) // ID -> 日期 -> 小时集合

	// 覆盖单元格按槽列表中的首次出现顺序收集，保证求和顺序确定
	cellIndex := make(map[[2]int]int)
	cells := make([]cellCount, 0)

	for i, workerID := range s {
		if i >= numSlots {
			break
		}
		slot := e.env.Slot(i)

		key := [2]int{slot.Day, slot.Hour}
		ci, seen := cellIndex[key]
		if !seen {
			ci = len(cells)
			cellIndex[key] = ci
			cells = append(cells, cellCount{
				day:   slot.Day,
				hour:  slot.Hour,
				count: make(map[model.ShiftType]int, 2),
			})
		}

		if workerID == model.Unassigned {
			continue
		}
		worker, known := e.env.WorkerByID(workerID)
		if !known {
			// 环境外的ID不参与任何计分
			continue
		}

		cells[ci].count[slot.Type]++

		hours[workerID]++
		if slot.Hour < 12 {
			mornings[workerID]++
		}
		if dayHours[workerID] == nil {
			dayHours[workerID] = make(map[int]map[int]bool)
		}
		if dayHours[workerID][slot.Day] == nil {
			dayHours[workerID][slot.Day] = make(map[int]bool)
		}
		dayHours[workerID][slot.Day][slot.Hour] = true

		// 排到不可用时段
		if !worker.IsAvailable(slot.Day, slot.Hour) {
			penalty += e.weights.AvailabilityConflict
			breakdown.Add(KindConflict, 1)
		}
		// 高层级值班员偏好远程班
		if worker.PrefersRemote() && slot.Type == model.ShiftWindow {
			penalty += e.weights.TierMismatch
			breakdown.Add(KindTierMismatch, 1)
		}
	}

	// 覆盖约束：每个 (日期,小时) 单元格按类型检查人数区间
	for _, c := range cells {
		for _, st := range model.ShiftTypes() {
			rule, ok := e.weights.Coverage[st]
			if !ok {
				continue
			}
			n := c.count[st]
			if n < rule.Min {
				penalty += e.weights.CoverageShortfall * float64(rule.Min-n)
				breakdown.Add(KindCoverage, 1)
			} else if n > rule.Max {
				penalty += e.weights.CoverageSurplus
				breakdown.Add(KindCoverage, 1)
			}
		}
	}

	// 周工时、期望偏差、早班约束，按值班员名单顺序累加
	allHours := make([]float64, 0, len(workers))
	for _, w := range workers {
		h := hours[w.ID]
		allHours = append(allHours, float64(h))

		if h < e.weights.MinHours {
			penalty += e.weights.MinHoursPenalty * float64(e.weights.MinHours-h)
			breakdown.Add(KindMinHours, 1)
		}
		if h > e.weights.MaxHours {
			penalty += e.weights.MaxHoursPenalty * float64(h-e.weights.MaxHours)
			breakdown.Add(KindMaxHours, 1)
		}

		deviation := math.Abs(float64(h) - w.DesiredHours)
		if deviation > e.weights.DesiredTolerance {
			penalty += e.weights.DesiredPenalty * deviation
			breakdown.Add(KindFairness, 1)
		}

		m := mornings[w.ID]
		if m > e.weights.MorningLimit {
			penalty += e.weights.MorningExcessPenalty * float64(m-e.weights.MorningLimit)
			breakdown.Add(KindMorning, 1)
		} else if m == e.weights.MorningLimit && m > 0 {
			penalty += e.weights.MorningAtLimitPenalty
			breakdown.Add(KindMorning, 1)
		}
	}

	// 全局公平性：全员工时的总体标准差
	penalty += e.weights.SpreadPenalty * stdDev(allHours)

	// 连班长度：按值班员、按日期的去重小时集合切分为连续段
	for _, w := range workers {
		days := dayHours[w.ID]
		if days == nil {
			continue
		}
		for day := 0; day < e.env.Days(); day++ {
			hourSet := days[day]
			if len(hourSet) == 0 {
				continue
			}
			sorted := make([]int, 0, len(hourSet))
			for h := range hourSet {
				sorted = append(sorted, h)
			}
			sort.Ints(sorted)

			for _, run := range consecutiveRuns(sorted) {
				if run < e.weights.MinBlock {
					penalty += e.weights.ShortBlockPenalty
					breakdown.Add(KindShiftLength, 1)
				} else if run > e.weights.MaxBlock {
					penalty += e.weights.LongBlockPenalty * float64(run-e.weights.MaxBlock)
					breakdown.Add(KindShiftLength, 1)
				}
			}
		}
	}

	return penalty, breakdown
}

// consecutiveRuns 将升序小时列表切分为连续段，返回各段长度
func consecutiveRuns(sorted []int) []int {
	if len(sorted) == 0 {
		return nil
	}
	runs := make([]int, 0, 2)
	length := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1]+1 {
			length++
			continue
		}
		runs = append(runs, length)
		length = 1
	}
	return append(runs, length)
}

// stdDev 总体标准差
func stdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(n))
}
