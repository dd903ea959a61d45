// Package solver 提供排班求解算法
package solver

import (
	"math/rand"
	"sort"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// underMinBias 随机构造时从低工时池选人的概率
const underMinBias = 0.85

// builder 初始解构造器，三种求解器共享同一骨架：
// 按 (日期,类型) 分组、组内小时游标推进、按连续可用性成块分配。
// 候选人选择策略因求解器而异。
type builder struct {
	env *model.Environment
	w   constraint.Weights
	rng *rand.Rand
}

// rankedCandidates 返回给定时间可用的值班员ID，
// 未达周工时下限者优先，其次按已排工时升序，平局保持名单顺序。
func (b *builder) rankedCandidates(day, hour int, hours map[int]int) []int {
	ids := b.env.AvailableWorkers(day, hour)
	sort.SliceStable(ids, func(i, j int) bool {
		hi, hj := hours[ids[i]], hours[ids[j]]
		ui, uj := hi < b.w.MinHours, hj < b.w.MinHours
		if ui != uj {
			return ui
		}
		return hi < hj
	})
	return ids
}

// availabilityRun 从小时列表的 pos 位置起，沿连续小时统计值班员的连续可用长度，上限 maxLen
func (b *builder) availabilityRun(id, day int, hlist []int, pos, maxLen int) int {
	worker, ok := b.env.WorkerByID(id)
	if !ok {
		return 0
	}
	start := hlist[pos]
	run := 0
	for run < maxLen && pos+run < len(hlist) {
		hour := hlist[pos+run]
		if hour != start+run || !worker.IsAvailable(day, hour) {
			break
		}
		run++
	}
	return run
}

// assignFirstFree 把 (日期,小时,类型) 单元格的首个空副本分配给值班员
func (b *builder) assignFirstFree(s model.Schedule, day, hour int, st model.ShiftType, id int) bool {
	for _, idx := range b.env.ReplicaSlots(day, hour, st) {
		if s[idx] == model.Unassigned {
			s[idx] = id
			return true
		}
	}
	return false
}

// buildGreedy CSP构造：按排名逐个尝试候选人，块长取连续可用的最大值，
// 上限 min(最大连班, 周工时剩余)，凑不够最短连班则该小时留空。
func (b *builder) buildGreedy() model.Schedule {
	s := model.NewSchedule(b.env.NumSlots())
	hours := make(map[int]int, b.env.NumWorkers())

	for _, gk := range b.env.GroupKeys() {
		hlist := b.env.GroupHours(gk)
		pos := 0
		for pos < len(hlist) {
			hour := hlist[pos]
			placed := 0
			for _, id := range b.rankedCandidates(gk.Day, hour, hours) {
				remaining := b.w.MaxHours - hours[id]
				if remaining <= 0 {
					continue
				}
				maxLen := b.w.MaxBlock
				if remaining < maxLen {
					maxLen = remaining
				}
				run := b.availabilityRun(id, gk.Day, hlist, pos, maxLen)
				if run < b.w.MinBlock {
					continue
				}
				for k := 0; k < run; k++ {
					if b.assignFirstFree(s, gk.Day, hlist[pos+k], gk.Type, id) {
						hours[id]++
					}
				}
				placed = run
				break
			}
			if placed == 0 {
				pos++
			} else {
				pos += placed
			}
		}
	}
	return s
}

// buildRandom 遗传算法构造：分组顺序打乱，候选人随机抽取并偏向低工时池，
// 块长在 [最短,最长] 内均匀随机，可用性中断时保留已排部分。
func (b *builder) buildRandom() model.Schedule {
	s := model.NewSchedule(b.env.NumSlots())
	hours := make(map[int]int, b.env.NumWorkers())

	keys := make([]model.GroupKey, len(b.env.GroupKeys()))
	copy(keys, b.env.GroupKeys())
	b.rng.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})

	for _, gk := range keys {
		b.fillGroup(s, gk, hours, func(day, hour int) int {
			return b.pickBiased(day, hour, hours)
		})
	}
	return s
}

// buildDeterministic 模拟退火构造：总是取排名最高的候选人，仅块长随机
func (b *builder) buildDeterministic() model.Schedule {
	s := model.NewSchedule(b.env.NumSlots())
	hours := make(map[int]int, b.env.NumWorkers())

	for _, gk := range b.env.GroupKeys() {
		b.fillGroup(s, gk, hours, func(day, hour int) int {
			ranked := b.rankedCandidates(day, hour, hours)
			if len(ranked) == 0 {
				return model.Unassigned
			}
			return ranked[0]
		})
	}
	return s
}

// fillGroup 在一个 (日期,类型) 分组内按游标成块分配，pick 决定候选人。
// 不设周工时上限，块因可用性中断时保留已排部分（允许单小时残块）。
func (b *builder) fillGroup(s model.Schedule, gk model.GroupKey, hours map[int]int, pick func(day, hour int) int) {
	hlist := b.env.GroupHours(gk)
	pos := 0
	for pos < len(hlist) {
		hour := hlist[pos]
		id := pick(gk.Day, hour)
		if id == model.Unassigned {
			pos++
			continue
		}
		worker, ok := b.env.WorkerByID(id)
		if !ok {
			pos++
			continue
		}

		want := b.w.MinBlock + b.rng.Intn(b.w.MaxBlock-b.w.MinBlock+1)
		assigned := 0
		for k := 0; k < want && pos+k < len(hlist); k++ {
			h := hlist[pos+k]
			if h != hour+k || !worker.IsAvailable(gk.Day, h) {
				break
			}
			if !b.assignFirstFree(s, gk.Day, h, gk.Type, id) {
				break
			}
			hours[id]++
			assigned++
		}

		if assigned == 0 {
			pos++
		} else {
			pos += assigned
		}
	}
}

// pickBiased 随机挑选可用值班员，大概率偏向未达周工时下限者
func (b *builder) pickBiased(day, hour int, hours map[int]int) int {
	avail := b.env.AvailableWorkers(day, hour)
	if len(avail) == 0 {
		return model.Unassigned
	}

	if b.rng.Float64() < underMinBias {
		under := make([]int, 0, len(avail))
		for _, id := range avail {
			if hours[id] < b.w.MinHours {
				under = append(under, id)
			}
		}
		if len(under) > 0 {
			return under[b.rng.Intn(len(under))]
		}
	}
	return avail[b.rng.Intn(len(avail))]
}
