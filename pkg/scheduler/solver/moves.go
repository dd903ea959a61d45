// Package solver 提供排班求解算法
package solver

import (
	"math/rand"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// MoveKind 邻域移动类别
type MoveKind int

const (
	MoveSwap     MoveKind = iota // 交换两个已分配槽位的值班员
	MoveExtend                   // 把已有连班向相邻空槽延伸
	MoveShrink                   // 从连班边缘去掉一小时（仅退火）
	MoveReassign                 // 更换槽位的值班员
	MoveFill                     // 向空槽填入一段新连班
)

// String 返回移动类别名称
func (k MoveKind) String() string {
	switch k {
	case MoveSwap:
		return "swap"
	case MoveExtend:
		return "extend"
	case MoveShrink:
		return "shrink"
	case MoveReassign:
		return "reassign"
	case MoveFill:
		return "fill"
	default:
		return "unknown"
	}
}

// neighborhood 邻域移动集合。所有移动就地修改传入的排班向量，
// 调用方负责先 Clone；返回 false 表示本次未能作出修改。
type neighborhood struct {
	env *model.Environment
	w   constraint.Weights
	rng *rand.Rand
}

// assignedIndices 返回已分配槽位下标
func (n *neighborhood) assignedIndices(s model.Schedule) []int {
	idx := make([]int, 0, len(s))
	for i, id := range s {
		if id != model.Unassigned {
			idx = append(idx, i)
		}
	}
	return idx
}

// emptyIndices 返回未分配槽位下标
func (n *neighborhood) emptyIndices(s model.Schedule) []int {
	idx := make([]int, 0, len(s))
	for i, id := range s {
		if id == model.Unassigned {
			idx = append(idx, i)
		}
	}
	return idx
}

// swap 交换两个已分配槽位的值班员，要求双方在对方时段均可用
func (n *neighborhood) swap(s model.Schedule) bool {
	assigned := n.assignedIndices(s)
	if len(assigned) < 2 {
		return false
	}

	i := assigned[n.rng.Intn(len(assigned))]
	j := assigned[n.rng.Intn(len(assigned))]
	if i == j || s[i] == s[j] {
		return false
	}

	wi, okI := n.env.WorkerByID(s[i])
	wj, okJ := n.env.WorkerByID(s[j])
	if !okI || !okJ {
		return false
	}

	slotI, slotJ := n.env.Slot(i), n.env.Slot(j)
	if !wi.IsAvailable(slotJ.Day, slotJ.Hour) || !wj.IsAvailable(slotI.Day, slotI.Hour) {
		return false
	}

	s[i], s[j] = s[j], s[i]
	return true
}

// extend 把随机已分配槽位的连班向相邻小时的空副本延伸。
// capped 时要求该值班员未达周工时上限。
func (n *neighborhood) extend(s model.Schedule, capped bool) bool {
	assigned := n.assignedIndices(s)
	if len(assigned) == 0 {
		return false
	}

	idx := assigned[n.rng.Intn(len(assigned))]
	id := s[idx]
	worker, ok := n.env.WorkerByID(id)
	if !ok {
		return false
	}
	if capped && s.WorkerHours()[id] >= n.w.MaxHours {
		return false
	}

	slot := n.env.Slot(idx)
	for _, hour := range []int{slot.Hour + 1, slot.Hour - 1} {
		if !worker.IsAvailable(slot.Day, hour) {
			continue
		}
		for _, r := range n.env.ReplicaSlots(slot.Day, hour, slot.Type) {
			if s[r] == model.Unassigned {
				s[r] = id
				return true
			}
		}
	}
	return false
}

// shrink 当值班员在该 (日期,类型) 分组内持有超过最短连班的槽位数时，清空其中一个
func (n *neighborhood) shrink(s model.Schedule) bool {
	assigned := n.assignedIndices(s)
	if len(assigned) == 0 {
		return false
	}

	idx := assigned[n.rng.Intn(len(assigned))]
	id := s[idx]
	slot := n.env.Slot(idx)

	held := 0
	for _, g := range n.env.GroupSlots(model.GroupKey{Day: slot.Day, Type: slot.Type}) {
		if s[g] == id {
			held++
		}
	}
	if held <= n.w.MinBlock {
		return false
	}

	s[idx] = model.Unassigned
	return true
}

// reassignRun 把随机已分配槽位所属值班员在该 (日期,类型) 分组内的全部槽位
// 逐个移交给另一名可用值班员，新值班员不可用的小时保持原样
func (n *neighborhood) reassignRun(s model.Schedule) bool {
	assigned := n.assignedIndices(s)
	if len(assigned) == 0 {
		return false
	}

	idx := assigned[n.rng.Intn(len(assigned))]
	oldID := s[idx]
	slot := n.env.Slot(idx)

	candidates := make([]int, 0)
	for _, id := range n.env.AvailableWorkers(slot.Day, slot.Hour) {
		if id != oldID {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	newID := candidates[n.rng.Intn(len(candidates))]
	newWorker, ok := n.env.WorkerByID(newID)
	if !ok {
		return false
	}

	moved := false
	for _, g := range n.env.GroupSlots(model.GroupKey{Day: slot.Day, Type: slot.Type}) {
		if s[g] != oldID {
			continue
		}
		if newWorker.IsAvailable(slot.Day, n.env.Slot(g).Hour) {
			s[g] = newID
			moved = true
		}
	}
	return moved
}

// reassignSlot 随机挑选任意槽位（含空槽）并换成随机可用值班员，
// 有其他人选时排除现任。无人可用时：clearWhenNone 则清空槽位，否则不动。
func (n *neighborhood) reassignSlot(s model.Schedule, clearWhenNone bool) bool {
	idx := n.rng.Intn(len(s))
	slot := n.env.Slot(idx)

	avail := n.env.AvailableWorkers(slot.Day, slot.Hour)
	if len(avail) == 0 {
		if clearWhenNone && s[idx] != model.Unassigned {
			s[idx] = model.Unassigned
			return true
		}
		return false
	}

	pool := make([]int, 0, len(avail))
	for _, id := range avail {
		if id != s[idx] {
			pool = append(pool, id)
		}
	}
	if len(pool) == 0 {
		pool = avail
	}

	s[idx] = pool[n.rng.Intn(len(pool))]
	return true
}

// fillSpan 从随机空槽起填入一段新连班。
// biased 时优先低工时值班员；capped 时逐槽检查周工时上限；
// breakOnBusy 时遇到值班员不可用的小时立即停止扫描，否则跳过该小时继续。
func (n *neighborhood) fillSpan(s model.Schedule, spanMax int, biased, capped, breakOnBusy bool) bool {
	empty := n.emptyIndices(s)
	if len(empty) == 0 {
		return false
	}

	idx := empty[n.rng.Intn(len(empty))]
	slot := n.env.Slot(idx)

	hours := s.WorkerHours()
	avail := n.env.AvailableWorkers(slot.Day, slot.Hour)
	if len(avail) == 0 {
		return false
	}

	var id int
	if biased {
		under := make([]int, 0, len(avail))
		for _, w := range avail {
			if hours[w] < n.w.MinHours {
				under = append(under, w)
			}
		}
		if len(under) > 0 {
			id = under[n.rng.Intn(len(under))]
		} else {
			id = avail[n.rng.Intn(len(avail))]
		}
	} else {
		id = avail[n.rng.Intn(len(avail))]
	}
	worker, ok := n.env.WorkerByID(id)
	if !ok {
		return false
	}

	span := n.w.MinBlock
	if spanMax > n.w.MinBlock {
		span += n.rng.Intn(spanMax - n.w.MinBlock + 1)
	}
	applied := false
	for h := slot.Hour; h < slot.Hour+span; h++ {
		replicas := n.env.ReplicaSlots(slot.Day, h, slot.Type)
		if len(replicas) == 0 {
			break
		}
		if !worker.IsAvailable(slot.Day, h) {
			if breakOnBusy {
				break
			}
			continue
		}
		for _, r := range replicas {
			if s[r] != model.Unassigned {
				continue
			}
			if capped && hours[id] >= n.w.MaxHours {
				continue
			}
			s[r] = id
			hours[id]++
			applied = true
		}
	}
	return applied
}
