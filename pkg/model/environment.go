// Package model 定义排班引擎的核心数据模型
package model

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/zhiban/zhiban/pkg/errors"
)

// GroupKey 班次槽分组键，(日期, 班次类型) 对应一条连续的小时序列
type GroupKey struct {
	Day  int
	Type ShiftType
}

type cellKey struct {
	day  int
	hour int
	typ  ShiftType
}

// Environment 排班环境，持有值班员与班次槽，构造后只读，可被并发求解器共享。
// 预计算 (日期,类型) 分组和 (日期,小时,类型) 副本索引供构造与邻域移动使用。
type Environment struct {
	workers  []Worker
	slots    []ShiftSlot
	template string

	workerIndex map[int]int          // 值班员ID -> workers 下标
	groups      map[GroupKey][]int   // 分组 -> 按小时升序的槽下标
	groupOrder  []GroupKey           // 分组首次出现顺序
	groupHours  map[GroupKey][]int   // 分组 -> 去重升序的小时列表
	cells       map[cellKey][]int    // 单元格 -> 副本槽下标（升序）
	days        int
}

// NewEnvironment 按周模板创建排班环境
func NewEnvironment(workers []Worker, template string) (*Environment, error) {
	cfg, err := TemplateConfig(template)
	if err != nil {
		return nil, err
	}
	slots, err := GenerateSlots(cfg)
	if err != nil {
		return nil, err
	}
	env, err := NewEnvironmentWithSlots(workers, slots)
	if err != nil {
		return nil, err
	}
	env.template = template
	return env, nil
}

// NewEnvironmentWithConfig 按自定义生成配置创建排班环境
func NewEnvironmentWithConfig(workers []Worker, cfg SlotConfig) (*Environment, error) {
	slots, err := GenerateSlots(cfg)
	if err != nil {
		return nil, err
	}
	return NewEnvironmentWithSlots(workers, slots)
}

// NewEnvironmentWithSlots 基于现成的班次槽列表创建排班环境
func NewEnvironmentWithSlots(workers []Worker, slots []ShiftSlot) (*Environment, error) {
	if len(workers) == 0 {
		return nil, errors.InvalidEnvironment("值班员列表为空")
	}
	if len(slots) == 0 {
		return nil, errors.InvalidEnvironment("班次槽列表为空")
	}

	ids := lo.Map(workers, func(w Worker, _ int) int { return w.ID })
	if dups := lo.FindDuplicates(ids); len(dups) > 0 {
		return nil, errors.InvalidWorker(dups[0], "ID 重复")
	}

	env := &Environment{
		workers:     workers,
		slots:       slots,
		workerIndex: make(map[int]int, len(workers)),
		groups:      make(map[GroupKey][]int),
		groupHours:  make(map[GroupKey][]int),
		cells:       make(map[cellKey][]int),
	}

	for i, w := range workers {
		if w.Tier < 1 || w.Tier > 4 {
			return nil, errors.InvalidWorker(w.ID, fmt.Sprintf("层级 %d 超出 [1,4]", w.Tier))
		}
		env.workerIndex[w.ID] = i
	}

	for i, slot := range slots {
		if slot.Day < 0 {
			return nil, errors.InvalidSlot(i, "日期索引不能为负")
		}
		if slot.Hour < 0 || slot.Hour >= 24 {
			return nil, errors.InvalidSlot(i, fmt.Sprintf("小时 %d 超出 [0,24)", slot.Hour))
		}
		if slot.Type != ShiftWindow && slot.Type != ShiftRemote {
			return nil, errors.InvalidSlot(i, "未知班次类型 "+string(slot.Type))
		}

		if slot.Day+1 > env.days {
			env.days = slot.Day + 1
		}

		gk := GroupKey{Day: slot.Day, Type: slot.Type}
		if _, seen := env.groups[gk]; !seen {
			env.groupOrder = append(env.groupOrder, gk)
		}
		env.groups[gk] = append(env.groups[gk], i)

		ck := cellKey{day: slot.Day, hour: slot.Hour, typ: slot.Type}
		env.cells[ck] = append(env.cells[ck], i)
	}

	// 分组内按小时归一为升序，块检测依赖该顺序
	for gk, indices := range env.groups {
		sort.SliceStable(indices, func(a, b int) bool {
			return env.slots[indices[a]].Hour < env.slots[indices[b]].Hour
		})

		hours := make([]int, 0)
		seen := make(map[int]bool)
		for _, idx := range indices {
			h := env.slots[idx].Hour
			if !seen[h] {
				seen[h] = true
				hours = append(hours, h)
			}
		}
		sort.Ints(hours)
		env.groupHours[gk] = hours
	}

	return env, nil
}

// Template 返回创建时使用的周模板名称，自定义配置时为空
func (e *Environment) Template() string {
	return e.template
}

// Workers 返回值班员列表（只读）
func (e *Environment) Workers() []Worker {
	return e.workers
}

// NumWorkers 返回值班员数量
func (e *Environment) NumWorkers() int {
	return len(e.workers)
}

// Slots 返回班次槽列表（只读）
func (e *Environment) Slots() []ShiftSlot {
	return e.slots
}

// NumSlots 返回班次槽数量
func (e *Environment) NumSlots() int {
	return len(e.slots)
}

// Slot 返回指定下标的班次槽
func (e *Environment) Slot(i int) ShiftSlot {
	return e.slots[i]
}

// Days 返回覆盖的天数
func (e *Environment) Days() int {
	return e.days
}

// WorkerByID 按ID查找值班员
func (e *Environment) WorkerByID(id int) (*Worker, bool) {
	idx, ok := e.workerIndex[id]
	if !ok {
		return nil, false
	}
	return &e.workers[idx], true
}

// KnownWorker 检查ID是否属于环境内的值班员
func (e *Environment) KnownWorker(id int) bool {
	_, ok := e.workerIndex[id]
	return ok
}

// AvailableWorkers 返回给定时间可排班的值班员ID，顺序与值班员列表一致
func (e *Environment) AvailableWorkers(day, hour int) []int {
	available := make([]int, 0, len(e.workers))
	for i := range e.workers {
		if e.workers[i].IsAvailable(day, hour) {
			available = append(available, e.workers[i].ID)
		}
	}
	return available
}

// GroupKeys 返回分组键，顺序为班次槽中的首次出现顺序
func (e *Environment) GroupKeys() []GroupKey {
	return e.groupOrder
}

// GroupSlots 返回分组内按小时升序的槽下标
func (e *Environment) GroupSlots(key GroupKey) []int {
	return e.groups[key]
}

// GroupHours 返回分组内去重升序的小时列表
func (e *Environment) GroupHours(key GroupKey) []int {
	return e.groupHours[key]
}

// ReplicaSlots 返回 (日期,小时,类型) 单元格的全部副本槽下标
func (e *Environment) ReplicaSlots(day, hour int, st ShiftType) []int {
	return e.cells[cellKey{day: day, hour: hour, typ: st}]
}

// ValidateSchedule 检查排班向量长度与槽数一致
func (e *Environment) ValidateSchedule(s Schedule) error {
	if len(s) != len(e.slots) {
		return errors.InvalidSchedule(fmt.Sprintf("排班向量长度 %d 与班次槽数 %d 不一致", len(s), len(e.slots)))
	}
	return nil
}

// Matrix 将排班向量转换为 日期 x 24小时 x 班次类型 的值班员矩阵，未分配为 -1。
// 类型维度下标 0 为窗口班，1 为远程班；同一单元格多副本时保留最后写入者。
func (e *Environment) Matrix(s Schedule) [][][]int {
	matrix := make([][][]int, e.days)
	for d := range matrix {
		matrix[d] = make([][]int, 24)
		for h := range matrix[d] {
			matrix[d][h] = []int{Unassigned, Unassigned}
		}
	}

	for i, workerID := range s {
		if i >= len(e.slots) {
			break
		}
		slot := e.slots[i]
		typeIdx := 0
		if slot.Type == ShiftRemote {
			typeIdx = 1
		}
		matrix[slot.Day][slot.Hour][typeIdx] = workerID
	}
	return matrix
}
