// Package model 定义排班引擎的核心数据模型
package model

// Unassigned 表示班次槽未分配
const Unassigned = -1

// Schedule 排班向量，下标对应班次槽，值为值班员ID或 Unassigned。
// 搜索中唯一可变的状态，任何修改前先 Clone。
type Schedule []int

// NewSchedule 创建全部未分配的排班向量
func NewSchedule(numSlots int) Schedule {
	s := make(Schedule, numSlots)
	for i := range s {
		s[i] = Unassigned
	}
	return s
}

// Clone 深拷贝排班向量
func (s Schedule) Clone() Schedule {
	c := make(Schedule, len(s))
	copy(c, s)
	return c
}

// AssignedCount 返回已分配槽位数
func (s Schedule) AssignedCount() int {
	count := 0
	for _, id := range s {
		if id != Unassigned {
			count++
		}
	}
	return count
}

// WorkerHours 统计每个值班员的已排小时数（每个槽计1小时）
func (s Schedule) WorkerHours() map[int]int {
	hours := make(map[int]int)
	for _, id := range s {
		if id != Unassigned {
			hours[id]++
		}
	}
	return hours
}
