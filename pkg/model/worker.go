// Package model 定义排班引擎的核心数据模型
package model

// Worker 值班员
type Worker struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Tier int    `json:"tier"` // 1-4（4=主管，3=库存技术员）

	// 排班相关
	IsCommuter   bool    `json:"is_commuter"`   // 通勤学生，9点前不可排班
	DesiredHours float64 `json:"desired_hours"` // 期望周工时（目标值，非硬上限）

	// 不可用时段
	BusyTimes []BusyInterval `json:"busy_times,omitempty"`
}

// BusyInterval 不可用时段，[Start, End) 按整点小时计
type BusyInterval struct {
	Day   int `json:"day"` // 0=周一 ... 5=周六
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains 检查某小时是否落在时段内
func (b BusyInterval) Contains(day, hour int) bool {
	return b.Day == day && b.Start <= hour && hour < b.End
}

// IsAvailable 检查值班员在给定时间是否可排班
func (w *Worker) IsAvailable(day, hour int) bool {
	// 通勤学生早上9点前到不了
	if w.IsCommuter && hour < 9 {
		return false
	}

	for _, b := range w.BusyTimes {
		if b.Contains(day, hour) {
			return false
		}
	}
	return true
}

// PrefersRemote 检查值班员是否应优先排远程班（Tier 3-4）
func (w *Worker) PrefersRemote() bool {
	return w.Tier >= 3
}
