// Package model 定义排班引擎的核心数据模型
package model

import (
	"math"
	"sort"

	"github.com/zhiban/zhiban/pkg/errors"
)

// ShiftType 班次类型
type ShiftType string

const (
	ShiftWindow ShiftType = "Window" // 前台窗口班
	ShiftRemote ShiftType = "Remote" // 远程支持班
)

// ShiftTypes 按生成顺序返回所有班次类型
func ShiftTypes() []ShiftType {
	return []ShiftType{ShiftWindow, ShiftRemote}
}

// ShiftSlot 待覆盖的一小时班次槽
type ShiftSlot struct {
	Day  int       `json:"day"`  // 0=周一 ... 5=周六
	Hour int       `json:"hour"` // 当日整点小时
	Type ShiftType `json:"type"`
}

// DayHours 单日营业时段，Start 可为半点（7.5 表示 7:30），End 为不含端点的整数小时
type DayHours struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// CoverageRule 单一班次类型的每小时人数要求
type CoverageRule struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// SlotConfig 班次槽生成配置
type SlotConfig struct {
	Hours    map[int]DayHours           `json:"hours"`    // 日期索引 -> 营业时段
	Coverage map[ShiftType]CoverageRule `json:"coverage"` // 班次类型 -> 覆盖要求
}

// 周模板名称
const (
	TemplateFinals  = "finals"
	TemplateRegular = "regular"
)

// DefaultCoverage 返回默认覆盖要求：窗口恰好2人，远程2-4人
func DefaultCoverage() map[ShiftType]CoverageRule {
	return map[ShiftType]CoverageRule{
		ShiftWindow: {Min: 2, Max: 2},
		ShiftRemote: {Min: 2, Max: 4},
	}
}

// weekHours 周一至周六的营业时段，周一到周四 7:30-20:00，周五到 17:00，周六 10:00-18:00
func weekHours() map[int]DayHours {
	return map[int]DayHours{
		0: {Start: 7.5, End: 20},
		1: {Start: 7.5, End: 20},
		2: {Start: 7.5, End: 20},
		3: {Start: 7.5, End: 20},
		4: {Start: 7.5, End: 17},
		5: {Start: 10, End: 18},
	}
}

// TemplateConfig 按模板名称返回生成配置
func TemplateConfig(name string) (SlotConfig, error) {
	switch name {
	case TemplateFinals, TemplateRegular:
		return SlotConfig{Hours: weekHours(), Coverage: DefaultCoverage()}, nil
	default:
		return SlotConfig{}, errors.InvalidConfig("template", "未知周模板: "+name)
	}
}

// Validate 检查生成配置
func (c SlotConfig) Validate() error {
	if len(c.Hours) == 0 {
		return errors.InvalidConfig("hours", "营业时段为空")
	}
	for day, h := range c.Hours {
		if day < 0 {
			return errors.InvalidConfig("hours", "日期索引不能为负")
		}
		if math.Ceil(h.Start) >= h.End {
			return errors.InvalidConfig("hours", "营业开始时间不早于结束时间")
		}
	}
	if len(c.Coverage) == 0 {
		return errors.InvalidConfig("coverage", "覆盖要求为空")
	}
	for st, rule := range c.Coverage {
		if rule.Min < 0 || rule.Max < rule.Min {
			return errors.InvalidConfig("coverage", "班次类型 "+string(st)+" 的人数区间非法")
		}
	}
	return nil
}

// GenerateSlots 按营业时段和覆盖上限展开全部班次槽。
// 顺序不变式：日期升序、小时升序，同一小时内窗口副本在前、远程副本在后。
func GenerateSlots(cfg SlotConfig) ([]ShiftSlot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	days := make([]int, 0, len(cfg.Hours))
	for day := range cfg.Hours {
		days = append(days, day)
	}
	sort.Ints(days)

	var slots []ShiftSlot
	for _, day := range days {
		h := cfg.Hours[day]
		// 半点开始向上取整到下一个整点
		startHour := int(math.Ceil(h.Start))
		endHour := int(h.End)

		for hour := startHour; hour < endHour; hour++ {
			for _, st := range ShiftTypes() {
				rule, ok := cfg.Coverage[st]
				if !ok {
					continue
				}
				for i := 0; i < rule.Max; i++ {
					slots = append(slots, ShiftSlot{Day: day, Hour: hour, Type: st})
				}
			}
		}
	}
	return slots, nil
}
