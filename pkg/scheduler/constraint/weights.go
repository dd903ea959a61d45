// Package constraint 定义排班评分的约束权重与评估器
package constraint

import (
	"github.com/mitchellh/mapstructure"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
)

// Weights 约束权重配置，所有评分常量集中于此
type Weights struct {
	// 覆盖约束
	Coverage          map[model.ShiftType]model.CoverageRule `mapstructure:"coverage"`
	CoverageShortfall float64                                `mapstructure:"coverage_shortfall"` // 每缺1人
	CoverageSurplus   float64                                `mapstructure:"coverage_surplus"`   // 超员固定罚分

	// 分配约束
	AvailabilityConflict float64 `mapstructure:"availability_conflict"` // 排到不可用时段
	TierMismatch         float64 `mapstructure:"tier_mismatch"`         // Tier 3-4 排窗口班

	// 周工时约束
	MinHours         int     `mapstructure:"min_hours"`
	MinHoursPenalty  float64 `mapstructure:"min_hours_penalty"` // 每缺1小时
	MaxHours         int     `mapstructure:"max_hours"`
	MaxHoursPenalty  float64 `mapstructure:"max_hours_penalty"` // 每超1小时
	DesiredTolerance float64 `mapstructure:"desired_tolerance"` // 与期望工时的容忍偏差
	DesiredPenalty   float64 `mapstructure:"desired_penalty"`   // 偏差每小时

	// 早班约束
	MorningLimit          int     `mapstructure:"morning_limit"`           // 12点前班次上限
	MorningExcessPenalty  float64 `mapstructure:"morning_excess_penalty"`  // 每超1次
	MorningAtLimitPenalty float64 `mapstructure:"morning_at_limit_penalty"` // 恰好达到上限

	// 公平性
	SpreadPenalty float64 `mapstructure:"spread_penalty"` // 工时标准差乘数

	// 连班长度约束
	MinBlock          int     `mapstructure:"min_block"`
	ShortBlockPenalty float64 `mapstructure:"short_block_penalty"` // 过短固定罚分
	MaxBlock          int     `mapstructure:"max_block"`
	LongBlockPenalty  float64 `mapstructure:"long_block_penalty"` // 每超1小时
}

// DefaultWeights 返回默认权重
func DefaultWeights() Weights {
	return Weights{
		Coverage:          model.DefaultCoverage(),
		CoverageShortfall: 100,
		CoverageSurplus:   50,

		AvailabilityConflict: 200,
		TierMismatch:         10,

		MinHours:         14,
		MinHoursPenalty:  75,
		MaxHours:         20,
		MaxHoursPenalty:  50,
		DesiredTolerance: 3,
		DesiredPenalty:   3,

		MorningLimit:          2,
		MorningExcessPenalty:  30,
		MorningAtLimitPenalty: 10,

		SpreadPenalty: 2,

		MinBlock:          2,
		ShortBlockPenalty: 500,
		MaxBlock:          6,
		LongBlockPenalty:  100,
	}
}

// WeightsFromMap 在默认权重上应用未类型化的配置项
func WeightsFromMap(options map[string]interface{}) (Weights, error) {
	w := DefaultWeights()
	if len(options) == 0 {
		return w, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &w,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return w, errors.Wrap(err, errors.CodeInvalidConfig, "构建权重解码器失败")
	}
	if err := decoder.Decode(options); err != nil {
		return w, errors.Wrap(err, errors.CodeInvalidConfig, "权重配置解码失败")
	}
	if err := w.Validate(); err != nil {
		return w, err
	}
	return w, nil
}

// Validate 检查权重配置的内部一致性
func (w Weights) Validate() error {
	if w.MinHours < 0 || w.MaxHours < w.MinHours {
		return errors.InvalidConfig("min_hours/max_hours", "周工时区间非法")
	}
	if w.MinBlock < 1 || w.MaxBlock < w.MinBlock {
		return errors.InvalidConfig("min_block/max_block", "连班长度区间非法")
	}
	if w.MorningLimit < 0 {
		return errors.InvalidConfig("morning_limit", "早班上限不能为负")
	}
	for st, rule := range w.Coverage {
		if rule.Min < 0 || rule.Max < rule.Min {
			return errors.InvalidConfig("coverage", "班次类型 "+string(st)+" 的人数区间非法")
		}
	}
	return nil
}
