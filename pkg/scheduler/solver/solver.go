// Package solver 提供三种互换使用的排班求解算法：
// 贪心构造+局部搜索（CSP）、遗传算法、模拟退火。
// 三者共享同一排班向量表示与约束评估器。
package solver

import (
	"context"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// Solver 求解器接口
type Solver interface {
	// Solve 搜索低罚分排班，总是返回一个排班方案，未找到完美解仅体现为罚分非零
	Solve(ctx context.Context) (*Result, error)

	// Name 返回求解器名称
	Name() string
}

// Result 求解结果
type Result struct {
	RunID     string               `json:"run_id"`
	Algorithm string               `json:"algorithm"`
	Best      model.Schedule       `json:"best"`
	Penalty   float64              `json:"penalty"`
	Breakdown constraint.Breakdown `json:"breakdown"`
	Trace     []float64            `json:"trace"` // 最优罚分轨迹，单调不增
	Stats     Stats                `json:"stats"`
}

// Stats 求解统计，各字段仅对相应算法有意义
type Stats struct {
	Iterations   int           `json:"iterations,omitempty"`
	Generations  int           `json:"generations,omitempty"`
	Evaluations  int           `json:"evaluations,omitempty"`
	Improvements int           `json:"improvements,omitempty"`
	Restarts     int           `json:"restarts,omitempty"`
	Accepted     int           `json:"accepted,omitempty"`
	FinalTemp    float64       `json:"final_temp,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
	Canceled     bool          `json:"canceled,omitempty"`
}

// normalizeWeights 未显式配置权重时使用默认权重
func normalizeWeights(w constraint.Weights) constraint.Weights {
	if w.Coverage == nil && w.MaxHours == 0 && w.MaxBlock == 0 {
		return constraint.DefaultWeights()
	}
	return w
}
