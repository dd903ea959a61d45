// Package solver 提供排班求解算法
package solver

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// AnnealingConfig 模拟退火求解器配置
type AnnealingConfig struct {
	InitialTemp       float64 `json:"initial_temp"`
	FinalTemp         float64 `json:"final_temp"`
	CoolingRate       float64 `json:"cooling_rate"`
	IterationsPerTemp int     `json:"iterations_per_temp"`
	Seed              int64   `json:"seed"`
	Weights           constraint.Weights
}

// DefaultAnnealingConfig 返回默认配置
func DefaultAnnealingConfig() AnnealingConfig {
	return AnnealingConfig{
		InitialTemp:       2000,
		FinalTemp:         0.01,
		CoolingRate:       0.997,
		IterationsPerTemp: 200,
		Weights:           constraint.DefaultWeights(),
	}
}

// AnnealingSolver 模拟退火求解器。
// 单一工作解，五种块感知邻域移动，Metropolis 准则接受，几何降温。
// 最优解独立于当前接受解跟踪，向劣解探索不会丢失最优。
type AnnealingSolver struct {
	env    *model.Environment
	cfg    AnnealingConfig
	eval   *constraint.Evaluator
	rng    *rand.Rand
	logger *logger.SolverLogger
}

// NewAnnealing 创建模拟退火求解器
func NewAnnealing(env *model.Environment, cfg AnnealingConfig) (*AnnealingSolver, error) {
	if env == nil {
		return nil, errors.InvalidEnvironment("环境为空")
	}
	if cfg.FinalTemp <= 0 || cfg.InitialTemp <= cfg.FinalTemp {
		return nil, errors.InvalidConfig("initial_temp/final_temp", "温度区间非法")
	}
	if cfg.CoolingRate <= 0 || cfg.CoolingRate >= 1 {
		return nil, errors.InvalidConfig("cooling_rate", "冷却速率超出 (0,1)")
	}
	if cfg.IterationsPerTemp <= 0 {
		return nil, errors.InvalidConfig("iterations_per_temp", "每温度迭代数必须为正")
	}
	cfg.Weights = normalizeWeights(cfg.Weights)
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &AnnealingSolver{
		env:    env,
		cfg:    cfg,
		eval:   constraint.NewEvaluator(env, cfg.Weights),
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger.NewSolverLogger(),
	}, nil
}

// Name 返回求解器名称
func (s *AnnealingSolver) Name() string {
	return "AnnealingSolver"
}

// annealingMoves 退火的五种邻域移动，均匀抽取
var annealingMoves = []MoveKind{MoveSwap, MoveExtend, MoveShrink, MoveReassign, MoveFill}

// Solve 从确定性初始解出发按温度计划探索
func (s *AnnealingSolver) Solve(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	s.logger.StartRun(runID, s.Name(), s.env.NumWorkers(), s.env.NumSlots())

	b := &builder{env: s.env, w: s.cfg.Weights, rng: s.rng}
	nb := &neighborhood{env: s.env, w: s.cfg.Weights, rng: s.rng}

	current := b.buildDeterministic()
	curPenalty, _ := s.eval.Evaluate(current)

	best := current.Clone()
	bestPenalty := curPenalty
	trace := []float64{bestPenalty}

	stats := Stats{Evaluations: 1}
	temp := s.cfg.InitialTemp

outer:
	for temp > s.cfg.FinalTemp {
		for i := 0; i < s.cfg.IterationsPerTemp; i++ {
			if ctx.Err() != nil {
				stats.Canceled = true
				break outer
			}
			stats.Iterations++

			neighbor := current.Clone()
			switch annealingMoves[s.rng.Intn(len(annealingMoves))] {
			case MoveSwap:
				nb.swap(neighbor)
			case MoveExtend:
				nb.extend(neighbor, false)
			case MoveShrink:
				nb.shrink(neighbor)
			case MoveReassign:
				nb.reassignSlot(neighbor, true)
			case MoveFill:
				nb.fillSpan(neighbor, s.cfg.Weights.MaxBlock, false, false, true)
			}

			penalty, _ := s.eval.Evaluate(neighbor)
			stats.Evaluations++

			// Metropolis 准则：劣解按 exp(-Δ/T) 概率接受，Δ=0 必然接受
			delta := penalty - curPenalty
			if delta < 0 || s.rng.Float64() < math.Exp(-delta/temp) {
				current, curPenalty = neighbor, penalty
				stats.Accepted++
			}

			if curPenalty < bestPenalty {
				best = current.Clone()
				bestPenalty = curPenalty
				stats.Improvements++
				s.logger.Improvement(runID, stats.Iterations, bestPenalty)
			}
			trace = append(trace, bestPenalty)

			if bestPenalty == 0 {
				break outer
			}
		}
		temp *= s.cfg.CoolingRate
	}

	stats.FinalTemp = temp
	stats.Elapsed = time.Since(start)
	penalty, breakdown := s.eval.Evaluate(best)
	s.logger.RunComplete(runID, stats.Elapsed, penalty, stats.Iterations)

	return &Result{
		RunID:     runID,
		Algorithm: s.Name(),
		Best:      best,
		Penalty:   penalty,
		Breakdown: breakdown,
		Trace:     trace,
		Stats:     stats,
	}, nil
}
