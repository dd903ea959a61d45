// Package solver 提供排班求解算法
package solver

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// localFillSpanMax 局部搜索填空移动的最长连班
const localFillSpanMax = 4

// CSPConfig 贪心构造+局部搜索求解器配置
type CSPConfig struct {
	MaxIterations int           `json:"max_iterations"` // 局部搜索迭代预算
	MaxTime       time.Duration `json:"max_time"`       // 墙钟预算，与迭代预算先到先停
	Stagnation    int           `json:"stagnation"`     // 连续无改进多少次后重启
	AcceptWorse   float64       `json:"accept_worse"`   // 接受劣解的固定概率
	Seed          int64         `json:"seed"`           // 0 表示按时间取种子
	Weights       constraint.Weights
}

// DefaultCSPConfig 返回默认配置
func DefaultCSPConfig() CSPConfig {
	return CSPConfig{
		MaxIterations: 5000,
		MaxTime:       30 * time.Second,
		Stagnation:    500,
		AcceptWorse:   0.01,
		Weights:       constraint.DefaultWeights(),
	}
}

// CSPSolver 贪心构造+局部搜索求解器。
// 先按优先级成块构造初始解，再用四种邻域移动随机改进，停滞时重新构造。
type CSPSolver struct {
	env    *model.Environment
	cfg    CSPConfig
	eval   *constraint.Evaluator
	rng    *rand.Rand
	logger *logger.SolverLogger
}

// NewCSP 创建贪心构造+局部搜索求解器
func NewCSP(env *model.Environment, cfg CSPConfig) (*CSPSolver, error) {
	if env == nil {
		return nil, errors.InvalidEnvironment("环境为空")
	}
	if cfg.MaxIterations <= 0 {
		return nil, errors.InvalidConfig("max_iterations", "迭代预算必须为正")
	}
	if cfg.MaxTime <= 0 {
		return nil, errors.InvalidConfig("max_time", "墙钟预算必须为正")
	}
	if cfg.Stagnation <= 0 {
		return nil, errors.InvalidConfig("stagnation", "停滞阈值必须为正")
	}
	if cfg.AcceptWorse < 0 || cfg.AcceptWorse > 1 {
		return nil, errors.InvalidConfig("accept_worse", "概率超出 [0,1]")
	}
	cfg.Weights = normalizeWeights(cfg.Weights)
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &CSPSolver{
		env:    env,
		cfg:    cfg,
		eval:   constraint.NewEvaluator(env, cfg.Weights),
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger.NewSolverLogger(),
	}, nil
}

// Name 返回求解器名称
func (s *CSPSolver) Name() string {
	return "CSPSolver"
}

// cspMoves 局部搜索的四种移动，均匀抽取
var cspMoves = []MoveKind{MoveSwap, MoveReassign, MoveExtend, MoveFill}

// Solve 构造初始解并局部搜索改进
func (s *CSPSolver) Solve(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	s.logger.StartRun(runID, s.Name(), s.env.NumWorkers(), s.env.NumSlots())

	b := &builder{env: s.env, w: s.cfg.Weights, rng: s.rng}
	nb := &neighborhood{env: s.env, w: s.cfg.Weights, rng: s.rng}

	current := b.buildGreedy()
	curPenalty, _ := s.eval.Evaluate(current)

	best := current.Clone()
	bestPenalty := curPenalty
	trace := []float64{bestPenalty}

	stats := Stats{Evaluations: 1}
	stagnation := 0

	for iter := 0; iter < s.cfg.MaxIterations; iter++ {
		if ctx.Err() != nil {
			stats.Canceled = true
			break
		}
		// 每轮迭代检查墙钟，超时最多只多跑一轮
		if time.Since(start) >= s.cfg.MaxTime {
			break
		}
		if bestPenalty == 0 {
			break
		}
		stats.Iterations++

		neighbor := current.Clone()
		var applied bool
		switch cspMoves[s.rng.Intn(len(cspMoves))] {
		case MoveSwap:
			applied = nb.swap(neighbor)
		case MoveReassign:
			applied = nb.reassignRun(neighbor)
		case MoveExtend:
			applied = nb.extend(neighbor, true)
		case MoveFill:
			applied = nb.fillSpan(neighbor, localFillSpanMax, true, true, false)
		}

		improved := false
		if applied {
			penalty, _ := s.eval.Evaluate(neighbor)
			stats.Evaluations++

			if penalty < curPenalty {
				// 改进当前解即重置停滞计数，不要求刷新全局最优
				current, curPenalty = neighbor, penalty
				stats.Accepted++
				improved = true
				if penalty < bestPenalty {
					best = neighbor.Clone()
					bestPenalty = penalty
					trace = append(trace, bestPenalty)
					stats.Improvements++
					s.logger.Improvement(runID, iter, bestPenalty)
				}
			} else if s.rng.Float64() < s.cfg.AcceptWorse {
				// 固定小概率接受劣解以跳出局部极小，不重置停滞计数
				current, curPenalty = neighbor, penalty
				stats.Accepted++
			}
		}

		if improved {
			stagnation = 0
			continue
		}
		stagnation++
		if stagnation >= s.cfg.Stagnation {
			current = b.buildGreedy()
			curPenalty, _ = s.eval.Evaluate(current)
			stats.Evaluations++
			stats.Restarts++
			stagnation = 0
			s.logger.Restart(runID, iter, stats.Restarts)

			if curPenalty < bestPenalty {
				best = current.Clone()
				bestPenalty = curPenalty
				trace = append(trace, bestPenalty)
				stats.Improvements++
			}
		}
	}

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
