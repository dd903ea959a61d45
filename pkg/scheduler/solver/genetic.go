// Package solver 提供排班求解算法
package solver

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// GeneticConfig 遗传算法求解器配置
type GeneticConfig struct {
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	CrossoverRate  float64 `json:"crossover_rate"`
	MutationRate   float64 `json:"mutation_rate"`
	ElitismCount   int     `json:"elitism_count"`
	TournamentSize int     `json:"tournament_size"`

	// MaxTime 可选墙钟预算，0 表示仅受代数预算约束
	MaxTime time.Duration `json:"max_time"`

	// Parallelism 种群评估并行度，0或1为串行
	Parallelism int   `json:"parallelism"`
	Seed        int64 `json:"seed"`
	Weights     constraint.Weights
}

// DefaultGeneticConfig 返回默认配置
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 250,
		Generations:    5000,
		CrossoverRate:  0.85,
		MutationRate:   0.35,
		ElitismCount:   15,
		TournamentSize: 3,
		Weights:        constraint.DefaultWeights(),
	}
}

// GeneticSolver 遗传算法求解器。
// 锦标赛选择、两点交叉、块感知变异，每代对全部后代强制修复可用性冲突，
// 精英保留保证最优罚分逐代不增。
type GeneticSolver struct {
	env    *model.Environment
	cfg    GeneticConfig
	eval   *constraint.Evaluator
	pool   *populationEvaluator
	rng    *rand.Rand
	logger *logger.SolverLogger
}

// NewGenetic 创建遗传算法求解器
func NewGenetic(env *model.Environment, cfg GeneticConfig) (*GeneticSolver, error) {
	if env == nil {
		return nil, errors.InvalidEnvironment("环境为空")
	}
	if cfg.PopulationSize <= 0 {
		return nil, errors.InvalidConfig("population_size", "种群规模必须为正")
	}
	if cfg.Generations <= 0 {
		return nil, errors.InvalidConfig("generations", "代数预算必须为正")
	}
	if cfg.CrossoverRate < 0 || cfg.CrossoverRate > 1 {
		return nil, errors.InvalidConfig("crossover_rate", "概率超出 [0,1]")
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, errors.InvalidConfig("mutation_rate", "概率超出 [0,1]")
	}
	if cfg.ElitismCount < 0 || cfg.ElitismCount >= cfg.PopulationSize {
		return nil, errors.InvalidConfig("elitism_count", "精英数量必须小于种群规模且非负")
	}
	if cfg.TournamentSize < 1 || cfg.TournamentSize > cfg.PopulationSize {
		return nil, errors.InvalidConfig("tournament_size", "锦标赛规模超出 [1,种群规模]")
	}
	cfg.Weights = normalizeWeights(cfg.Weights)
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	eval := constraint.NewEvaluator(env, cfg.Weights)
	return &GeneticSolver{
		env:    env,
		cfg:    cfg,
		eval:   eval,
		pool:   newPopulationEvaluator(cfg.Parallelism, eval),
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger.NewSolverLogger(),
	}, nil
}

// Name 返回求解器名称
func (s *GeneticSolver) Name() string {
	return "GeneticSolver"
}

// geneticMutations 变异移动的四种类别，均匀抽取
var geneticMutations = []MoveKind{MoveExtend, MoveSwap, MoveFill, MoveReassign}

// Solve 进化种群直到代数耗尽或找到零罚分个体
func (s *GeneticSolver) Solve(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	s.logger.StartRun(runID, s.Name(), s.env.NumWorkers(), s.env.NumSlots())

	b := &builder{env: s.env, w: s.cfg.Weights, rng: s.rng}
	nb := &neighborhood{env: s.env, w: s.cfg.Weights, rng: s.rng}

	population := make([]model.Schedule, s.cfg.PopulationSize)
	for i := range population {
		population[i] = b.buildRandom()
	}
	fitness := s.pool.EvaluateAll(ctx, population)

	stats := Stats{Evaluations: len(population)}

	bestIdx := minIndex(fitness)
	best := population[bestIdx].Clone()
	bestPenalty := fitness[bestIdx]
	trace := []float64{bestPenalty}
	s.logger.Improvement(runID, 0, bestPenalty)

	for gen := 0; gen < s.cfg.Generations; gen++ {
		if ctx.Err() != nil {
			stats.Canceled = true
			break
		}
		if s.cfg.MaxTime > 0 && time.Since(start) >= s.cfg.MaxTime {
			break
		}
		if bestPenalty == 0 {
			break
		}
		stats.Generations++

		next := make([]model.Schedule, 0, s.cfg.PopulationSize)

		// 精英直接进入下一代
		order := make([]int, len(population))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, c int) bool {
			return fitness[order[a]] < fitness[order[c]]
		})
		for i := 0; i < s.cfg.ElitismCount; i++ {
			next = append(next, population[order[i]].Clone())
		}

		for len(next) < s.cfg.PopulationSize {
			p1 := s.tournament(population, fitness)
			p2 := s.tournament(population, fitness)

			var c1, c2 model.Schedule
			if s.rng.Float64() < s.cfg.CrossoverRate {
				c1, c2 = s.crossover(p1, p2)
			} else {
				c1, c2 = p1.Clone(), p2.Clone()
			}

			for _, child := range []model.Schedule{c1, c2} {
				if s.rng.Float64() < s.cfg.MutationRate {
					s.mutate(nb, child)
				}
				s.repair(child)
				if len(next) < s.cfg.PopulationSize {
					next = append(next, child)
				}
			}
		}

		population = next
		fitness = s.pool.EvaluateAll(ctx, population)
		stats.Evaluations += len(population)

		genIdx := minIndex(fitness)
		if fitness[genIdx] < bestPenalty {
			best = population[genIdx].Clone()
			bestPenalty = fitness[genIdx]
			stats.Improvements++
			s.logger.Improvement(runID, gen, bestPenalty)
		}
		trace = append(trace, bestPenalty)
	}

	stats.Elapsed = time.Since(start)
	penalty, breakdown := s.eval.Evaluate(best)
	s.logger.RunComplete(runID, stats.Elapsed, penalty, stats.Generations)

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

// tournament 不放回抽取固定数量个体，取罚分最低者
func (s *GeneticSolver) tournament(population []model.Schedule, fitness []float64) model.Schedule {
	perm := s.rng.Perm(len(population))[:s.cfg.TournamentSize]
	winner := perm[0]
	for _, idx := range perm[1:] {
		if fitness[idx] < fitness[winner] {
			winner = idx
		}
	}
	return population[winner]
}

// crossover 两点交叉：第一刀均匀取自 [0,L)，第二刀均匀取自 [第一刀,L]
func (s *GeneticSolver) crossover(p1, p2 model.Schedule) (model.Schedule, model.Schedule) {
	length := len(p1)
	a := s.rng.Intn(length)
	c := a + s.rng.Intn(length-a+1)

	c1, c2 := p1.Clone(), p2.Clone()
	copy(c1[a:c], p2[a:c])
	copy(c2[a:c], p1[a:c])
	return c1, c2
}

// mutate 均匀抽取一种变异移动
func (s *GeneticSolver) mutate(nb *neighborhood, child model.Schedule) {
	switch geneticMutations[s.rng.Intn(len(geneticMutations))] {
	case MoveExtend:
		nb.extend(child, true)
	case MoveSwap:
		nb.swap(child)
	case MoveFill:
		nb.fillSpan(child, localFillSpanMax, true, true, false)
	case MoveReassign:
		nb.reassignSlot(child, false)
	}
}

// repair 强制修复：盲目重组后把排到不可用时段的槽位换成可用值班员，
// 无人可用则清空。每代每个后代必须执行，是可用性硬约束的保障机制。
func (s *GeneticSolver) repair(child model.Schedule) {
	for i, id := range child {
		if id == model.Unassigned {
			continue
		}
		slot := s.env.Slot(i)
		worker, known := s.env.WorkerByID(id)
		if known && worker.IsAvailable(slot.Day, slot.Hour) {
			continue
		}

		avail := s.env.AvailableWorkers(slot.Day, slot.Hour)
		if len(avail) == 0 {
			child[i] = model.Unassigned
		} else {
			child[i] = avail[s.rng.Intn(len(avail))]
		}
	}
}

// minIndex 返回最小值下标
func minIndex(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] < values[best] {
			best = i
		}
	}
	return best
}
