// Package solver 提供排班求解算法
package solver

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
	"github.com/zhiban/zhiban/pkg/validator"
)

// CompareConfig 对比运行配置
type CompareConfig struct {
	CSP       CSPConfig
	Genetic   GeneticConfig
	Annealing AnnealingConfig

	// Weights 胜出方案验收时使用的权重
	Weights constraint.Weights
}

// DefaultCompareConfig 返回对比预设：三种算法压缩到可比的预算量级
func DefaultCompareConfig() CompareConfig {
	csp := DefaultCSPConfig()
	csp.MaxTime = 60 * time.Second

	ga := DefaultGeneticConfig()
	ga.PopulationSize = 100
	ga.Generations = 300

	sa := DefaultAnnealingConfig()
	sa.InitialTemp = 1000
	sa.CoolingRate = 0.995

	return CompareConfig{
		CSP:       csp,
		Genetic:   ga,
		Annealing: sa,
		Weights:   constraint.DefaultWeights(),
	}
}

// Comparison 对比结果
type Comparison struct {
	// Outcomes 按最优罚分升序排列
	Outcomes []*Result `json:"outcomes"`
	Winner   *Result   `json:"winner"`

	// Report 胜出方案的验收报告
	Report *validator.Report `json:"report"`
}

// Compare 在同一只读环境上并发运行三种求解器并按罚分排名。
// 每个求解器持有独立的随机数源与工作缓冲，环境不加锁共享。
func Compare(ctx context.Context, env *model.Environment, cfg CompareConfig) (*Comparison, error) {
	if env == nil {
		return nil, errors.InvalidEnvironment("环境为空")
	}
	cfg.Weights = normalizeWeights(cfg.Weights)

	csp, err := NewCSP(env, cfg.CSP)
	if err != nil {
		return nil, err
	}
	ga, err := NewGenetic(env, cfg.Genetic)
	if err != nil {
		return nil, err
	}
	sa, err := NewAnnealing(env, cfg.Annealing)
	if err != nil {
		return nil, err
	}
	solvers := []Solver{csp, ga, sa}

	outcomes := make([]*Result, len(solvers))
	solveErrs := make([]error, len(solvers))

	var wg sync.WaitGroup
	for i, sv := range solvers {
		wg.Add(1)
		go func(i int, sv Solver) {
			defer wg.Done()
			outcomes[i], solveErrs[i] = sv.Solve(ctx)
		}(i, sv)
	}
	wg.Wait()

	for _, err := range solveErrs {
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeSolverFailure, "对比运行失败")
		}
	}

	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Penalty < outcomes[j].Penalty
	})

	winner := outcomes[0]
	report, err := validator.Check(env, winner.Best, cfg.Weights)
	if err != nil {
		return nil, err
	}

	return &Comparison{
		Outcomes: outcomes,
		Winner:   winner,
		Report:   report,
	}, nil
}
