package solver

import (
	"context"
	"testing"

	"github.com/zhiban/zhiban/pkg/errors"
)

func testCompareConfig() CompareConfig {
	return CompareConfig{
		CSP:       testCSPConfig(),
		Genetic:   testGeneticConfig(),
		Annealing: testAnnealingConfig(),
		Weights:   testWeights(),
	}
}

func TestCompare(t *testing.T) {
	env := testEnv(t)

	cmp, err := Compare(context.Background(), env, testCompareConfig())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if len(cmp.Outcomes) != 3 {
		t.Fatalf("结果数 = %d, want 3", len(cmp.Outcomes))
	}
	for _, r := range cmp.Outcomes {
		assertValidResult(t, env, r)
	}

	// 按罚分升序，第一名即胜出者
	for i := 1; i < len(cmp.Outcomes); i++ {
		if cmp.Outcomes[i].Penalty < cmp.Outcomes[i-1].Penalty {
			t.Errorf("结果未按罚分升序: %v 在 %v 之后",
				cmp.Outcomes[i].Penalty, cmp.Outcomes[i-1].Penalty)
		}
	}
	if cmp.Winner != cmp.Outcomes[0] {
		t.Error("胜出者应为罚分最低的结果")
	}

	if cmp.Report == nil {
		t.Fatal("缺少胜出方案的验收报告")
	}
	if cmp.Report.Penalty != cmp.Winner.Penalty {
		t.Errorf("报告罚分 %v 与胜出罚分 %v 不一致", cmp.Report.Penalty, cmp.Winner.Penalty)
	}

	// 三种算法各出一次
	seen := make(map[string]bool)
	for _, r := range cmp.Outcomes {
		seen[r.Algorithm] = true
	}
	for _, name := range []string{"CSPSolver", "GeneticSolver", "AnnealingSolver"} {
		if !seen[name] {
			t.Errorf("缺少算法 %s 的结果", name)
		}
	}
}

func TestCompare_NilEnvironment(t *testing.T) {
	_, err := Compare(context.Background(), nil, testCompareConfig())
	if !errors.Is(err, errors.CodeInvalidEnvironment) {
		t.Errorf("错误码 = %v, want INVALID_ENVIRONMENT", errors.GetCode(err))
	}
}

func TestCompare_InvalidSolverConfig(t *testing.T) {
	env := testEnv(t)
	cfg := testCompareConfig()
	cfg.Genetic.PopulationSize = 0

	if _, err := Compare(context.Background(), env, cfg); !errors.Is(err, errors.CodeInvalidConfig) {
		t.Errorf("错误码 = %v, want INVALID_CONFIG", errors.GetCode(err))
	}
}

func TestCompare_Canceled(t *testing.T) {
	env := testEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 取消时各求解器仍返回最优已知解，对比照常完成
	cmp, err := Compare(ctx, env, testCompareConfig())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	for _, r := range cmp.Outcomes {
		if !r.Stats.Canceled {
			t.Errorf("算法 %s 的 Canceled 标志应为 true", r.Algorithm)
		}
	}
}
