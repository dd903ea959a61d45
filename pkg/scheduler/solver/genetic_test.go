package solver

import (
	"context"
	"testing"
	"time"

	"github.com/zhiban/zhiban/pkg/errors"
	"github.com/zhiban/zhiban/pkg/model"
)

func testGeneticConfig() GeneticConfig {
	cfg := DefaultGeneticConfig()
	cfg.PopulationSize = 20
	cfg.Generations = 15
	cfg.ElitismCount = 2
	cfg.Seed = 42
	cfg.Weights = testWeights()
	return cfg
}

func TestNewGenetic_Invalid(t *testing.T) {
	env := testEnv(t)

	tests := []struct {
		name   string
		modify func(*GeneticConfig)
	}{
		{"种群规模为零", func(c *GeneticConfig) { c.PopulationSize = 0 }},
		{"代数为零", func(c *GeneticConfig) { c.Generations = 0 }},
		{"交叉率越界", func(c *GeneticConfig) { c.CrossoverRate = -0.1 }},
		{"变异率越界", func(c *GeneticConfig) { c.MutationRate = 2 }},
		{"精英不少于种群", func(c *GeneticConfig) { c.ElitismCount = c.PopulationSize }},
		{"锦标赛规模为零", func(c *GeneticConfig) { c.TournamentSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testGeneticConfig()
			tt.modify(&cfg)
			if _, err := NewGenetic(env, cfg); !errors.Is(err, errors.CodeInvalidConfig) {
				t.Errorf("错误码 = %v, want INVALID_CONFIG", errors.GetCode(err))
			}
		})
	}
}

func TestGeneticSolver_Solve(t *testing.T) {
	env := testEnv(t)
	s, err := NewGenetic(env, testGeneticConfig())
	if err != nil {
		t.Fatalf("NewGenetic() error = %v", err)
	}

	r, err := s.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	assertValidResult(t, env, r)

	if r.Stats.Generations > 15 {
		t.Errorf("代数 %d 超出预算", r.Stats.Generations)
	}
	if r.Stats.Evaluations < 20 {
		t.Errorf("评估次数 = %d, 至少应评估初始种群", r.Stats.Evaluations)
	}
}

func TestGeneticSolver_Deadline(t *testing.T) {
	env := testEnv(t)
	cfg := testGeneticConfig()
	cfg.MaxTime = time.Nanosecond

	s, err := NewGenetic(env, cfg)
	if err != nil {
		t.Fatalf("NewGenetic() error = %v", err)
	}
	r, err := s.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	// 墙钟先到：只评估了初始种群，没有进入进化
	if r.Stats.Generations != 0 {
		t.Errorf("代数 = %d, want 0", r.Stats.Generations)
	}
	if r.Stats.Evaluations != cfg.PopulationSize {
		t.Errorf("评估次数 = %d, want %d", r.Stats.Evaluations, cfg.PopulationSize)
	}
	assertValidResult(t, env, r)
}

func TestGeneticSolver_RepairCorrectness(t *testing.T) {
	env := testEnv(t)
	s, err := NewGenetic(env, testGeneticConfig())
	if err != nil {
		t.Fatalf("NewGenetic() error = %v", err)
	}

	r, err := s.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	// 修复后不允许任何排到不可用时段的分配
	for i, id := range r.Best {
		if id == model.Unassigned {
			continue
		}
		slot := env.Slot(i)
		w, ok := env.WorkerByID(id)
		if !ok {
			t.Fatalf("槽 %d 分配了环境外ID %d", i, id)
		}
		if !w.IsAvailable(slot.Day, slot.Hour) {
			t.Errorf("槽 %d (%d日%d时) 分配了不可用的值班员 %d", i, slot.Day, slot.Hour, id)
		}
	}
}

func TestGeneticSolver_ParallelMatchesSerial(t *testing.T) {
	env := testEnv(t)

	run := func(parallelism int) *Result {
		cfg := testGeneticConfig()
		cfg.Parallelism = parallelism
		s, err := NewGenetic(env, cfg)
		if err != nil {
			t.Fatalf("NewGenetic() error = %v", err)
		}
		r, err := s.Solve(context.Background())
		if err != nil {
			t.Fatalf("Solve() error = %v", err)
		}
		return r
	}

	// 评估是纯函数且不消耗随机数，并行评估不改变搜索轨迹
	serial, parallel := run(0), run(4)
	if serial.Penalty != parallel.Penalty {
		t.Errorf("并行评估改变了结果: %v vs %v", serial.Penalty, parallel.Penalty)
	}
	for i := range serial.Best {
		if serial.Best[i] != parallel.Best[i] {
			t.Fatalf("并行评估改变了排班: 槽 %d: %d vs %d", i, serial.Best[i], parallel.Best[i])
		}
	}
}

func TestGeneticSolver_Canceled(t *testing.T) {
	env := testEnv(t)
	s, err := NewGenetic(env, testGeneticConfig())
	if err != nil {
		t.Fatalf("NewGenetic() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := s.Solve(ctx)
	if err != nil {
		t.Fatalf("取消不应返回错误: %v", err)
	}
	if !r.Stats.Canceled {
		t.Error("Canceled 标志应为 true")
	}
	if len(r.Best) != env.NumSlots() {
		t.Error("取消后仍应返回完整排班")
	}
}
