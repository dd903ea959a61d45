package solver

import (
	"context"
	"testing"
	"time"

	"github.com/zhiban/zhiban/pkg/errors"
)

func testCSPConfig() CSPConfig {
	cfg := DefaultCSPConfig()
	cfg.MaxIterations = 300
	cfg.MaxTime = 5 * time.Second
	cfg.Stagnation = 50
	cfg.Seed = 7
	cfg.Weights = testWeights()
	return cfg
}

func TestNewCSP_Invalid(t *testing.T) {
	env := testEnv(t)

	tests := []struct {
		name   string
		modify func(*CSPConfig)
	}{
		{"迭代预算为零", func(c *CSPConfig) { c.MaxIterations = 0 }},
		{"墙钟预算为零", func(c *CSPConfig) { c.MaxTime = 0 }},
		{"停滞阈值为零", func(c *CSPConfig) { c.Stagnation = 0 }},
		{"接受概率越界", func(c *CSPConfig) { c.AcceptWorse = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testCSPConfig()
			tt.modify(&cfg)
			if _, err := NewCSP(env, cfg); !errors.Is(err, errors.CodeInvalidConfig) {
				t.Errorf("错误码 = %v, want INVALID_CONFIG", errors.GetCode(err))
			}
		})
	}

	if _, err := NewCSP(nil, testCSPConfig()); !errors.Is(err, errors.CodeInvalidEnvironment) {
		t.Errorf("空环境错误码 = %v, want INVALID_ENVIRONMENT", errors.GetCode(err))
	}
}

func TestCSPSolver_Solve(t *testing.T) {
	env := testEnv(t)
	s, err := NewCSP(env, testCSPConfig())
	if err != nil {
		t.Fatalf("NewCSP() error = %v", err)
	}

	r, err := s.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	assertValidResult(t, env, r)

	if r.Algorithm != "CSPSolver" {
		t.Errorf("Algorithm = %q", r.Algorithm)
	}
	if r.Stats.Iterations > 300 {
		t.Errorf("迭代数 %d 超出预算", r.Stats.Iterations)
	}
	if r.Stats.Elapsed <= 0 {
		t.Error("耗时应为正")
	}
}

func TestCSPSolver_Deterministic(t *testing.T) {
	env := testEnv(t)

	run := func() *Result {
		s, err := NewCSP(env, testCSPConfig())
		if err != nil {
			t.Fatalf("NewCSP() error = %v", err)
		}
		r, err := s.Solve(context.Background())
		if err != nil {
			t.Fatalf("Solve() error = %v", err)
		}
		return r
	}

	r1, r2 := run(), run()
	if r1.Penalty != r2.Penalty {
		t.Errorf("相同种子罚分不同: %v vs %v", r1.Penalty, r2.Penalty)
	}
	for i := range r1.Best {
		if r1.Best[i] != r2.Best[i] {
			t.Fatalf("相同种子排班在槽 %d 不同: %d vs %d", i, r1.Best[i], r2.Best[i])
		}
	}
}

func TestCSPSolver_Deadline(t *testing.T) {
	env := testEnv(t)
	cfg := testCSPConfig()
	cfg.MaxTime = time.Nanosecond

	s, err := NewCSP(env, cfg)
	if err != nil {
		t.Fatalf("NewCSP() error = %v", err)
	}
	r, err := s.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	// 墙钟先到：只做了构造，没有进入局部搜索
	if r.Stats.Iterations != 0 {
		t.Errorf("迭代数 = %d, want 0", r.Stats.Iterations)
	}
	assertValidResult(t, env, r)
}

func TestCSPSolver_StagnationResetOnImprovement(t *testing.T) {
	env := testEnv(t)
	cfg := testCSPConfig()
	cfg.MaxIterations = 300
	cfg.Stagnation = 3
	cfg.AcceptWorse = 0

	s, err := NewCSP(env, cfg)
	if err != nil {
		t.Fatalf("NewCSP() error = %v", err)
	}
	r, err := s.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	assertValidResult(t, env, r)

	if r.Stats.Restarts < 1 {
		t.Fatalf("Restarts = %d, 小停滞阈值下应发生重启", r.Stats.Restarts)
	}

	// AcceptWorse 为零时每次接受都改进当前解并重置停滞计数，
	// 因此每次重启都要消耗一段连续 Stagnation 次未接受的迭代，
	// 接受的迭代不计入任何停滞窗口
	if used, budget := r.Stats.Restarts*cfg.Stagnation, r.Stats.Iterations-r.Stats.Accepted; used > budget {
		t.Errorf("重启消耗停滞迭代 %d 次, 超出未接受迭代总数 %d", used, budget)
	}
}

func TestCSPSolver_Canceled(t *testing.T) {
	env := testEnv(t)
	s, err := NewCSP(env, testCSPConfig())
	if err != nil {
		t.Fatalf("NewCSP() error = %v", err)
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
	assertValidResult(t, env, r)
}
