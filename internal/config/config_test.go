package config

import (
	"testing"
	"time"

	"github.com/zhiban/zhiban/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Name != "zhiban" {
		t.Errorf("App.Name = %q, want zhiban", cfg.App.Name)
	}
	if cfg.App.Env != "development" || !cfg.IsDevelopment() {
		t.Errorf("App.Env = %q, want development", cfg.App.Env)
	}
	if cfg.Solver.Seed != 0 {
		t.Errorf("Solver.Seed = %d, want 0", cfg.Solver.Seed)
	}
	if cfg.CSP.MaxIterations != 5000 || cfg.CSP.MaxTime != 30*time.Second {
		t.Errorf("CSP 默认值不符: %+v", cfg.CSP)
	}
	if cfg.Genetic.PopulationSize != 250 || cfg.Genetic.ElitismCount != 15 {
		t.Errorf("遗传算法默认值不符: %+v", cfg.Genetic)
	}
	if cfg.Annealing.InitialTemp != 2000 || cfg.Annealing.CoolingRate != 0.997 {
		t.Errorf("退火默认值不符: %+v", cfg.Annealing)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SOLVER_SEED", "42")
	t.Setenv("GA_POPULATION", "100")
	t.Setenv("SA_COOLING_RATE", "0.99")
	t.Setenv("CSP_MAX_TIME", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.IsProduction() {
		t.Errorf("App.Env = %q, want production", cfg.App.Env)
	}
	if cfg.Solver.Seed != 42 {
		t.Errorf("Solver.Seed = %d, want 42", cfg.Solver.Seed)
	}
	if cfg.Genetic.PopulationSize != 100 {
		t.Errorf("种群规模 = %d, want 100", cfg.Genetic.PopulationSize)
	}
	if cfg.Annealing.CoolingRate != 0.99 {
		t.Errorf("冷却速率 = %v, want 0.99", cfg.Annealing.CoolingRate)
	}
	if cfg.CSP.MaxTime != 5*time.Second {
		t.Errorf("CSP.MaxTime = %v, want 5s", cfg.CSP.MaxTime)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"种群规模为零", "GA_POPULATION", "0"},
		{"精英不少于种群", "GA_ELITISM", "250"},
		{"冷却速率为1", "SA_COOLING_RATE", "1"},
		{"温度区间颠倒", "SA_INITIAL_TEMP", "0.001"},
		{"接受概率越界", "CSP_ACCEPT_WORSE", "2"},
		{"迭代预算为负", "CSP_MAX_ITERATIONS", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); !errors.Is(err, errors.CodeInvalidConfig) {
				t.Errorf("错误码 = %v, want INVALID_CONFIG", errors.GetCode(err))
			}
		})
	}
}

func TestConfig_EnvHelpers(t *testing.T) {
	cfg := &Config{App: AppConfig{Env: "test"}}
	if !cfg.IsTest() || cfg.IsProduction() || cfg.IsDevelopment() {
		t.Errorf("环境判定不符: %+v", cfg.App)
	}
}
