// Package config 提供配置管理
package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	apperrors "github.com/zhiban/zhiban/pkg/errors"
)

// Config 应用配置，全部来自环境变量
type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Solver    SolverConfig    `envPrefix:"SOLVER_"`
	CSP       CSPConfig       `envPrefix:"CSP_"`
	Genetic   GeneticConfig   `envPrefix:"GA_"`
	Annealing AnnealingConfig `envPrefix:"SA_"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `env:"NAME" envDefault:"zhiban"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// SolverConfig 求解器公共配置
type SolverConfig struct {
	// Seed 为0时每次运行使用新的随机种子
	Seed        int64         `env:"SEED" envDefault:"0"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"60s"`
	Parallelism int           `env:"PARALLELISM" envDefault:"0"`
}

// CSPConfig 约束求解配置
type CSPConfig struct {
	MaxIterations int           `env:"MAX_ITERATIONS" envDefault:"5000"`
	MaxTime       time.Duration `env:"MAX_TIME" envDefault:"30s"`
	Stagnation    int           `env:"STAGNATION" envDefault:"500"`
	AcceptWorse   float64       `env:"ACCEPT_WORSE" envDefault:"0.01"`
}

// GeneticConfig 遗传算法配置
type GeneticConfig struct {
	PopulationSize int     `env:"POPULATION" envDefault:"250"`
	Generations    int     `env:"GENERATIONS" envDefault:"5000"`
	CrossoverRate  float64 `env:"CROSSOVER_RATE" envDefault:"0.85"`
	MutationRate   float64 `env:"MUTATION_RATE" envDefault:"0.35"`
	ElitismCount   int     `env:"ELITISM" envDefault:"15"`
	TournamentSize int     `env:"TOURNAMENT" envDefault:"3"`
}

// AnnealingConfig 模拟退火配置
type AnnealingConfig struct {
	InitialTemp       float64 `env:"INITIAL_TEMP" envDefault:"2000"`
	FinalTemp         float64 `env:"FINAL_TEMP" envDefault:"0.01"`
	CoolingRate       float64 `env:"COOLING_RATE" envDefault:"0.997"`
	IterationsPerTemp int     `env:"ITERATIONS_PER_TEMP" envDefault:"200"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidConfig, "环境变量解析失败")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置项取值范围
func (c *Config) Validate() error {
	if c.CSP.MaxIterations <= 0 || c.CSP.Stagnation <= 0 {
		return apperrors.InvalidConfig("csp", "迭代与停滞预算必须为正")
	}
	if c.CSP.AcceptWorse < 0 || c.CSP.AcceptWorse > 1 {
		return apperrors.InvalidConfig("csp.accept_worse", "接受概率必须在 [0,1] 内")
	}
	if c.Genetic.PopulationSize <= 0 || c.Genetic.Generations <= 0 {
		return apperrors.InvalidConfig("genetic", "种群规模与代数必须为正")
	}
	if c.Genetic.ElitismCount < 0 || c.Genetic.ElitismCount >= c.Genetic.PopulationSize {
		return apperrors.InvalidConfig("genetic.elitism", "精英数必须小于种群规模")
	}
	if c.Annealing.FinalTemp <= 0 || c.Annealing.InitialTemp <= c.Annealing.FinalTemp {
		return apperrors.InvalidConfig("annealing", "温度区间非法")
	}
	if c.Annealing.CoolingRate <= 0 || c.Annealing.CoolingRate >= 1 {
		return apperrors.InvalidConfig("annealing.cooling_rate", "冷却速率必须在 (0,1) 内")
	}
	return nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}
