// ZhiBan 值班排班引擎
// 命令行入口

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/zhiban/zhiban/internal/config"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
	"github.com/zhiban/zhiban/pkg/scheduler/solver"
	"github.com/zhiban/zhiban/pkg/stats"
	"github.com/zhiban/zhiban/pkg/validator"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var weekdays = []string{"周一", "周二", "周三", "周四", "周五", "周六"}

func main() {
	var (
		algorithm   = flag.String("algorithm", "csp", "求解算法: csp | genetic | annealing | compare")
		template    = flag.String("template", model.TemplateFinals, "周模板: finals | regular")
		inputPath   = flag.String("input", "", "值班员JSON文件，缺省使用内置示例名单")
		seed        = flag.Int64("seed", 0, "随机种子，0表示每次运行随机")
		jsonOut     = flag.Bool("json", false, "以JSON输出完整结果")
		showVersion = flag.Bool("version", false, "打印版本信息")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("ZhiBan 排班引擎 v%s\n", Version)
		fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "配置加载失败:", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	workers, err := loadWorkers(*inputPath)
	if err != nil {
		logger.WithError(err).Msg("值班员名单加载失败")
		os.Exit(1)
	}

	env, err := model.NewEnvironment(workers, *template)
	if err != nil {
		logger.WithError(err).Msg("排班环境构建失败")
		os.Exit(1)
	}

	logger.Info().
		Str("version", Version).
		Str("template", *template).
		Str("algorithm", *algorithm).
		Int("workers", env.NumWorkers()).
		Int("slots", env.NumSlots()).
		Msg("排班引擎启动")

	// Ctrl-C 中断时返回当前最优解
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Solver.Timeout)
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn().Msg("收到中断信号，返回当前最优解")
		cancel()
	}()

	weights := constraint.DefaultWeights()
	runSeed := *seed
	if runSeed == 0 {
		runSeed = cfg.Solver.Seed
	}

	if *algorithm == "compare" {
		runCompare(ctx, env, cfg, weights, runSeed, *jsonOut)
		return
	}

	sv, err := buildSolver(*algorithm, env, cfg, weights, runSeed)
	if err != nil {
		logger.WithError(err).Msg("求解器创建失败")
		os.Exit(1)
	}

	result, err := sv.Solve(ctx)
	if err != nil {
		logger.WithError(err).Msg("求解失败")
		os.Exit(1)
	}

	report, err := validator.Check(env, result.Best, weights)
	if err != nil {
		logger.WithError(err).Msg("验收失败")
		os.Exit(1)
	}

	if *jsonOut {
		printJSON(map[string]interface{}{
			"result":   result,
			"report":   report,
			"fairness": stats.NewFairnessAnalyzer(env).Analyze(result.Best),
		})
		return
	}

	printRoster(env, result.Best)
	printSummary(env, result, report, weights)
}

// buildSolver 按名称创建求解器，配置来自环境变量
func buildSolver(name string, env *model.Environment, cfg *config.Config, w constraint.Weights, seed int64) (solver.Solver, error) {
	switch name {
	case "csp":
		c := solver.CSPConfig{
			MaxIterations: cfg.CSP.MaxIterations,
			MaxTime:       cfg.CSP.MaxTime,
			Stagnation:    cfg.CSP.Stagnation,
			AcceptWorse:   cfg.CSP.AcceptWorse,
			Seed:          seed,
			Weights:       w,
		}
		return solver.NewCSP(env, c)
	case "genetic":
		c := solver.GeneticConfig{
			PopulationSize: cfg.Genetic.PopulationSize,
			Generations:    cfg.Genetic.Generations,
			CrossoverRate:  cfg.Genetic.CrossoverRate,
			MutationRate:   cfg.Genetic.MutationRate,
			ElitismCount:   cfg.Genetic.ElitismCount,
			TournamentSize: cfg.Genetic.TournamentSize,
			Parallelism:    cfg.Solver.Parallelism,
			Seed:           seed,
			Weights:        w,
		}
		return solver.NewGenetic(env, c)
	case "annealing":
		c := solver.AnnealingConfig{
			InitialTemp:       cfg.Annealing.InitialTemp,
			FinalTemp:         cfg.Annealing.FinalTemp,
			CoolingRate:       cfg.Annealing.CoolingRate,
			IterationsPerTemp: cfg.Annealing.IterationsPerTemp,
			Seed:              seed,
			Weights:           w,
		}
		return solver.NewAnnealing(env, c)
	default:
		return nil, fmt.Errorf("未知算法 %q", name)
	}
}

// runCompare 并发运行三种算法并打印对比排名
func runCompare(ctx context.Context, env *model.Environment, cfg *config.Config, w constraint.Weights, seed int64, jsonOut bool) {
	ccfg := solver.DefaultCompareConfig()
	ccfg.CSP.Seed = seed
	ccfg.Genetic.Seed = seed
	ccfg.Genetic.Parallelism = cfg.Solver.Parallelism
	ccfg.Annealing.Seed = seed
	ccfg.Weights = w
	ccfg.CSP.Weights = w
	ccfg.Genetic.Weights = w
	ccfg.Annealing.Weights = w

	cmp, err := solver.Compare(ctx, env, ccfg)
	if err != nil {
		logger.WithError(err).Msg("对比运行失败")
		os.Exit(1)
	}

	if jsonOut {
		printJSON(cmp)
		return
	}

	fmt.Println("=== 算法对比 ===")
	for i, r := range cmp.Outcomes {
		fmt.Printf("%d. %-16s 罚分 %.1f  耗时 %s\n", i+1, r.Algorithm, r.Penalty, r.Stats.Elapsed.Round(time.Millisecond))
	}
	fmt.Println()
	printRoster(env, cmp.Winner.Best)
	printSummary(env, cmp.Winner, cmp.Report, ccfg.Weights)
}

// loadWorkers 从JSON文件加载值班员，文件缺省时使用内置示例名单
func loadWorkers(path string) ([]model.Worker, error) {
	if path == "" {
		return model.ParseWorkers(sampleRoster())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []model.WorkerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return model.ParseWorkers(records)
}

// sampleRoster 内置示例名单：一支典型的帮助台学生团队
func sampleRoster() []model.WorkerRecord {
	return []model.WorkerRecord{
		{ID: 1, Name: "张三", Position: "tier 1", DesiredHours: 16},
		{ID: 2, Name: "李四", Position: "tier 1", IsCommuter: true, DesiredHours: 15,
			Busy: []model.BusyRecord{{Day: 0, Start: 10, End: 12}, {Day: 2, Start: 10, End: 12}}},
		{ID: 3, Name: "王五", Position: "tier 2", DesiredHours: 18,
			Busy: []model.BusyRecord{{Day: 1, Start: 13, End: 15}, {Day: 3, Start: 13, End: 15}}},
		{ID: 4, Name: "赵六", Position: "tier 2", IsCommuter: true, DesiredHours: 15},
		{ID: 5, Name: "孙七", Position: "tier 3", DesiredHours: 16,
			Busy: []model.BusyRecord{{Day: 4, Start: 8, End: 10}}},
		{ID: 6, Name: "周八", Position: "tier 1", DesiredHours: 14,
			Busy: []model.BusyRecord{{Day: 0, Start: 14, End: 16}, {Day: 2, Start: 14, End: 16}}},
		{ID: 7, Name: "吴九", Position: "manager", DesiredHours: 15},
		{ID: 8, Name: "郑十", Position: "tier 1", DesiredHours: 16,
			Busy: []model.BusyRecord{{Day: 1, Start: 9, End: 11}}},
	}
}

// printRoster 按天打印排班矩阵
func printRoster(env *model.Environment, s model.Schedule) {
	matrix := env.Matrix(s)

	fmt.Println("=== 排班表 ===")
	for day := 0; day < env.Days(); day++ {
		hours := dayHourRange(env, day)
		if len(hours) == 0 {
			continue
		}
		name := fmt.Sprintf("第%d天", day)
		if day < len(weekdays) {
			name = weekdays[day]
		}
		fmt.Printf("\n%s\n", name)
		fmt.Println("时间    窗口        远程")
		for _, h := range hours {
			fmt.Printf("%02d:00   %-10s  %-10s\n",
				h,
				workerName(env, matrix[day][h][0]),
				workerName(env, matrix[day][h][1]))
		}
	}
	fmt.Println()
}

// dayHourRange 返回某天实际生成槽位的小时列表
func dayHourRange(env *model.Environment, day int) []int {
	seen := make(map[int]bool)
	for _, gk := range env.GroupKeys() {
		if gk.Day != day {
			continue
		}
		for _, h := range env.GroupHours(gk) {
			seen[h] = true
		}
	}
	hours := make([]int, 0, len(seen))
	for h := range seen {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}

func workerName(env *model.Environment, id int) string {
	if id == model.Unassigned {
		return "--"
	}
	if w, ok := env.WorkerByID(id); ok {
		return w.Name
	}
	return fmt.Sprintf("#%d", id)
}

// printSummary 打印验收结论与工时统计
func printSummary(env *model.Environment, r *solver.Result, report *validator.Report, w constraint.Weights) {
	fmt.Println("=== 验收结论 ===")
	fmt.Printf("算法: %s  罚分: %.1f  档位: %s  批准: %v\n",
		r.Algorithm, report.Penalty, report.Verdict, report.Approved)
	if report.CriticalCount > 0 {
		fmt.Printf("关键违规 %d 项\n", report.CriticalCount)
	}
	for _, c := range report.Conflicts {
		fmt.Println("  冲突:", c.Message)
	}

	fairness := stats.NewFairnessAnalyzer(env).Analyze(r.Best)
	fmt.Println("\n=== 工时统计 ===")
	for _, st := range fairness.WorkerStats {
		fmt.Printf("%-6s %2d小时 (期望 %.0f, 窗口 %d / 远程 %d)\n",
			st.WorkerName, st.TotalHours, st.DesiredHours, st.WindowHours, st.RemoteHours)
	}
	fmt.Printf("公平性评分 %.1f  基尼系数 %.3f\n",
		fairness.OverallFairnessScore, fairness.WorkloadGini)

	coverage := stats.NewCoverageAnalyzer(env, w.Coverage)
	fmt.Println("\n" + coverage.Summary(coverage.Analyze(r.Best)))
	fmt.Printf("\n求解耗时 %s，迭代 %d 次\n", r.Stats.Elapsed.Round(time.Millisecond), r.Stats.Iterations)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.WithError(err).Msg("JSON输出失败")
		os.Exit(1)
	}
}
