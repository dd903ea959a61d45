// Package solver 提供排班求解算法
package solver

import (
	"context"
	"math"
	"sync"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// populationEvaluator 种群评估器。
// 评估是纯函数且不消耗求解器的随机数，并行与否不改变任何结果。
type populationEvaluator struct {
	workers int
	eval    *constraint.Evaluator
}

// newPopulationEvaluator 创建种群评估器，workers 为 0 或 1 时串行
func newPopulationEvaluator(workers int, eval *constraint.Evaluator) *populationEvaluator {
	return &populationEvaluator{workers: workers, eval: eval}
}

// evalJob 单个评估任务
type evalJob struct {
	index    int
	schedule model.Schedule
}

// evalResult 单个评估结果
type evalResult struct {
	index   int
	penalty float64
}

// EvaluateAll 评估整个种群，结果顺序与输入一致
func (p *populationEvaluator) EvaluateAll(ctx context.Context, population []model.Schedule) []float64 {
	fitness := make([]float64, len(population))
	if p.workers <= 1 || len(population) < 2 {
		for i, s := range population {
			fitness[i], _ = p.eval.Evaluate(s)
		}
		return fitness
	}

	jobs := make(chan evalJob, len(population))
	results := make(chan evalResult, len(population))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					// 被取消的个体按无穷大占位，不会被当作更优解
					results <- evalResult{index: job.index, penalty: math.Inf(1)}
				default:
					penalty, _ := p.eval.Evaluate(job.schedule)
					results <- evalResult{index: job.index, penalty: penalty}
				}
			}
		}()
	}

	go func() {
		for i, s := range population {
			jobs <- evalJob{index: i, schedule: s}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		fitness[r.index] = r.penalty
	}
	return fitness
}
