package solver

import (
	"testing"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// testEnv 两天、每天 8:00-14:00、窗口与远程各1个副本的小环境
func testEnv(t *testing.T) *model.Environment {
	t.Helper()
	workers := []model.Worker{
		{ID: 1, Name: "张三", Tier: 1, DesiredHours: 6},
		{ID: 2, Name: "李四", Tier: 2, DesiredHours: 6},
		{ID: 3, Name: "王五", Tier: 3, DesiredHours: 6},
		{ID: 4, Name: "赵六", Tier: 1, DesiredHours: 6, IsCommuter: true},
	}
	cfg := model.SlotConfig{
		Hours: map[int]model.DayHours{
			0: {Start: 8, End: 14},
			1: {Start: 8, End: 14},
		},
		Coverage: map[model.ShiftType]model.CoverageRule{
			model.ShiftWindow: {Min: 1, Max: 1},
			model.ShiftRemote: {Min: 1, Max: 1},
		},
	}
	env, err := model.NewEnvironmentWithConfig(workers, cfg)
	if err != nil {
		t.Fatalf("NewEnvironmentWithConfig() error = %v", err)
	}
	return env
}

// testWeights 与 testEnv 匹配的权重
func testWeights() constraint.Weights {
	w := constraint.DefaultWeights()
	w.Coverage = map[model.ShiftType]model.CoverageRule{
		model.ShiftWindow: {Min: 1, Max: 1},
		model.ShiftRemote: {Min: 1, Max: 1},
	}
	w.MinHours = 4
	w.MaxHours = 8
	return w
}

// assertNonIncreasing 检查最优罚分轨迹单调不增
func assertNonIncreasing(t *testing.T, trace []float64) {
	t.Helper()
	if len(trace) == 0 {
		t.Fatal("轨迹为空")
	}
	for i := 1; i < len(trace); i++ {
		if trace[i] > trace[i-1] {
			t.Fatalf("轨迹在 %d 处上升: %v -> %v", i, trace[i-1], trace[i])
		}
	}
}

// assertValidResult 检查求解结果的通用不变式
func assertValidResult(t *testing.T, env *model.Environment, r *Result) {
	t.Helper()
	if r == nil {
		t.Fatal("结果为空")
	}
	if r.RunID == "" {
		t.Error("缺少运行ID")
	}
	if len(r.Best) != env.NumSlots() {
		t.Errorf("排班向量长度 = %d, want %d", len(r.Best), env.NumSlots())
	}
	if r.Penalty < 0 {
		t.Errorf("罚分为负: %v", r.Penalty)
	}
	if r.Breakdown == nil {
		t.Error("缺少违规统计")
	}
	if len(r.Trace) > 0 && r.Trace[len(r.Trace)-1] != r.Penalty {
		t.Errorf("轨迹末值 %v 与最终罚分 %v 不一致", r.Trace[len(r.Trace)-1], r.Penalty)
	}
	assertNonIncreasing(t, r.Trace)
}
