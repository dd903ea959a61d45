// Package validator 提供排班方案的结构化验收结论
package validator

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/zhiban/zhiban/pkg/model"
	"github.com/zhiban/zhiban/pkg/scheduler/constraint"
)

// Verdict 验收档位
type Verdict string

const (
	VerdictPerfect    Verdict = "perfect"    // 罚分为0，完全满足约束
	VerdictExcellent  Verdict = "excellent"  // 罚分低于优秀阈值
	VerdictAcceptable Verdict = "acceptable" // 罚分低于可用阈值
	VerdictPoor       Verdict = "poor"       // 其余情况
)

// 验收阈值
const (
	excellentThreshold  = 500
	acceptableThreshold = 1500
)

// criticalKinds 关键违规类别，存在任何一项即不可批准
var criticalKinds = []constraint.ViolationKind{
	constraint.KindCoverage,
	constraint.KindConflict,
	constraint.KindMaxHours,
	constraint.KindMinHours,
}

// Conflict 排到不可用时段的具体分配
type Conflict struct {
	SlotIndex  int             `json:"slot_index"`
	Day        int             `json:"day"`
	Hour       int             `json:"hour"`
	Type       model.ShiftType `json:"type"`
	WorkerID   int             `json:"worker_id"`
	WorkerName string          `json:"worker_name"`
	Message    string          `json:"message"`
}

// Report 验收报告
type Report struct {
	Penalty   float64              `json:"penalty"`
	Breakdown constraint.Breakdown `json:"breakdown"`
	Verdict   Verdict              `json:"verdict"`

	// Approved 达到优秀档位且关键类别全部为零
	Approved bool `json:"approved"`

	// CriticalCount 关键类别的违规次数之和
	CriticalCount int `json:"critical_count"`

	// Conflicts 可用性冲突明细
	Conflicts []Conflict `json:"conflicts,omitempty"`
}

// Check 评估排班并给出验收结论
func Check(env *model.Environment, s model.Schedule, weights constraint.Weights) (*Report, error) {
	if err := env.ValidateSchedule(s); err != nil {
		return nil, err
	}

	penalty, breakdown := constraint.NewEvaluator(env, weights).Evaluate(s)

	critical := lo.SumBy(criticalKinds, func(k constraint.ViolationKind) int {
		return breakdown.Count(k)
	})

	verdict := VerdictPoor
	switch {
	case penalty == 0:
		verdict = VerdictPerfect
	case penalty < excellentThreshold:
		verdict = VerdictExcellent
	case penalty < acceptableThreshold:
		verdict = VerdictAcceptable
	}

	return &Report{
		Penalty:       penalty,
		Breakdown:     breakdown,
		Verdict:       verdict,
		Approved:      (verdict == VerdictPerfect || verdict == VerdictExcellent) && critical == 0,
		CriticalCount: critical,
		Conflicts:     collectConflicts(env, s),
	}, nil
}

// collectConflicts 列出所有排到不可用时段的分配
func collectConflicts(env *model.Environment, s model.Schedule) []Conflict {
	var conflicts []Conflict
	for i, id := range s {
		if id == model.Unassigned {
			continue
		}
		slot := env.Slot(i)
		worker, known := env.WorkerByID(id)
		if !known || worker.IsAvailable(slot.Day, slot.Hour) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			SlotIndex:  i,
			Day:        slot.Day,
			Hour:       slot.Hour,
			Type:       slot.Type,
			WorkerID:   id,
			WorkerName: worker.Name,
			Message:    fmt.Sprintf("值班员 %s 在 第%d天 %d:00 不可用", worker.Name, slot.Day, slot.Hour),
		})
	}
	return conflicts
}
