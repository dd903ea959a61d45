// Package model 定义排班引擎的核心数据模型
package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/zhiban/zhiban/pkg/errors"
)

// WorkerRecord 外部导入的原始值班员记录
type WorkerRecord struct {
	ID           int          `json:"id" validate:"min=0"`
	Name         string       `json:"name" validate:"required"`
	Position     string       `json:"position,omitempty"`
	Tier         int          `json:"tier,omitempty" validate:"omitempty,min=1,max=4"`
	IsCommuter   bool         `json:"is_commuter"`
	DesiredHours float64      `json:"desired_hours" validate:"min=0"`
	Busy         []BusyRecord `json:"busy,omitempty" validate:"dive"`
}

// BusyRecord 原始不可用时段，小时允许半点传入，导入时要求整点
type BusyRecord struct {
	Day   int     `json:"day" validate:"min=0,max=5"`
	Start float64 `json:"start" validate:"min=0,max=24"`
	End   float64 `json:"end" validate:"min=0,max=24"`
}

// defaultDesiredHours 期望周工时缺省值
const defaultDesiredHours = 15

// ParseTier 将岗位名称转换为层级，无法识别时为 1
func ParseTier(position string) int {
	switch strings.ToLower(strings.TrimSpace(position)) {
	case "tier 1":
		return 1
	case "tier 2":
		return 2
	case "tier 3", "inventory", "inventory tech":
		return 3
	case "tier 4", "manager":
		return 4
	default:
		return 1
	}
}

// ParseWorkers 校验原始记录并转换为值班员列表。
// 拒绝：重复ID、必填字段缺失、层级越界、日期越界、负数或非整点小时、起止颠倒。
func ParseWorkers(records []WorkerRecord) ([]Worker, error) {
	if len(records) == 0 {
		return nil, errors.InvalidInput("workers", "记录列表为空")
	}

	v := validator.New()
	ve := &errors.ValidationErrors{}

	ids := lo.Map(records, func(r WorkerRecord, _ int) int { return r.ID })
	for _, dup := range lo.FindDuplicates(ids) {
		ve.Add("id", fmt.Sprintf("值班员ID %d 重复", dup))
	}

	workers := make([]Worker, 0, len(records))
	for i, rec := range records {
		prefix := fmt.Sprintf("workers[%d]", i)

		if err := v.Struct(rec); err != nil {
			if fieldErrs, isFieldErrs := err.(validator.ValidationErrors); isFieldErrs {
				for _, fe := range fieldErrs {
					ve.Add(prefix+"."+fe.Field(), fmt.Sprintf("违反规则 %s", fe.Tag()))
				}
			} else {
				ve.Add(prefix, err.Error())
			}
			continue
		}

		busy := make([]BusyInterval, 0, len(rec.Busy))
		ok := true
		for j, b := range rec.Busy {
			field := fmt.Sprintf("%s.busy[%d]", prefix, j)
			if b.Start != math.Trunc(b.Start) || b.End != math.Trunc(b.End) {
				ve.Add(field, "小时必须为整点")
				ok = false
				continue
			}
			if b.Start >= b.End {
				ve.Add(field, "开始时间不早于结束时间")
				ok = false
				continue
			}
			busy = append(busy, BusyInterval{Day: b.Day, Start: int(b.Start), End: int(b.End)})
		}
		if !ok {
			continue
		}

		tier := rec.Tier
		if tier == 0 {
			tier = ParseTier(rec.Position)
		}
		desired := rec.DesiredHours
		if desired == 0 {
			desired = defaultDesiredHours
		}

		workers = append(workers, Worker{
			ID:           rec.ID,
			Name:         rec.Name,
			Tier:         tier,
			IsCommuter:   rec.IsCommuter,
			DesiredHours: desired,
			BusyTimes:    busy,
		})
	}

	if ve.HasErrors() {
		return nil, ve
	}
	return workers, nil
}
