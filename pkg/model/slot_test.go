package model

import (
	"testing"
)

func TestGenerateSlots_FinalsTemplate(t *testing.T) {
	cfg, err := TemplateConfig(TemplateFinals)
	if err != nil {
		t.Fatalf("TemplateConfig() error = %v", err)
	}

	slots, err := GenerateSlots(cfg)
	if err != nil {
		t.Fatalf("GenerateSlots() error = %v", err)
	}

	// 周一至周四 8-20 点各12小时，周五 8-17 点9小时，周六 10-18 点8小时，每小时6个副本
	wantTotal := (4*12 + 9 + 8) * 6
	if len(slots) != wantTotal {
		t.Errorf("总槽数 = %d, want %d", len(slots), wantTotal)
	}

	// 7:30 开始向上取整到 8 点
	first := slots[0]
	if first.Day != 0 || first.Hour != 8 || first.Type != ShiftWindow {
		t.Errorf("首个槽 = %+v, want day=0 hour=8 type=Window", first)
	}

	// 每小时先2个窗口副本再4个远程副本
	for i, wantType := range []ShiftType{ShiftWindow, ShiftWindow, ShiftRemote, ShiftRemote, ShiftRemote, ShiftRemote} {
		if slots[i].Type != wantType {
			t.Errorf("槽 %d 类型 = %s, want %s", i, slots[i].Type, wantType)
		}
		if slots[i].Hour != 8 {
			t.Errorf("槽 %d 小时 = %d, want 8", i, slots[i].Hour)
		}
	}

	// 周六从 10 点整开始
	for _, s := range slots {
		if s.Day == 5 && s.Hour < 10 {
			t.Errorf("周六出现 %d 点的槽", s.Hour)
		}
		if s.Day == 4 && s.Hour >= 17 {
			t.Errorf("周五出现 %d 点的槽", s.Hour)
		}
	}
}

func TestGenerateSlots_DayOrder(t *testing.T) {
	cfg, _ := TemplateConfig(TemplateRegular)
	slots, err := GenerateSlots(cfg)
	if err != nil {
		t.Fatalf("GenerateSlots() error = %v", err)
	}

	// 日期升序、同日内小时升序
	for i := 1; i < len(slots); i++ {
		prev, cur := slots[i-1], slots[i]
		if cur.Day < prev.Day {
			t.Fatalf("槽 %d 日期倒序: %d 在 %d 之后", i, cur.Day, prev.Day)
		}
		if cur.Day == prev.Day && cur.Hour < prev.Hour {
			t.Fatalf("槽 %d 小时倒序: %d 在 %d 之后", i, cur.Hour, prev.Hour)
		}
	}
}

func TestTemplateConfig_Unknown(t *testing.T) {
	_, err := TemplateConfig("holiday")
	if err == nil {
		t.Fatal("未知模板应返回错误")
	}
}

func TestSlotConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SlotConfig
		wantErr bool
	}{
		{
			name:    "默认模板配置合法",
			cfg:     SlotConfig{Hours: weekHours(), Coverage: DefaultCoverage()},
			wantErr: false,
		},
		{
			name:    "营业时段为空",
			cfg:     SlotConfig{Coverage: DefaultCoverage()},
			wantErr: true,
		},
		{
			name: "开始不早于结束",
			cfg: SlotConfig{
				Hours:    map[int]DayHours{0: {Start: 18, End: 10}},
				Coverage: DefaultCoverage(),
			},
			wantErr: true,
		},
		{
			name: "覆盖区间颠倒",
			cfg: SlotConfig{
				Hours:    map[int]DayHours{0: {Start: 8, End: 18}},
				Coverage: map[ShiftType]CoverageRule{ShiftWindow: {Min: 3, Max: 2}},
			},
			wantErr: true,
		},
		{
			name: "日期索引为负",
			cfg: SlotConfig{
				Hours:    map[int]DayHours{-1: {Start: 8, End: 18}},
				Coverage: DefaultCoverage(),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
