package solver

import (
	"math/rand"
	"testing"

	"github.com/zhiban/zhiban/pkg/model"
)

func testNeighborhood(t *testing.T) (*neighborhood, *model.Environment) {
	env := testEnv(t)
	return &neighborhood{env: env, w: testWeights(), rng: rand.New(rand.NewSource(3))}, env
}

func TestMoveKind_String(t *testing.T) {
	tests := []struct {
		kind MoveKind
		want string
	}{
		{MoveSwap, "swap"},
		{MoveExtend, "extend"},
		{MoveShrink, "shrink"},
		{MoveReassign, "reassign"},
		{MoveFill, "fill"},
		{MoveKind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestNeighborhood_Swap(t *testing.T) {
	nb, env := testNeighborhood(t)

	// 空排班无从交换
	empty := model.NewSchedule(env.NumSlots())
	if nb.swap(empty) {
		t.Error("空排班不应发生交换")
	}

	// 两个槽位、两名互相可用的值班员：多次尝试总能交换成功
	s := model.NewSchedule(env.NumSlots())
	i := env.ReplicaSlots(0, 10, model.ShiftWindow)[0]
	j := env.ReplicaSlots(1, 11, model.ShiftRemote)[0]
	s[i], s[j] = 1, 2

	swapped := false
	for try := 0; try < 50 && !swapped; try++ {
		c := s.Clone()
		if nb.swap(c) {
			swapped = true
			if c[i] != 2 || c[j] != 1 {
				t.Errorf("交换后 = (%d,%d), want (2,1)", c[i], c[j])
			}
		}
	}
	if !swapped {
		t.Error("可行交换始终未发生")
	}
}

func TestNeighborhood_SwapRespectsAvailability(t *testing.T) {
	nb, env := testNeighborhood(t)

	// 赵六是通勤学生，8点的槽位不能换给他
	s := model.NewSchedule(env.NumSlots())
	i := env.ReplicaSlots(0, 8, model.ShiftWindow)[0]
	j := env.ReplicaSlots(1, 10, model.ShiftRemote)[0]
	s[i], s[j] = 1, 4

	for try := 0; try < 50; try++ {
		c := s.Clone()
		if nb.swap(c) {
			t.Fatal("不可用的交换不应发生")
		}
	}
}

func TestNeighborhood_Extend(t *testing.T) {
	nb, env := testNeighborhood(t)

	s := model.NewSchedule(env.NumSlots())
	s[env.ReplicaSlots(0, 10, model.ShiftWindow)[0]] = 1

	c := s.Clone()
	if !nb.extend(c, true) {
		t.Fatal("相邻空槽存在时延伸应成功")
	}
	// 延伸落在 9 点或 11 点的同类型副本上
	grew := c[env.ReplicaSlots(0, 9, model.ShiftWindow)[0]] == 1 ||
		c[env.ReplicaSlots(0, 11, model.ShiftWindow)[0]] == 1
	if !grew {
		t.Error("延伸未落在相邻小时")
	}
}

func TestNeighborhood_ExtendHonorsCap(t *testing.T) {
	nb, env := testNeighborhood(t)

	// 值班员1已排满上限工时
	s := model.NewSchedule(env.NumSlots())
	filled := 0
	for _, gk := range env.GroupKeys() {
		for _, idx := range env.GroupSlots(gk) {
			if filled < nb.w.MaxHours {
				s[idx] = 1
				filled++
			}
		}
	}

	for try := 0; try < 50; try++ {
		if nb.extend(s.Clone(), true) {
			t.Fatal("达到工时上限后不应延伸")
		}
	}
	// 退火变体不设上限
	grew := false
	for try := 0; try < 50 && !grew; try++ {
		grew = nb.extend(s.Clone(), false)
	}
	if !grew {
		t.Error("无上限变体应可延伸")
	}
}

func TestNeighborhood_Shrink(t *testing.T) {
	nb, env := testNeighborhood(t)

	// 恰好最短连班：不可收缩
	s := model.NewSchedule(env.NumSlots())
	s[env.ReplicaSlots(0, 10, model.ShiftWindow)[0]] = 1
	s[env.ReplicaSlots(0, 11, model.ShiftWindow)[0]] = 1
	if nb.shrink(s.Clone()) {
		t.Error("持有槽数不超过最短连班时不应收缩")
	}

	// 三小时连班：收缩去掉一个槽位
	s[env.ReplicaSlots(0, 12, model.ShiftWindow)[0]] = 1
	c := s.Clone()
	if !nb.shrink(c) {
		t.Fatal("超过最短连班时收缩应成功")
	}
	if c.AssignedCount() != s.AssignedCount()-1 {
		t.Errorf("收缩后槽数 = %d, want %d", c.AssignedCount(), s.AssignedCount()-1)
	}
}

func TestNeighborhood_ReassignRun(t *testing.T) {
	nb, env := testNeighborhood(t)

	// 值班员1持有周一窗口组 10-11 的连班
	s := model.NewSchedule(env.NumSlots())
	i := env.ReplicaSlots(0, 10, model.ShiftWindow)[0]
	j := env.ReplicaSlots(0, 11, model.ShiftWindow)[0]
	s[i], s[j] = 1, 1

	c := s.Clone()
	if !nb.reassignRun(c) {
		t.Fatal("有其他可用值班员时整组移交应成功")
	}
	if c[i] == 1 || c[j] == 1 || c[i] != c[j] {
		t.Errorf("移交后 = (%d,%d), 应换成同一名新值班员", c[i], c[j])
	}
}

func TestNeighborhood_ReassignSlot(t *testing.T) {
	nb, env := testNeighborhood(t)

	s := model.NewSchedule(env.NumSlots())
	idx := env.ReplicaSlots(0, 10, model.ShiftWindow)[0]
	s[idx] = 1

	// 多次执行：被改的槽位总是换成可用值班员或保持合法
	for try := 0; try < 30; try++ {
		c := s.Clone()
		if !nb.reassignSlot(c, false) {
			continue
		}
		for i, id := range c {
			if id == model.Unassigned {
				continue
			}
			slot := env.Slot(i)
			w, ok := env.WorkerByID(id)
			if !ok || !w.IsAvailable(slot.Day, slot.Hour) {
				t.Fatalf("槽 %d 被换成不可用的值班员 %d", i, id)
			}
		}
	}
}

func TestNeighborhood_FillSpan(t *testing.T) {
	nb, env := testNeighborhood(t)

	s := model.NewSchedule(env.NumSlots())
	c := s.Clone()
	if !nb.fillSpan(c, localFillSpanMax, true, true, false) {
		t.Fatal("空排班填空应成功")
	}
	if c.AssignedCount() == 0 {
		t.Fatal("填空后应有新增分配")
	}

	// 新增的分配全部可用，且不超过单个值班员的工时上限
	for i, id := range c {
		if id == model.Unassigned {
			continue
		}
		slot := env.Slot(i)
		w, ok := env.WorkerByID(id)
		if !ok || !w.IsAvailable(slot.Day, slot.Hour) {
			t.Errorf("槽 %d 填入了不可用的值班员 %d", i, id)
		}
	}
	for id, h := range c.WorkerHours() {
		if h > nb.w.MaxHours {
			t.Errorf("值班员 %d 填空后工时 %d 超过上限", id, h)
		}
	}
}

func TestNeighborhood_FillSpanFull(t *testing.T) {
	nb, env := testNeighborhood(t)

	// 全部占满后无空可填
	s := model.NewSchedule(env.NumSlots())
	for i := range s {
		s[i] = 1
	}
	if nb.fillSpan(s.Clone(), localFillSpanMax, true, true, false) {
		t.Error("无空槽时填空不应成功")
	}
}
