// Package constraint 定义排班评分的约束权重与评估器
package constraint

// ViolationKind 违规类别
type ViolationKind string

const (
	KindCoverage     ViolationKind = "coverage_violations"      // 覆盖人数不足或超员
	KindConflict     ViolationKind = "worker_conflicts"         // 排到不可用时段
	KindTierMismatch ViolationKind = "tier_mismatches"          // Tier 3-4 排窗口班
	KindMinHours     ViolationKind = "min_hour_violations"      // 周工时不足
	KindMaxHours     ViolationKind = "hour_violations"          // 周工时超限
	KindFairness     ViolationKind = "fairness_violations"      // 偏离期望工时
	KindMorning      ViolationKind = "morning_shift_violations" // 早班过多
	KindShiftLength  ViolationKind = "shift_length_violations"  // 连班过短或过长
)

// Kinds 返回全部违规类别，顺序固定
func Kinds() []ViolationKind {
	return []ViolationKind{
		KindCoverage,
		KindConflict,
		KindTierMismatch,
		KindMinHours,
		KindMaxHours,
		KindFairness,
		KindMorning,
		KindShiftLength,
	}
}

// Breakdown 按类别统计的违规次数
type Breakdown map[ViolationKind]int

// NewBreakdown 创建全零的违规统计
func NewBreakdown() Breakdown {
	b := make(Breakdown, len(Kinds()))
	for _, k := range Kinds() {
		b[k] = 0
	}
	return b
}

// Add 累加指定类别的违规次数
func (b Breakdown) Add(kind ViolationKind, n int) {
	b[kind] += n
}

// Count 返回指定类别的违规次数
func (b Breakdown) Count(kind ViolationKind) int {
	return b[kind]
}

// Total 返回全部类别的违规次数之和
func (b Breakdown) Total() int {
	total := 0
	for _, n := range b {
		total += n
	}
	return total
}

// IsClean 检查是否无任何违规
func (b Breakdown) IsClean() bool {
	return b.Total() == 0
}

// Clone 深拷贝违规统计
func (b Breakdown) Clone() Breakdown {
	c := make(Breakdown, len(b))
	for k, n := range b {
		c[k] = n
	}
	return c
}

// Equal 比较两份违规统计是否一致
func (b Breakdown) Equal(other Breakdown) bool {
	for _, k := range Kinds() {
		if b[k] != other[k] {
			return false
		}
	}
	return true
}
