package vehicle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/hcca-sim/entity"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/lattice"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/config"
)

// fakeRandom 按给定序列返回随机数，序列用完后重复最后一个值
type fakeRandom struct {
	draws  []float64
	n      int
	ranges [][2]int // IntRange的调用参数
}

func (r *fakeRandom) Float64() float64 {
	i := min(r.n, len(r.draws)-1)
	r.n++
	return r.draws[i]
}

// IntRange 记录参数并返回上界
func (r *fakeRandom) IntRange(lo, hi int) int {
	r.ranges = append(r.ranges, [2]int{lo, hi})
	return hi
}

func (r *fakeRandom) Shuffle(n int, swap func(i, j int)) {}

var _ entity.IRandom = (*fakeRandom)(nil)

func testModel(variant config.Variant, length int) config.Model {
	m := config.DefaultModel()
	m.Variant = variant
	m.Length = length
	return m
}

func newTestController(t *testing.T, m config.Model, rows []string) (*controller, *lattice.Lattice) {
	t.Helper()
	l := lattice.Parse(rows, entity.ProfileOther)
	require.Equal(t, m.Length, l.Length())
	return newController(lattice.NewAnalyzer(l), m, NewEvaluator(config.DefaultUtility())), l
}

func TestAnticipate(t *testing.T) {
	m := testModel(config.VariantHCCA, 10)
	c, l := newTestController(t, m, []string{
		"2..4......",
		"..........",
	})
	v, _ := l.Get(0, 0)
	vp, frontSpeed := c.anticipate(0, 0, v)
	// 前车速度4，前车的前向车距6，max_speed-1=4
	assert.Equal(t, 4, vp)
	assert.Equal(t, 4, frontSpeed)

	c, l = newTestController(t, m, []string{
		"2.........",
		"..........",
	})
	v, _ = l.Get(0, 0)
	vp, frontSpeed = c.anticipate(0, 0, v)
	assert.Equal(t, 0, vp)
	assert.Equal(t, 2, frontSpeed)

	// 前车紧跟着另一辆车
	c, l = newTestController(t, m, []string{
		"1.35......",
		"..........",
	})
	v, _ = l.Get(0, 0)
	vp, _ = c.anticipate(0, 0, v)
	assert.Equal(t, 0, vp)
}

func TestMove(t *testing.T) {
	m := testModel(config.VariantHCCA, 10)
	c, l := newTestController(t, m, []string{
		"3.........",
		"..........",
	})
	v, _ := l.Get(0, 0)

	mv := c.move(0, 0, v, 0, 0.01, 0.99)
	assert.False(t, mv.slowed)
	assert.Equal(t, 4, mv.vehicle.Speed)
	assert.Equal(t, 4, mv.pos)
	assert.Equal(t, entity.StageRunning, mv.vehicle.Stage)

	// 慢化：min(4-1, 1) = 1
	mv = c.move(0, 0, v, 0, 0.5, 0.1)
	assert.True(t, mv.slowed)
	assert.Equal(t, 1, mv.vehicle.Speed)
	assert.Equal(t, 1, mv.pos)
}

func TestMoveClampsToGap(t *testing.T) {
	m := testModel(config.VariantHCCA, 10)
	c, l := newTestController(t, m, []string{
		"5.3.......",
		"..........",
	})
	v, _ := l.Get(0, 0)
	mv := c.move(0, 0, v, 3, 0, 0.5)
	assert.Equal(t, 1, mv.vehicle.Speed)

	// 激进驾驶员可以额外利用前车的移动距离
	v.Profile = entity.ProfileRadical
	mv = c.move(0, 0, v, 3, 0, 0.5)
	assert.Equal(t, 4, mv.vehicle.Speed)
	assert.Equal(t, 4, mv.pos)

	// 非hcca模型不区分驾驶员类型
	c, _ = newTestController(t, testModel(config.VariantSTCA, 10), []string{
		"5.3.......",
		"..........",
	})
	mv = c.move(0, 0, v, 3, 0, 0.5)
	assert.Equal(t, 1, mv.vehicle.Speed)
}

func TestMoveSlowdownNeverNegative(t *testing.T) {
	m := testModel(config.VariantHCCA, 10)
	c, l := newTestController(t, m, []string{
		"22........",
		"..........",
	})
	v, _ := l.Get(0, 0)
	mv := c.move(0, 0, v, 0, 1, 0)
	assert.True(t, mv.slowed)
	assert.Equal(t, 0, mv.vehicle.Speed)
	assert.Equal(t, 0, mv.pos)
}

func TestSlowdownProbability(t *testing.T) {
	m := testModel(config.VariantHCCA, 10)
	c, l := newTestController(t, m, []string{
		"3.........",
		"..........",
	})
	v, _ := l.Get(0, 0)
	// λ1 = 1/3, Δv = 0, λ2 = 1/9, gap = 9
	want := (1.0 / 3) * ((1.0 / 9) * math.Exp(-(9.0-5)/9))
	assert.InDelta(t, want, c.slowdownProbability(0, 0, v, v.Speed), 1e-12)

	for _, variant := range []config.Variant{config.VariantSTCA, config.VariantNaSch} {
		c, _ := newTestController(t, testModel(variant, 10), []string{
			"3.........",
			"..........",
		})
		assert.Equal(t, m.PSlow, c.slowdownProbability(0, 0, v, v.Speed), variant)
	}
}

func TestSlowdownProbabilityZeroSpeedIsFinite(t *testing.T) {
	m := testModel(config.VariantHCCA, 10)
	c, l := newTestController(t, m, []string{
		"0.........",
		"..........",
	})
	v, _ := l.Get(0, 0)
	pn := c.slowdownProbability(0, 0, v, v.Speed)
	assert.False(t, math.IsNaN(pn))
	assert.False(t, math.IsInf(pn, 0))
	assert.Greater(t, pn, 1.0)
}

func TestPlanLaneChangeSafetyCondition(t *testing.T) {
	rows := []string{
		"1.1...........................",
		"........................1.....",
	}
	// 旁道后车距离恰好为max_speed
	c, l := newTestController(t, testModel(config.VariantHCCA, 30), rows)
	require.Equal(t, 5, l.AdjacentBackwardGap(0, 0))
	v, _ := l.Get(0, 0)
	chk := c.planLaneChange(0, 0, v, 0)
	assert.True(t, chk.s1)
	assert.True(t, chk.s2)
	assert.True(t, chk.s3)

	c, _ = newTestController(t, testModel(config.VariantSTCA, 30), rows)
	chk = c.planLaneChange(0, 0, v, 0)
	assert.True(t, chk.s1)
	assert.True(t, chk.s2)
	assert.False(t, chk.s3)
	assert.False(t, chk.ok())
}

func TestPlanLaneChangeSTCASkipsUtility(t *testing.T) {
	rows := []string{
		"1.1...........................",
		"..................1...........",
	}
	c, l := newTestController(t, testModel(config.VariantSTCA, 30), rows)
	v, _ := l.Get(0, 0)
	chk := c.planLaneChange(0, 0, v, 0)
	assert.True(t, chk.ok(), chk.String())
	assert.Zero(t, chk.ev1)
	assert.Zero(t, chk.ev2)

	// hcca模型下前景理论判断不变道更好
	c, _ = newTestController(t, testModel(config.VariantHCCA, 30), rows)
	chk = c.planLaneChange(0, 0, v, 0)
	assert.True(t, chk.s1 && chk.s2 && chk.s3)
	assert.False(t, chk.s4, chk.String())
}
