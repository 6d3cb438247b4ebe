package vehicle

import (
	"math"

	"github.com/tsinghua-fib-lab/hcca-sim/utils/config"
)

// ProspectInput 前景理论评价所需的本车状态
type ProspectInput struct {
	Gap         int // 本车道前向车距
	AdjacentGap int // 旁道前向车距
	Speed       int // 本车速度
	A           int // 加速度
	MaxSpeed    int // 最大车速
}

// Evaluator 前景理论效用评价器
// 功能：比较变道与不变道两种选择的前景值
// 说明：概率权重只依赖固定参数，构造时预先计算
type Evaluator struct {
	u      config.Utility
	wPlus  float64 // 收益概率权重
	wMinus float64 // 损失概率权重
}

// NewEvaluator 根据前景理论参数创建评价器
func NewEvaluator(u config.Utility) Evaluator {
	return Evaluator{
		u:      u,
		wPlus:  JamFeeling(u.Chi, u.PJam),
		wMinus: JamFeeling(u.Delta, u.PJam),
	}
}

// JamFeeling 拥堵感知概率
// w(p) = p^d / (p^d + (1-p)^d)^(1/d)
func JamFeeling(d, p float64) float64 {
	pd := math.Pow(p, d)
	return pd / math.Pow(pd+math.Pow(1-p, d), 1/d)
}

// Value 价值函数
// 参数：t-预计行驶时间，k-心理预期
// 返回：收益 k-t >= 0 时为 t^α，否则为 -λ·(t-k)^β
func (e Evaluator) Value(t, k float64) float64 {
	if y := k - t; y < 0 {
		return -e.u.Lambda * math.Pow(-y, e.u.Beta)
	}
	return math.Pow(t, e.u.Alpha)
}

// Evaluate 前景值计算
// 功能：计算变道（ev1）与不变道（ev2）的前景值
// 参数：in-本车状态
// 返回：ev1-变道前景值，ev2-不变道前景值；ev1 > ev2 时变道更有利
// 算法说明：
// 1. 心理预期 k = gap / max_speed
// 2. 变道后行驶时间 t1 = 旁道车距 / max(min(v+a, max_speed), 0.001)
// 3. 不变道行驶时间 t2 = gap / max(v, 0.001)
// 4. ev = w⁺·v + w⁻·v，两个权重作用于同一个价值
func (e Evaluator) Evaluate(in ProspectInput) (ev1, ev2 float64) {
	gap := float64(in.Gap)
	// 心理预期
	k := gap / float64(in.MaxSpeed)
	// 换道后行驶时间
	t1 := float64(in.AdjacentGap) / math.Max(float64(min(in.Speed+in.A, in.MaxSpeed)), minDenominator)
	v1 := e.Value(t1, k)
	// 不换道行驶时间
	t2 := gap / math.Max(float64(in.Speed), minDenominator)
	v2 := e.Value(t2, k)

	ev1 = e.wPlus*v1 + e.wMinus*v1
	ev2 = e.wPlus*v2 + e.wMinus*v2
	return
}
