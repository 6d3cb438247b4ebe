package vehicle

import (
	"math"

	"github.com/tsinghua-fib-lab/hcca-sim/entity"
)

// minDenominator 除数下限，避免除零
const minDenominator = 0.001

// slowdownProbability 随机慢化概率
// 功能：根据整条车道的状态计算本车的随机慢化概率
// 参数：lane-车道，pos-位置，v-本车，frontSpeed-前车速度（无前车时为本车速度）
// 返回：慢化概率pn，不截断到[0,1]，大于1时必然触发慢化
// 算法说明：
// 1. 相对速度差影响：λ1 = 车辆数 / max(速度和, 0.001)，f = λ1·exp(-λ1·(v - v_front))
// 2. 安全车距影响：λ2 = 车辆数 / max(车距和, 0.001)，g = λ2·exp(-λ2·(gap - max_speed))
// 3. pn = f·g
// 说明：stca与nasch模型使用固定慢化概率p_slow
func (c *controller) slowdownProbability(lane, pos int, v entity.Vehicle, frontSpeed int) float64 {
	if !c.model.AdaptiveSlowdown() {
		return c.model.PSlow
	}
	s := c.snap.LaneStats(lane)
	count := float64(s.Count)

	// 计算相对速度差影响
	lbd1 := count / math.Max(float64(s.SpeedSum), minDenominator)
	f := lbd1 * math.Exp(-lbd1*float64(v.Speed-frontSpeed))

	// 计算安全车距影响
	lbd2 := count / math.Max(float64(s.GapSum), minDenominator)
	g := lbd2 * math.Exp(-lbd2*float64(c.snap.ForwardGap(lane, pos)-c.model.MaxSpeed))

	return f * g
}
