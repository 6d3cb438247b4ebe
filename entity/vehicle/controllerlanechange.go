package vehicle

import (
	"fmt"

	"github.com/tsinghua-fib-lab/hcca-sim/entity"
)

// laneChangeCheck 变道判断的各项条件
type laneChangeCheck struct {
	s1, s2   bool    // 换道动机：本车道受阻、旁道更通畅
	s3       bool    // 安全条件：旁道后车距离足够
	s4       bool    // 前景理论：变道前景值更高
	ev1, ev2 float64 // 变道与不变道的前景值
}

func (c laneChangeCheck) ok() bool {
	return c.s1 && c.s2 && c.s3 && c.s4
}

func (c laneChangeCheck) String() string {
	return fmt.Sprintf("s1=%v s2=%v s3=%v s4=%v ev1=%.4f ev2=%.4f", c.s1, c.s2, c.s3, c.s4, c.ev1, c.ev2)
}

// planLaneChange 变道判断
// 功能：判断正常运行阶段的车辆本步是否变道到相邻车道的同一位置
// 参数：lane-车道，pos-位置，v-本车，vp-最小安全车速
// 返回：各项条件的判断结果，全部满足时变道
// 算法说明：
// 1. s1 换道动机：gap < min(v+1, max_speed)（激进驾驶员再加vp）
// 2. s2 旁道更通畅：旁道车距 > min(v+1, max_speed)（激进驾驶员再加vp）
// 3. s3 安全条件：旁道后车距离 >= max_speed（stca模型为严格大于）
// 4. s4 前景理论：ev1 > ev2（stca模型不使用）
// 说明：前三项不满足时不再计算前景值；判断过程不抽取随机数
func (c *controller) planLaneChange(lane, pos int, v entity.Vehicle, vp int) (chk laneChangeCheck) {
	gap := c.snap.ForwardGap(lane, pos)
	adjGap := c.snap.AdjacentForwardGap(lane, pos)
	want := min(v.Speed+1, c.model.MaxSpeed)
	if c.radical(v) {
		want += vp
	}
	// 换道动机
	chk.s1 = gap < want
	chk.s2 = adjGap > want
	// 安全条件
	back := c.snap.AdjacentBackwardGap(lane, pos)
	if c.model.Heterogeneous() {
		chk.s3 = back >= c.model.MaxSpeed
	} else {
		chk.s3 = back > c.model.MaxSpeed
	}
	if !(chk.s1 && chk.s2 && chk.s3) {
		return
	}
	if !c.model.Heterogeneous() {
		chk.s4 = true
		return
	}
	// 前景理论
	chk.ev1, chk.ev2 = c.evaluator.Evaluate(ProspectInput{
		Gap:         gap,
		AdjacentGap: adjGap,
		Speed:       v.Speed,
		A:           c.model.A,
		MaxSpeed:    c.model.MaxSpeed,
	})
	chk.s4 = chk.ev1 > chk.ev2
	return
}
