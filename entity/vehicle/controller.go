package vehicle

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/hcca-sim/entity"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/config"
)

// controller 车辆控制器
// 功能：在一个仿真步的冻结快照上计算单辆车的变道决策与运动
// 说明：只读取快照，不持有随机数；随机数由调用方按遍历顺序抽取后传入
type controller struct {
	snap      entity.ISnapshot // 本步快照
	model     config.Model     // 模型参数
	evaluator Evaluator        // 前景理论效用评价
}

func newController(snap entity.ISnapshot, model config.Model, evaluator Evaluator) *controller {
	return &controller{
		snap:      snap,
		model:     model,
		evaluator: evaluator,
	}
}

// radical 按激进驾驶员规则处理
// 仅hcca模型区分驾驶员类型
func (c *controller) radical(v entity.Vehicle) bool {
	return v.Profile == entity.ProfileRadical && c.model.Heterogeneous()
}

// anticipate 最小安全车速计算
// 功能：根据前车状态估计本车可以额外利用的前车移动距离
// 参数：lane-车道，pos-位置，v-本车
// 返回：vp-最小安全车速，frontSpeed-前车速度（没有前车时为本车速度）
// 算法说明：
// 1. vp = min(max_speed-1, 前车速度, max(0, 前车的前向车距))
// 2. 车道上没有其他车辆时不存在前车，vp为0
func (c *controller) anticipate(lane, pos int, v entity.Vehicle) (vp, frontSpeed int) {
	fpos, front, ok := c.snap.Front(lane, pos)
	if !ok {
		return 0, v.Speed
	}
	vp = min(c.model.MaxSpeed-1, front.Speed, max(0, c.snap.ForwardGap(lane, fpos)))
	return vp, front.Speed
}

// motion 运动规则的计算结果
type motion struct {
	pos     int            // 新位置
	vehicle entity.Vehicle // 更新后的车辆
	slowed  bool           // 是否触发随机慢化
}

// move 运动规则
// 功能：对本步不变道的车辆执行加速、安全防护、随机慢化与位置更新
// 参数：lane-车道，pos-位置，v-本车（快照中的状态），vp-最小安全车速，pn-随机慢化概率，draw-[0,1)均匀随机数
// 返回：新位置与更新后的车辆
// 算法说明：
// 1. 阶段重置为正常运行
// 2. 加速：v = min(v+a, max_speed)
// 3. 安全防护：激进驾驶员 v = min(v, gap+vp)，其他驾驶员 v = min(v, gap)
// 4. 随机慢化：draw <= pn 时 v = min(v-b, 1)，且不小于0
// 5. 位置更新：(pos+v) mod length
func (c *controller) move(lane, pos int, v entity.Vehicle, vp int, pn, draw float64) motion {
	v.Stage = entity.StageRunning
	gap := c.snap.ForwardGap(lane, pos)
	// 加速
	v.Speed = min(v.Speed+c.model.A, c.model.MaxSpeed)
	// 安全防护
	if c.radical(v) {
		v.Speed = min(v.Speed, gap+vp)
	} else {
		v.Speed = min(v.Speed, gap)
	}
	// 随机慢化
	slowed := draw <= pn
	if slowed {
		v.Speed = lo.Clamp(min(v.Speed-c.model.B, 1), 0, c.model.MaxSpeed)
	}
	return motion{
		pos:     (pos + v.Speed) % c.snap.Length(),
		vehicle: v,
		slowed:  slowed,
	}
}
