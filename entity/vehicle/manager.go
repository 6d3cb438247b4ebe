package vehicle

import (
	"errors"
	"fmt"
	"sync/atomic"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/hcca-sim/entity"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/lattice"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/config"
)

// ErrCollision 两辆车在同一步选择了同一个目标元胞（仅collision: fail时返回）
var ErrCollision = errors.New("destination cell collision")

// StepStats 单步统计
type StepStats struct {
	Step        int32 // 步数，初始状态为0
	Vehicles    int   // 车辆总数
	LaneChanges int   // 变道次数
	SlowDowns   int   // 触发随机慢化次数
	Collisions  int   // 目标元胞冲突次数
	SpeedSum    int   // 速度之和
}

// MeanSpeed 平均速度，没有车辆时为0
func (s StepStats) MeanSpeed() float64 {
	if s.Vehicles == 0 {
		return 0
	}
	return float64(s.SpeedSum) / float64(s.Vehicles)
}

// occupant 本步待处理的车辆
type occupant struct {
	lane, pos int
	vehicle   entity.Vehicle
	draw      float64 // 本车的随机慢化抽样
}

// decision 单辆车本步的处理结果
type decision struct {
	lane, pos int
	vehicle   entity.Vehicle
	changed   bool // 本步变道
	slowed    bool // 本步触发随机慢化
}

// Manager 双车道元胞自动机的步进引擎
// 功能：持有当前元胞状态与随机数来源，按步推进仿真
// 说明：当前状态通过原子指针发布，读取方（RPC、可视化）可以在步进期间并发读取上一步的状态；
// Advance本身不可并发调用
type Manager struct {
	model     config.Model
	evaluator Evaluator
	rnd       entity.IRandom

	current atomic.Pointer[published]
}

// published 对外发布的一步结果，状态与统计一起替换
type published struct {
	lattice *lattice.Lattice
	stats   StepStats
}

// NewManager 创建步进引擎并随机生成初始状态
// 功能：校验模型参数，按密度与激进驾驶员比例生成车辆并随机放置
// 参数：model-模型参数，utility-前景理论参数，rnd-随机数来源
// 返回：步进引擎，参数不合法时返回错误
// 算法说明：
// 1. 每条车道车辆数 = floor(length × density)
// 2. 激进驾驶员数 = floor(车辆总数 × radical_ratio)，仅hcca模型
// 3. 初始速度在[1, max_speed]内均匀抽样，车辆顺序随机打乱
// 4. 每条车道随机选择不重复的元胞放置车辆
func NewManager(model config.Model, utility config.Utility, rnd entity.IRandom) (*Manager, error) {
	if err := errors.Join(model.Validate(), utility.Validate()); err != nil {
		return nil, err
	}
	return newManager(model, utility, rnd, populate(model, rnd)), nil
}

// NewManagerWithLattice 使用给定的初始状态创建步进引擎
// 说明：给定状态被拷贝，调用方之后的修改不影响仿真；车速必须在[0, max_speed]内
func NewManagerWithLattice(model config.Model, utility config.Utility, rnd entity.IRandom, l *lattice.Lattice) (*Manager, error) {
	if err := errors.Join(model.Validate(), utility.Validate()); err != nil {
		return nil, err
	}
	if l.Length() != model.Length {
		return nil, fmt.Errorf("%w: lattice length %d does not match length %d", config.ErrInvalidModel, l.Length(), model.Length)
	}
	var err error
	l.Each(func(lane, pos int, v entity.Vehicle) bool {
		if v.Speed < 0 || v.Speed > model.MaxSpeed {
			err = fmt.Errorf("%w: vehicle at lane %d cell %d has speed %d outside [0, %d]", config.ErrInvalidModel, lane, pos, v.Speed, model.MaxSpeed)
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return newManager(model, utility, rnd, l.Clone()), nil
}

func newManager(model config.Model, utility config.Utility, rnd entity.IRandom, l *lattice.Lattice) *Manager {
	m := &Manager{
		model:     model,
		evaluator: NewEvaluator(utility),
		rnd:       rnd,
	}
	m.current.Store(&published{lattice: l, stats: summarize(0, l)})
	log.Infof("%s lattice initialized: length=%d vehicles=%d/%d", model.Variant, l.Length(), l.Count(entity.LANE0), l.Count(entity.LANE1))
	return m
}

// populate 随机生成初始状态
func populate(model config.Model, rnd entity.IRandom) *lattice.Lattice {
	l := lattice.New(model.Length)
	nums := lo.Map(model.Densities, func(d float64, _ int) int {
		return int(float64(model.Length) * d)
	})
	total := lo.Sum(nums)
	radicals := 0
	if model.Heterogeneous() {
		radicals = int(float64(total) * model.RadicalRatio)
	}
	vehicles := lo.Times(total, func(i int) entity.Vehicle {
		profile := entity.ProfileOther
		if i < radicals {
			profile = entity.ProfileRadical
		}
		return entity.Vehicle{
			Speed:   rnd.IntRange(1, model.MaxSpeed),
			Stage:   entity.StageRunning,
			Profile: profile,
		}
	})
	rnd.Shuffle(len(vehicles), func(i, j int) {
		vehicles[i], vehicles[j] = vehicles[j], vehicles[i]
	})
	offset := 0
	for lane, n := range nums {
		cells := lo.Range(model.Length)
		rnd.Shuffle(len(cells), func(i, j int) {
			cells[i], cells[j] = cells[j], cells[i]
		})
		for i, pos := range cells[:n] {
			l.Put(lane, pos, vehicles[offset+i])
		}
		offset += n
	}
	return l
}

// summarize 统计元胞状态
func summarize(step int32, l *lattice.Lattice) StepStats {
	s := StepStats{Step: step}
	l.Each(func(_, _ int, v entity.Vehicle) bool {
		s.Vehicles++
		s.SpeedSum += v.Speed
		return true
	})
	return s
}

// Model 模型参数
func (m *Manager) Model() config.Model {
	return m.model
}

// Step 已完成的步数
func (m *Manager) Step() int32 {
	return m.current.Load().stats.Step
}

// Lattice 当前元胞状态，调用方只读
func (m *Manager) Lattice() *lattice.Lattice {
	return m.current.Load().lattice
}

// Stats 最近一步的统计
func (m *Manager) Stats() StepStats {
	return m.current.Load().stats
}

// Current 同一步的元胞状态与统计
func (m *Manager) Current() (*lattice.Lattice, StepStats) {
	p := m.current.Load()
	return p.lattice, p.stats
}

// prepare 冻结快照并按遍历顺序为每辆车抽取随机数
// 说明：随机数在并行决策之前顺序抽取，保证相同种子下结果可复现
func (m *Manager) prepare(cur *lattice.Lattice) []occupant {
	occupants := make([]occupant, 0, cur.Total())
	cur.Each(func(lane, pos int, v entity.Vehicle) bool {
		occupants = append(occupants, occupant{
			lane:    lane,
			pos:     pos,
			vehicle: v,
			draw:    m.rnd.Float64(),
		})
		return true
	})
	return occupants
}

// decide 单辆车的变道决策与运动
// 功能：变道判断通过时写入旁道同一位置并保持速度，否则执行运动规则
func (m *Manager) decide(c *controller, o occupant) decision {
	vp, frontSpeed := c.anticipate(o.lane, o.pos, o.vehicle)
	if o.vehicle.Stage == entity.StageRunning && m.model.LaneChangeEnabled() {
		chk := c.planLaneChange(o.lane, o.pos, o.vehicle, vp)
		if chk.s1 && chk.s2 && chk.s3 {
			log.Tracef("lane %d cell %d %v: %v", o.lane, o.pos, o.vehicle, chk)
		}
		if chk.ok() {
			v := o.vehicle
			v.Stage = entity.StageChanging
			return decision{
				lane:    entity.Other(o.lane),
				pos:     o.pos,
				vehicle: v,
				changed: true,
			}
		}
	}
	pn := c.slowdownProbability(o.lane, o.pos, o.vehicle, frontSpeed)
	mv := c.move(o.lane, o.pos, o.vehicle, vp, pn, o.draw)
	return decision{
		lane:    o.lane,
		pos:     mv.pos,
		vehicle: mv.vehicle,
		slowed:  mv.slowed,
	}
}

// Advance 推进一步
// 功能：基于当前状态的冻结快照计算所有车辆的下一状态，并原子地替换当前状态
// 返回：新的元胞状态（调用方只读），collision: fail时发生冲突返回ErrCollision且当前状态不变
// 算法说明：
// 1. 按车道、位置顺序遍历所有车辆，顺序抽取随机数
// 2. 并行计算每辆车的决策，只读取快照
// 3. 按遍历顺序串行写入下一状态，目标元胞冲突时按collision策略处理
// 4. 发布新状态与统计
func (m *Manager) Advance() (*lattice.Lattice, error) {
	prev := m.current.Load()
	cur := prev.lattice
	c := newController(lattice.NewAnalyzer(cur), m.model, m.evaluator)

	occupants := m.prepare(cur)
	decisions := parallel.GoMap(occupants, func(o occupant) decision {
		return m.decide(c, o)
	})

	step := prev.stats.Step + 1
	next := lattice.New(cur.Length())
	stats := StepStats{Step: step}
	for _, d := range decisions {
		if d.changed {
			stats.LaneChanges++
		}
		if d.slowed {
			stats.SlowDowns++
		}
		if err := m.place(next, d, &stats); err != nil {
			return nil, err
		}
	}
	s := summarize(step, next)
	stats.Vehicles, stats.SpeedSum = s.Vehicles, s.SpeedSum

	m.current.Store(&published{lattice: next, stats: stats})
	log.Debugf("step %d: vehicles=%d lane_changes=%d slow_downs=%d collisions=%d mean_speed=%.3f",
		step, stats.Vehicles, stats.LaneChanges, stats.SlowDowns, stats.Collisions, stats.MeanSpeed())
	return next, nil
}

// place 写入下一状态
func (m *Manager) place(next *lattice.Lattice, d decision, stats *StepStats) error {
	if !next.Occupied(d.lane, d.pos) {
		next.Put(d.lane, d.pos, d.vehicle)
		return nil
	}
	stats.Collisions++
	switch m.model.Collision {
	case config.CollisionOverwrite:
		prev, _ := next.Put(d.lane, d.pos, d.vehicle)
		log.Warnf("step %d: %v at lane %d cell %d overwritten by %v", stats.Step, prev, d.lane, d.pos, d.vehicle)
	case config.CollisionKeepFirst:
		log.Warnf("step %d: %v dropped, lane %d cell %d already taken", stats.Step, d.vehicle, d.lane, d.pos)
	default:
		return fmt.Errorf("%w: lane %d cell %d at step %d", ErrCollision, d.lane, d.pos, stats.Step)
	}
	return nil
}
