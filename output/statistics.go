package output

import (
	"sync"

	"github.com/tsinghua-fib-lab/hcca-sim/entity"
)

// Metrics 单步宏观交通指标
type Metrics struct {
	Density        float64                  // 总体密度：车辆数 / (车道数×length)
	LaneDensities  [entity.NumLanes]float64 // 各车道密度
	MeanSpeed      float64                  // 平均速度
	Flow           float64                  // 流量：速度和 / (车道数×length)
	LaneChangeRate float64                  // 每车每步变道次数
	SlowDownRate   float64                  // 每车每步随机慢化次数
	Collisions     int                      // 目标元胞冲突次数
}

// Measure 计算一步的宏观交通指标
func Measure(f Frame) Metrics {
	length := float64(f.Lattice.Length())
	m := Metrics{
		Density:    float64(f.Stats.Vehicles) / (entity.NumLanes * length),
		MeanSpeed:  f.Stats.MeanSpeed(),
		Flow:       float64(f.Stats.SpeedSum) / (entity.NumLanes * length),
		Collisions: f.Stats.Collisions,
	}
	for lane := range m.LaneDensities {
		m.LaneDensities[lane] = float64(f.Lattice.Count(lane)) / length
	}
	if f.Stats.Vehicles > 0 {
		m.LaneChangeRate = float64(f.Stats.LaneChanges) / float64(f.Stats.Vehicles)
		m.SlowDownRate = float64(f.Stats.SlowDowns) / float64(f.Stats.Vehicles)
	}
	return m
}

// Summary 统计量汇总
type Summary struct {
	Samples int // 参与统计的步数
	Metrics     // 各指标的平均值，Collisions为总数
}

// Statistics 宏观交通指标的累计
// 功能：跳过预热步数后累计每步的指标，用于绘制基本图
type Statistics struct {
	warmup int32

	samples int
	sum     Metrics
	mtx     sync.Mutex
}

// NewStatistics 创建统计量
// 参数：warmup-步数不大于warmup的结果不参与统计
func NewStatistics(warmup int32) *Statistics {
	return &Statistics{warmup: warmup}
}

func (s *Statistics) Write(f Frame) error {
	if f.Step <= s.warmup {
		return nil
	}
	m := Measure(f)
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.samples++
	s.sum.Density += m.Density
	for lane := range m.LaneDensities {
		s.sum.LaneDensities[lane] += m.LaneDensities[lane]
	}
	s.sum.MeanSpeed += m.MeanSpeed
	s.sum.Flow += m.Flow
	s.sum.LaneChangeRate += m.LaneChangeRate
	s.sum.SlowDownRate += m.SlowDownRate
	s.sum.Collisions += m.Collisions
	return nil
}

func (s *Statistics) Close() error {
	sum := s.Summary()
	log.Infof("statistics over %d steps: density=%.4f speed=%.4f flow=%.4f lane_change_rate=%.4f collisions=%d",
		sum.Samples, sum.Density, sum.MeanSpeed, sum.Flow, sum.LaneChangeRate, sum.Collisions)
	return nil
}

// Summary 返回各指标的平均值，没有样本时全部为0
func (s *Statistics) Summary() Summary {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	res := Summary{Samples: s.samples}
	res.Collisions = s.sum.Collisions
	if s.samples == 0 {
		return res
	}
	n := float64(s.samples)
	res.Density = s.sum.Density / n
	for lane := range res.LaneDensities {
		res.LaneDensities[lane] = s.sum.LaneDensities[lane] / n
	}
	res.MeanSpeed = s.sum.MeanSpeed / n
	res.Flow = s.sum.Flow / n
	res.LaneChangeRate = s.sum.LaneChangeRate / n
	res.SlowDownRate = s.sum.SlowDownRate / n
	return res
}
