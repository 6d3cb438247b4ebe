package lattice

import "github.com/tsinghua-fib-lab/hcca-sim/entity"

// ForwardGap 计算与前车的距离
// 功能：从pos的下一个元胞开始沿行驶方向环形扫描，统计到下一辆车之间的空元胞数
// 参数：lane-车道，pos-当前车位置
// 返回：空元胞数，范围[0, length-1]
// 说明：车道为空或只有本车时，扫描距离达到length-1即停止，避免无限循环
func (l *Lattice) ForwardGap(lane, pos int) int {
	return l.scan(lane, pos, 1)
}

// AdjacentForwardGap 计算与旁道前车的距离
// 旁道同位置元胞有车时返回0
func (l *Lattice) AdjacentForwardGap(lane, pos int) int {
	other := entity.Other(lane)
	if l.Occupied(other, pos) {
		return 0
	}
	return l.ForwardGap(other, pos)
}

// AdjacentBackwardGap 计算与旁道后车的距离
// 从旁道pos的前一个元胞开始逆向扫描，上限同ForwardGap
func (l *Lattice) AdjacentBackwardGap(lane, pos int) int {
	return l.scan(entity.Other(lane), pos, -1)
}

// scan 沿dir方向的环形扫描，距离上限length-1
func (l *Lattice) scan(lane, pos, dir int) int {
	limit := l.length - 1
	cursor := pos
	for dn := 0; dn < limit; dn++ {
		cursor += dir
		if l.Occupied(lane, cursor) {
			return dn
		}
	}
	return limit
}

// Front 查找指定车的前车
// 返回：前车位置、前车状态；车道上除本车外没有车辆时ok为false
func (l *Lattice) Front(lane, pos int) (int, entity.Vehicle, bool) {
	for d := 1; d < l.length; d++ {
		cursor := l.wrap(pos + d)
		if s := l.cells[lane][cursor]; s.occupied {
			return cursor, s.vehicle, true
		}
	}
	return -1, entity.Vehicle{}, false
}

// Analyzer 车距分析器
// 功能：在一个仿真步内冻结的元胞状态上提供车距查询与车道统计量
// 说明：构造时一次性计算每条车道的车辆数、速度和与车距和，避免每辆车重复遍历整条车道
type Analyzer struct {
	*Lattice
	stats [entity.NumLanes]entity.LaneStats
}

var _ entity.ISnapshot = (*Analyzer)(nil)

// NewAnalyzer 创建车距分析器
// 参数：l-本步冻结的元胞状态，分析器存活期间不得修改
func NewAnalyzer(l *Lattice) *Analyzer {
	a := &Analyzer{Lattice: l}
	l.Each(func(lane, pos int, v entity.Vehicle) bool {
		s := &a.stats[lane]
		s.Count++
		s.SpeedSum += v.Speed
		s.GapSum += l.ForwardGap(lane, pos)
		return true
	})
	return a
}

// LaneStats 车道统计量
func (a *Analyzer) LaneStats(lane int) entity.LaneStats {
	return a.stats[lane]
}
