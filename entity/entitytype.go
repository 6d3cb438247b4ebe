package entity

import "fmt"

// 车道数量与车道编号
const (
	NumLanes = 2
	LANE0    = 0 // 第一车道
	LANE1    = 1 // 第二车道
)

// Other 返回相邻车道编号
func Other(lane int) int {
	return (lane + 1) % NumLanes
}

// Stage 车辆运行阶段
type Stage int

const (
	StageRunning  Stage = iota // 正常运行
	StageChanging              // 本步完成变道，下一步不参与变道判断
)

func (s Stage) String() string {
	switch s {
	case StageRunning:
		return "RUNNING"
	case StageChanging:
		return "CHANGING"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Profile 驾驶员类型，车辆创建时确定，生命周期内不变
type Profile int

const (
	ProfileRadical Profile = iota // 激进型驾驶员
	ProfileOther                  // 其他类型驾驶员
)

func (p Profile) String() string {
	switch p {
	case ProfileRadical:
		return "RADICAL"
	case ProfileOther:
		return "OTHER"
	default:
		return fmt.Sprintf("Profile(%d)", int(p))
	}
}

// Vehicle 元胞中的车辆
// 功能：记录车辆的速度、运行阶段与驾驶员类型
// 说明：车辆身份由所在元胞隐式确定；车辆以值的形式拷贝进下一时刻的元胞，
// 新旧两个元胞状态之间不共享同一辆车
type Vehicle struct {
	Speed   int     // 速度（元胞/步）
	Stage   Stage   // 运行阶段
	Profile Profile // 驾驶员类型
}

func (v Vehicle) String() string {
	return fmt.Sprintf("Vehicle{V=%d, %v, %v}", v.Speed, v.Stage, v.Profile)
}

// 单车道统计量，用于随机慢化概率计算
type LaneStats struct {
	Count    int // 车辆数
	SpeedSum int // 速度之和
	GapSum   int // 所有车辆前向车距之和
}

// entity/lattice/gap.go的依赖倒置
// 一个仿真步内冻结的元胞状态快照，只读
type ISnapshot interface {
	// 每条车道的元胞数
	Length() int
	// 查询元胞中的车辆
	Get(lane, pos int) (Vehicle, bool)
	// 与本车道前车之间的空元胞数
	ForwardGap(lane, pos int) int
	// 与旁道前车之间的空元胞数，旁道同位置有车时为0
	AdjacentForwardGap(lane, pos int) int
	// 与旁道后车之间的空元胞数
	AdjacentBackwardGap(lane, pos int) int
	// 本车道前车的位置与状态，车道上没有其他车辆时ok为false
	Front(lane, pos int) (int, Vehicle, bool)
	// 车道统计量
	LaneStats(lane int) LaneStats
}

// 随机数来源，由仿真显式持有而非使用全局随机状态
// utils/randengine.Engine 满足该接口
type IRandom interface {
	Float64() float64
	IntRange(lo, hi int) int // 闭区间[lo, hi]内的均匀整数
	Shuffle(n int, swap func(i, j int))
}
