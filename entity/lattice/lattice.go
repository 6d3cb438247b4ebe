package lattice

import (
	"strconv"
	"strings"

	"github.com/tsinghua-fib-lab/hcca-sim/entity"
)

// Empty 在Speeds结果中表示空元胞
const Empty = -1

// 元胞
type slot struct {
	vehicle  entity.Vehicle
	occupied bool
}

// Lattice 元胞状态
// 功能：存储两条等长环形车道上每个元胞的占用情况
// 说明：纯状态容器；仿真每一步整体替换，发布后不再修改，可被多个协程只读访问
type Lattice struct {
	length int
	cells  [entity.NumLanes][]slot
	counts [entity.NumLanes]int
}

// New 创建空的元胞状态
// 参数：length-每条车道的元胞数
func New(length int) *Lattice {
	if length <= 0 {
		log.Panicf("lattice: bad length %d", length)
	}
	l := &Lattice{length: length}
	for i := range l.cells {
		l.cells[i] = make([]slot, length)
	}
	return l
}

// Length 每条车道的元胞数
func (l *Lattice) Length() int {
	return l.length
}

// wrap 环形下标
func (l *Lattice) wrap(pos int) int {
	pos %= l.length
	if pos < 0 {
		pos += l.length
	}
	return pos
}

// Get 查询元胞中的车辆，位置按环形取模
func (l *Lattice) Get(lane, pos int) (entity.Vehicle, bool) {
	s := l.cells[lane][l.wrap(pos)]
	return s.vehicle, s.occupied
}

// Occupied 元胞是否有车
func (l *Lattice) Occupied(lane, pos int) bool {
	return l.cells[lane][l.wrap(pos)].occupied
}

// Put 将车辆写入元胞
// 返回：被覆盖的车辆及是否发生覆盖
func (l *Lattice) Put(lane, pos int, v entity.Vehicle) (prev entity.Vehicle, replaced bool) {
	s := &l.cells[lane][l.wrap(pos)]
	prev, replaced = s.vehicle, s.occupied
	s.vehicle = v
	if !s.occupied {
		s.occupied = true
		l.counts[lane]++
	}
	return
}

// Count 车道上的车辆数
func (l *Lattice) Count(lane int) int {
	return l.counts[lane]
}

// Total 全部车辆数
func (l *Lattice) Total() int {
	total := 0
	for _, c := range l.counts {
		total += c
	}
	return total
}

// Speeds 车道上每个元胞的速度，空元胞为Empty
// 说明：供可视化与输出模块读取
func (l *Lattice) Speeds(lane int) []int {
	res := make([]int, l.length)
	for i, s := range l.cells[lane] {
		if s.occupied {
			res[i] = s.vehicle.Speed
		} else {
			res[i] = Empty
		}
	}
	return res
}

// Each 按先车道后位置的顺序遍历所有有车的元胞，f返回false时停止
func (l *Lattice) Each(f func(lane, pos int, v entity.Vehicle) bool) {
	for lane := range l.cells {
		for pos, s := range l.cells[lane] {
			if !s.occupied {
				continue
			}
			if !f(lane, pos, s.vehicle) {
				return
			}
		}
	}
}

// Clone 深拷贝
func (l *Lattice) Clone() *Lattice {
	c := &Lattice{length: l.length, counts: l.counts}
	for i := range l.cells {
		c.cells[i] = make([]slot, l.length)
		copy(c.cells[i], l.cells[i])
	}
	return c
}

// Equal 两个元胞状态是否完全一致（含速度、阶段与驾驶员类型）
func (l *Lattice) Equal(o *Lattice) bool {
	if l.length != o.length || l.counts != o.counts {
		return false
	}
	for i := range l.cells {
		for j := range l.cells[i] {
			if l.cells[i][j] != o.cells[i][j] {
				return false
			}
		}
	}
	return true
}

// String 每条车道一行，空元胞为'.'，有车元胞为速度
func (l *Lattice) String() string {
	var b strings.Builder
	for lane := range l.cells {
		if lane > 0 {
			b.WriteByte('\n')
		}
		for _, s := range l.cells[lane] {
			switch {
			case !s.occupied:
				b.WriteByte('.')
			case s.vehicle.Speed < 10:
				b.WriteString(strconv.Itoa(s.vehicle.Speed))
			default:
				b.WriteByte('+')
			}
		}
	}
	return b.String()
}

// Parse 从String格式的文本构造元胞状态，便于测试与调试
// 说明：每行一条车道，'.'为空元胞，数字为车辆速度；车辆为正常运行阶段，驾驶员类型由profile给定
func Parse(rows []string, profile entity.Profile) *Lattice {
	if len(rows) != entity.NumLanes {
		log.Panicf("lattice: Parse expects %d rows, got %d", entity.NumLanes, len(rows))
	}
	l := New(len(rows[0]))
	for lane, row := range rows {
		if len(row) != l.length {
			log.Panicf("lattice: row %d has length %d, want %d", lane, len(row), l.length)
		}
		for pos, c := range row {
			if c == '.' {
				continue
			}
			if c < '0' || c > '9' {
				log.Panicf("lattice: bad cell %q at lane %d pos %d", c, lane, pos)
			}
			l.Put(lane, pos, entity.Vehicle{Speed: int(c - '0'), Stage: entity.StageRunning, Profile: profile})
		}
	}
	return l
}
