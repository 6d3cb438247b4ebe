// Package viewer 元胞状态与时空图的可视化
// 说明：图形界面需要以ebiten构建标签编译，像素绘制部分与图形库无关
package viewer

import (
	"image"
	"image/color"

	"github.com/tsinghua-fib-lab/hcca-sim/entity"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/lattice"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/hcca-sim/output"
)

// Simulation 可视化所需的仿真接口，task.Context 满足该接口
type Simulation interface {
	Step() error
	Done() bool
	Manager() *vehicle.Manager
	History() *output.History
}

var (
	background = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff} // 空元胞
	separator  = color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff} // 分隔行
	radical    = color.RGBA{R: 0x40, G: 0x80, B: 0xff, A: 0xff} // 激进驾驶员
)

// speedColor 速度从0到max_speed由红渐变到绿
func speedColor(speed, maxSpeed int) color.RGBA {
	if maxSpeed <= 0 {
		maxSpeed = 1
	}
	g := uint8(min(speed, maxSpeed) * 0xff / maxSpeed)
	return color.RGBA{R: 0xff - g, G: g, B: 0, A: 0xff}
}

// Canvas 像素画布
// 布局：前两行为当前各车道状态，之后每条车道一块时空图，块之间以分隔行隔开
type Canvas struct {
	img      *image.RGBA
	length   int
	history  int
	maxSpeed int
}

// NewCanvas 创建画布
// 参数：length-车道元胞数，history-时空图行数（0表示不绘制），maxSpeed-最大车速
func NewCanvas(length, history, maxSpeed int) *Canvas {
	h := entity.NumLanes
	if history > 0 {
		h += entity.NumLanes * (history + 1)
	}
	return &Canvas{
		img:      image.NewRGBA(image.Rect(0, 0, length, h)),
		length:   length,
		history:  history,
		maxSpeed: maxSpeed,
	}
}

// Size 画布的像素尺寸
func (c *Canvas) Size() (w, h int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// historyTop 第lane块时空图的首行
func (c *Canvas) historyTop(lane int) int {
	return entity.NumLanes + lane*(c.history+1) + 1
}

// Paint 绘制当前状态与最近的时空图
// 参数：l-当前元胞状态，rows-时空图记录（从旧到新，只绘制最近的history行）
// 返回：绘制后的图像，下次调用时会被覆盖
func (c *Canvas) Paint(l *lattice.Lattice, rows []output.HistoryRow) *image.RGBA {
	w, h := c.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c.img.SetRGBA(x, y, background)
		}
	}
	l.Each(func(lane, pos int, v entity.Vehicle) bool {
		col := speedColor(v.Speed, c.maxSpeed)
		if v.Profile == entity.ProfileRadical {
			col = radical
		}
		c.img.SetRGBA(pos, lane, col)
		return true
	})
	if c.history == 0 {
		return c.img
	}
	if len(rows) > c.history {
		rows = rows[len(rows)-c.history:]
	}
	for lane := 0; lane < entity.NumLanes; lane++ {
		top := c.historyTop(lane)
		for x := 0; x < w; x++ {
			c.img.SetRGBA(x, top-1, separator)
		}
		for i, row := range rows {
			for pos, s := range row.Lanes[lane] {
				if s != lattice.Empty {
					c.img.SetRGBA(pos, top+i, speedColor(s, c.maxSpeed))
				}
			}
		}
	}
	return c.img
}
