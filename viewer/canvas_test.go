package viewer

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/hcca-sim/entity"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/lattice"
	"github.com/tsinghua-fib-lab/hcca-sim/output"
)

func TestSpeedColor(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, speedColor(0, 5))
	assert.Equal(t, color.RGBA{G: 0xff, A: 0xff}, speedColor(5, 5))
	assert.Equal(t, color.RGBA{G: 0xff, A: 0xff}, speedColor(9, 5))
}

func TestCanvasWithoutHistory(t *testing.T) {
	c := NewCanvas(6, 0, 5)
	w, h := c.Size()
	assert.Equal(t, 6, w)
	assert.Equal(t, 2, h)

	l := lattice.Parse([]string{"5.....", "...0.."}, entity.ProfileOther)
	l.Put(entity.LANE0, 2, entity.Vehicle{Speed: 1, Profile: entity.ProfileRadical})
	img := c.Paint(l, nil)
	assert.Equal(t, speedColor(5, 5), img.RGBAAt(0, 0))
	assert.Equal(t, radical, img.RGBAAt(2, 0))
	assert.Equal(t, background, img.RGBAAt(1, 0))
	assert.Equal(t, speedColor(0, 5), img.RGBAAt(3, 1))
}

func TestCanvasHistory(t *testing.T) {
	c := NewCanvas(4, 2, 5)
	_, h := c.Size()
	// 2行当前状态 + 2块(1分隔行 + 2行时空图)
	assert.Equal(t, 8, h)

	hist := output.NewHistory(3)
	for step, rows := range [][]string{
		{"1...", "...."},
		{".2..", "...."},
		{"..3.", "4..."},
	} {
		l := lattice.Parse(rows, entity.ProfileOther)
		hist.Write(output.Frame{Step: int32(step), Lattice: l})
	}
	img := c.Paint(lattice.New(4), hist.Rows())

	// 只绘制最近两行
	top0, top1 := c.historyTop(entity.LANE0), c.historyTop(entity.LANE1)
	assert.Equal(t, 3, top0)
	assert.Equal(t, 6, top1)
	assert.Equal(t, separator, img.RGBAAt(0, top0-1))
	assert.Equal(t, speedColor(2, 5), img.RGBAAt(1, top0))
	assert.Equal(t, speedColor(3, 5), img.RGBAAt(2, top0+1))
	assert.Equal(t, background, img.RGBAAt(0, top0))
	assert.Equal(t, separator, img.RGBAAt(3, top1-1))
	assert.Equal(t, speedColor(4, 5), img.RGBAAt(0, top1+1))
}
