//go:build ebiten

package viewer

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tsinghua-fib-lab/hcca-sim/output"
)

// Game 将仿真适配为ebiten.Game
type Game struct {
	sim    Simulation
	canvas *Canvas
	image  *ebiten.Image

	scale    int
	paused   bool
	tickOnce bool
}

// New 创建可视化界面
// 参数：sim-仿真，scale-每个元胞的像素边长
func New(sim Simulation, scale int) *Game {
	history := 0
	if h := sim.History(); h != nil {
		history = h.Cap()
	}
	m := sim.Manager()
	canvas := NewCanvas(m.Lattice().Length(), history, m.Model().MaxSpeed)
	w, h := canvas.Size()
	return &Game{
		sim:    sim,
		canvas: canvas,
		image:  ebiten.NewImage(w, h),
		scale:  max(scale, 1),
	}
}

// Update 处理按键并推进仿真
// 按键：空格暂停/继续，N单步，Q/Esc退出
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if (!g.paused || g.tickOnce) && !g.sim.Done() {
		if err := g.sim.Step(); err != nil {
			return err
		}
		g.tickOnce = false
	}
	return nil
}

// Draw 绘制当前状态
func (g *Game) Draw(screen *ebiten.Image) {
	var rows []output.HistoryRow
	if h := g.sim.History(); h != nil {
		rows = h.Rows()
	}
	img := g.canvas.Paint(g.sim.Manager().Lattice(), rows)
	g.image.WritePixels(img.Pix)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.image, op)
}

// Layout 逻辑屏幕尺寸
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.canvas.Size()
	return w * g.scale, h * g.scale
}

// Run 打开窗口并运行仿真，窗口关闭或按Q退出时返回
func Run(sim Simulation, scale int) error {
	g := New(sim, scale)
	w, h := g.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("hcca-sim")
	return ebiten.RunGame(g)
}
