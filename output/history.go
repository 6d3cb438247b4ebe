package output

import (
	"strings"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/hcca-sim/entity"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/lattice"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/container"
)

// HistoryRow 时空图中的一行，每条车道为各元胞的速度，空元胞为lattice.Empty
type HistoryRow struct {
	Step  int32
	Lanes [entity.NumLanes][]int
}

// History 时空图历史
// 功能：在内存中保留最近若干步的元胞速度，用于绘制时空图
type History struct {
	rows *container.Ring[HistoryRow]
}

// NewHistory 创建时空图历史
// 参数：capacity-保留的步数
func NewHistory(capacity int) *History {
	return &History{rows: container.NewRing[HistoryRow](capacity)}
}

func (h *History) Write(f Frame) error {
	var row HistoryRow
	row.Step = f.Step
	for lane := range row.Lanes {
		row.Lanes[lane] = f.Lattice.Speeds(lane)
	}
	h.rows.Push(row)
	return nil
}

func (h *History) Close() error {
	return nil
}

// Cap 最多保留的步数
func (h *History) Cap() int {
	return h.rows.Cap()
}

// Len 已记录的步数
func (h *History) Len() int {
	return h.rows.Len()
}

// Rows 按时间顺序返回所有记录
func (h *History) Rows() []HistoryRow {
	return h.rows.Values()
}

// Lane 单条车道的时空图，第i行为第i个记录步的元胞速度
func (h *History) Lane(lane int) [][]int {
	return lo.Map(h.rows.Values(), func(row HistoryRow, _ int) []int {
		return row.Lanes[lane]
	})
}

// Render 以文本形式绘制单条车道的时空图
// 说明：每行一步，'.'为空元胞，数字为车速，速度不小于10时为'+'
func (h *History) Render(lane int) string {
	var sb strings.Builder
	for _, speeds := range h.Lane(lane) {
		for _, s := range speeds {
			switch {
			case s == lattice.Empty:
				sb.WriteByte('.')
			case s >= 10:
				sb.WriteByte('+')
			default:
				sb.WriteByte(byte('0' + s))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
