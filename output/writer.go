// Package output 仿真结果输出，包括时空图历史、统计量与MongoDB轨迹
package output

import (
	"errors"

	"github.com/tsinghua-fib-lab/hcca-sim/entity/lattice"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/vehicle"
)

// Frame 一步的仿真结果
// 说明：Lattice只读，写入方需要保留时应自行拷贝
type Frame struct {
	Step    int32
	Lattice *lattice.Lattice
	Stats   vehicle.StepStats
}

// NewFrame 从步进引擎取出同一步的状态与统计
func NewFrame(m *vehicle.Manager) Frame {
	l, stats := m.Current()
	return Frame{Step: stats.Step, Lattice: l, Stats: stats}
}

// Writer 仿真结果的接收方
type Writer interface {
	Write(f Frame) error
	Close() error
}

type multiWriter []Writer

// Multi 将结果依次写入多个Writer
func Multi(writers ...Writer) Writer {
	return multiWriter(writers)
}

func (m multiWriter) Write(f Frame) error {
	var errs []error
	for _, w := range m {
		if err := w.Write(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiWriter) Close() error {
	var errs []error
	for _, w := range m {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
