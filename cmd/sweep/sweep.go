package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/hcca-sim/output"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/config"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/randengine"
)

// point 一次仿真的参数点
type point struct {
	index   int     // 序号，用于派生随机数种子
	density float64 // 两条车道的初始密度
	repeat  int     // 同一密度下的第几次重复
}

// result 一次仿真的统计结果
type result struct {
	point
	summary output.Summary
	err     error
}

// densities 按步长生成[from, to]内的密度点
func densities(from, to, step float64) []float64 {
	if step <= 0 || to < from {
		return nil
	}
	// 浮点累加误差，多取半个步长
	return lo.Filter(lo.RangeWithSteps(from, to+step/2, step), func(d float64, _ int) bool {
		return d > 0 && d <= 1
	})
}

// points 展开所有参数点
func points(ds []float64, repeats int) []point {
	res := make([]point, 0, len(ds)*repeats)
	for _, d := range ds {
		for r := 0; r < repeats; r++ {
			res = append(res, point{index: len(res), density: d, repeat: r})
		}
	}
	return res
}

// sweep 并行运行所有参数点
// 说明：每个参数点使用由基础种子派生的独立随机数引擎，结果与并行度无关
func sweep(base config.Config, ps []point, steps int32) []result {
	root := randengine.New(base.Control.Seed)
	return parallel.GoMap(ps, func(p point) result {
		return run(base, p, root.Fork(uint64(p.index)), steps)
	})
}

// run 运行单个参数点
func run(base config.Config, p point, rnd *randengine.Engine, steps int32) result {
	model := base.Model
	model.Densities = []float64{p.density, p.density}
	m, err := vehicle.NewManager(model, base.Utility, rnd)
	if err != nil {
		return result{point: p, err: err}
	}
	stats := output.NewStatistics(base.Output.Warmup)
	for i := int32(0); i < steps; i++ {
		if _, err := m.Advance(); err != nil {
			return result{point: p, err: err}
		}
		if err := stats.Write(output.NewFrame(m)); err != nil {
			return result{point: p, err: err}
		}
	}
	return result{point: p, summary: stats.Summary()}
}

var header = []string{"variant", "density", "repeat", "measured_density", "speed", "flow", "lane_change_rate", "slow_down_rate", "collisions"}

// writeCSV 输出结果，失败的参数点记录日志后跳过
func writeCSV(w io.Writer, variant config.Variant, results []result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	f := func(v float64) string {
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', 6, 64)
	}
	for _, r := range results {
		if r.err != nil {
			log.Errorf("density %.3f repeat %d: %v", r.density, r.repeat, r.err)
			continue
		}
		s := r.summary
		if err := cw.Write([]string{
			string(variant),
			f(r.density),
			strconv.Itoa(r.repeat),
			f(s.Density),
			f(s.MeanSpeed),
			f(s.Flow),
			f(s.LaneChangeRate),
			f(s.SlowDownRate),
			strconv.Itoa(s.Collisions),
		}); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
