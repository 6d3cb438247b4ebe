package task

import (
	"flag"

	"github.com/tsinghua-fib-lab/hcca-sim/output"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：推进时钟
func (ctx *Context) prepare() {
	ctx.clock.Tick()
}

// update 更新阶段，每步执行一次
// 功能：推进元胞自动机一步，输出结果并定期输出心跳日志
func (ctx *Context) update() error {
	if _, err := ctx.manager.Advance(); err != nil {
		return err
	}
	if err := ctx.writer.Write(output.NewFrame(ctx.manager)); err != nil {
		return err
	}
	ctx.heartbeat()
	return nil
}

// heartbeat 心跳日志，报告刚完成的一步
func (ctx *Context) heartbeat() {
	stats := ctx.manager.Stats()
	if *heartBeatInterval <= 0 || stats.Step%int32(*heartBeatInterval) != 0 {
		return
	}
	log.Infof(
		"STEP: %d (vehicles=%d mean_speed=%.3f lane_changes=%d collisions=%d)",
		stats.Step, stats.Vehicles, stats.MeanSpeed(), stats.LaneChanges, stats.Collisions,
	)
}

// Step 执行一步
// 说明：供Run与可视化界面调用，到达结束步后不再推进
func (ctx *Context) Step() error {
	if ctx.clock.Done() {
		return nil
	}
	ctx.prepare()
	log.Debugf("step %d: prepare complete", ctx.clock.InternalStep())
	if err := ctx.update(); err != nil {
		return err
	}
	log.Debugf("step %d: update complete", ctx.clock.InternalStep())
	return nil
}

// Done 是否已到达结束步或已关闭
func (ctx *Context) Done() bool {
	return ctx.clock.Done() || ctx.closed.Load()
}

// Run 运行
func (ctx *Context) Run() error {
	// 初始化
	if err := ctx.Init(); err != nil {
		return err
	}
	for !ctx.Done() {
		if err := ctx.Step(); err != nil {
			return err
		}
	}
	log.Infof("engine complete")
	return nil
}
