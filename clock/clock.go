package clock

import (
	"fmt"
	"sync/atomic"

	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/config"
)

// Clock 仿真时钟管理器
// 功能：管理仿真的离散步推进，一个元胞自动机步即一个时间单位
// 说明：当前步数原子更新，RPC读取与仿真推进可以并发进行
type Clock struct {
	clockv1connect.UnimplementedClockServiceHandler

	START_STEP int32 // 起始步
	END_STEP   int32 // 结束步，模拟区间[START, END)

	internalStep atomic.Int32 // 当前步数
}

// New 根据配置创建新的时钟实例
// 参数：stepConfig-控制步配置
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start + stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置为起始步
func (c *Clock) Init() {
	c.internalStep.Store(c.START_STEP)
}

// InternalStep 当前步数
func (c *Clock) InternalStep() int32 {
	return c.internalStep.Load()
}

// T 当前时间，以步为单位
func (c *Clock) T() float64 {
	return float64(c.InternalStep())
}

// Elapsed 自起始步以来完成的步数
func (c *Clock) Elapsed() int32 {
	return c.InternalStep() - c.START_STEP
}

// Tick 推进一步
// 返回：推进后的步数
func (c *Clock) Tick() int32 {
	return c.internalStep.Add(1)
}

// Done 是否已到达结束步
func (c *Clock) Done() bool {
	return c.InternalStep() >= c.END_STEP
}

// String 获取时钟的字符串表示
func (c *Clock) String() string {
	return fmt.Sprintf("step %d [%d, %d)", c.InternalStep(), c.START_STEP, c.END_STEP)
}
