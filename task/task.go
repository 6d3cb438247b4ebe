package task

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tsinghua-fib-lab/hcca-sim/clock"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/hcca-sim/output"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/config"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/input"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/randengine"
)

// waitForServerReady 等待服务器就绪
// 功能：通过HTTP请求检查服务器是否已经启动并可以响应
// 参数：addr-服务器地址，retryCount-重试次数，interval-重试间隔
// 返回：错误信息，如果服务器就绪则返回nil
func waitForServerReady(addr string, retryCount int, interval time.Duration) error {
	client := &http.Client{
		Timeout: interval,
	}
	for range retryCount {
		resp, err := client.Get(addr)
		if err == nil {
			resp.Body.Close()
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("server `%v` did not become ready after %d retries", addr, retryCount)
}

// serverReady 启动RPC服务后的就绪检查
var serverReady = waitForServerReady

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态
// 说明：管理时钟、步进引擎、输出与RPC服务
type Context struct {
	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock
	// 随机数引擎
	rnd *randengine.Engine
	// 步进引擎
	manager *vehicle.Manager

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig

	// 输出
	writer     output.Writer
	history    *output.History
	statistics *output.Statistics

	// RPC服务，未监听时为nil
	server        *http.Server
	addr          string
	serverCloseCh chan struct{}
}

// NewContext 创建新的仿真任务上下文
// 功能：初始化仿真任务的所有组件
// 参数：
//   - job: 任务名称，默认作为轨迹输出的集合名
//   - listen: RPC服务监听地址，为空则不提供RPC服务
//   - c: 已校验的配置
//
// 返回：初始化完成的Context实例，初始状态或输出创建失败时返回错误
// 算法说明：
// 1. 创建时钟与随机数引擎
// 2. 从文件加载或按密度随机生成初始状态，创建步进引擎
// 3. 创建统计量、时空图历史与MongoDB输出
// 4. 注册时钟与元胞状态查询服务并开始监听
func NewContext(job string, listen string, c config.Config) (*Context, error) {
	ctx := &Context{
		job:           job,
		runtimeConfig: config.NewRuntimeConfig(c, job),
		serverCloseCh: make(chan struct{}),
	}
	rc := ctx.runtimeConfig
	ctx.clock = clock.New(rc.C.Step)
	ctx.rnd = randengine.New(rc.C.Seed)
	log.Infof("job %s: seed=%d", job, ctx.rnd.Seed())

	var err error
	if rc.All.Input.File != "" {
		l, lErr := input.Load(rc.All.Input.File)
		if lErr != nil {
			return nil, lErr
		}
		ctx.manager, err = vehicle.NewManagerWithLattice(rc.M, rc.All.Utility, ctx.rnd, l)
	} else {
		ctx.manager, err = vehicle.NewManager(rc.M, rc.All.Utility, ctx.rnd)
	}
	if err != nil {
		return nil, err
	}

	ctx.statistics = output.NewStatistics(rc.All.Output.Warmup)
	writers := []output.Writer{ctx.statistics}
	if rc.All.Output.History > 0 {
		ctx.history = output.NewHistory(rc.All.Output.History)
		writers = append(writers, ctx.history)
	}
	if rc.All.Output.Mongo != nil {
		writers = append(writers, output.NewMongoWriter(*rc.All.Output.Mongo))
	}
	ctx.writer = output.Multi(writers...)

	if listen != "" {
		if err := ctx.serve(listen); err != nil {
			ctx.writer.Close()
			return nil, err
		}
	}
	return ctx, nil
}

// serve 注册RPC服务并开始监听
func (ctx *Context) serve(listen string) error {
	mux := http.NewServeMux()
	ctx.clock.Register(mux)
	ctx.manager.Register(mux)

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("task: listen %s: %w", listen, err)
	}
	ctx.addr = ln.Addr().String()
	ctx.server = &http.Server{Handler: mux}
	go func() {
		if err := ctx.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panicf("failed to serve: %v", err)
		}
		close(ctx.serverCloseCh)
	}()
	if err := serverReady("http://"+ctx.addr, 10, 100*time.Millisecond); err != nil {
		ctx.server.Close()
		<-ctx.serverCloseCh
		ctx.server = nil
		return err
	}
	log.Infof("rpc server listening on %s", ctx.addr)
	return nil
}

// Addr RPC服务实际监听的地址，未监听时为空
func (ctx *Context) Addr() string {
	return ctx.addr
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) Manager() *vehicle.Manager {
	return ctx.manager
}

// History 时空图历史，output.history为0时为nil
func (ctx *Context) History() *output.History {
	return ctx.history
}

func (ctx *Context) Statistics() *output.Statistics {
	return ctx.statistics
}

// Init 重置时钟并输出初始状态
func (ctx *Context) Init() error {
	ctx.clock.Init()
	l := ctx.manager.Lattice()
	log.Infof("%s: length=%d vehicles=%d steps=[%d, %d)",
		ctx.runtimeConfig.M.Variant, l.Length(), l.Total(), ctx.clock.START_STEP, ctx.clock.END_STEP)
	return ctx.writer.Write(output.NewFrame(ctx.manager))
}

// Close 关闭输出与RPC服务，可以重复调用
func (ctx *Context) Close() error {
	if ctx.closed.Swap(true) {
		return nil
	}
	err := ctx.writer.Close()
	if ctx.server != nil {
		if sErr := ctx.server.Shutdown(context.Background()); sErr != nil {
			log.Warnf("rpc server shutdown err: %v", sErr)
		}
		// wait for graceful stop
		<-ctx.serverCloseCh
	}
	return err
}
