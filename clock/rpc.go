package clock

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	clockv1 "git.fiblab.net/sim/protos/v2/go/city/clock/v1"
	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
)

// Register 将ClockService注册到HTTP路由
// 功能：注册时钟服务的RPC处理器
// 参数：mux-HTTP路由，opts-connect处理器选项
func (c *Clock) Register(mux *http.ServeMux, opts ...connect.HandlerOption) {
	mux.Handle(clockv1connect.NewClockServiceHandler(c, opts...))
}

// Now 获取当前仿真时间
// 功能：RPC接口，返回当前步数
func (c *Clock) Now(ctx context.Context, in *connect.Request[clockv1.NowRequest]) (*connect.Response[clockv1.NowResponse], error) {
	return connect.NewResponse(&clockv1.NowResponse{
		T: c.T(),
	}), nil
}
