package vehicle

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/hcca-sim/entity"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/lattice"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// LatticeServiceName 元胞状态查询服务名
	LatticeServiceName = "hcca.lattice.v1.LatticeService"
	// GetLatticeProcedure 查询当前元胞状态
	GetLatticeProcedure = "/" + LatticeServiceName + "/GetLattice"
	// GetStatsProcedure 查询最近一步的统计
	GetStatsProcedure = "/" + LatticeServiceName + "/GetStats"
)

// Register 将元胞状态查询服务注册到HTTP路由
// 功能：注册LatticeService的RPC处理器
// 参数：mux-HTTP路由，opts-connect处理器选项
// 说明：响应使用google.protobuf.Struct，不需要额外的protobuf定义
func (m *Manager) Register(mux *http.ServeMux, opts ...connect.HandlerOption) {
	mux.Handle(GetLatticeProcedure, connect.NewUnaryHandler(GetLatticeProcedure, m.GetLattice, opts...))
	mux.Handle(GetStatsProcedure, connect.NewUnaryHandler(GetStatsProcedure, m.GetStats, opts...))
}

// LatticeToStruct 将元胞状态转换为protobuf Struct
// 功能：每条车道转换为一个列表，空元胞为null，有车元胞为车辆速度
func LatticeToStruct(step int32, l *lattice.Lattice) (*structpb.Struct, error) {
	lanes := lo.Times(entity.NumLanes, func(lane int) any {
		return lo.Map(l.Speeds(lane), func(speed int, _ int) any {
			if speed == lattice.Empty {
				return nil
			}
			return speed
		})
	})
	return structpb.NewStruct(map[string]any{
		"step":   int(step),
		"length": l.Length(),
		"lanes":  lanes,
	})
}

// StatsToStruct 将单步统计转换为protobuf Struct
func StatsToStruct(s StepStats) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"step":         int(s.Step),
		"vehicles":     s.Vehicles,
		"lane_changes": s.LaneChanges,
		"slow_downs":   s.SlowDowns,
		"collisions":   s.Collisions,
		"mean_speed":   s.MeanSpeed(),
	})
}

// GetLattice 获取当前元胞状态
func (m *Manager) GetLattice(ctx context.Context, in *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	l, stats := m.Current()
	res, err := LatticeToStruct(stats.Step, l)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(res), nil
}

// GetStats 获取最近一步的统计
func (m *Manager) GetStats(ctx context.Context, in *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
	res, err := StatsToStruct(m.Stats())
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(res), nil
}
