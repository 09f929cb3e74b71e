// Package grpc 策略服务的 gRPC 入口：健康检查与反射，统一挂载日志、恢复、限流与指标拦截器
package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/wyfcoding/optionstrategy/pkg/metrics"
	"github.com/wyfcoding/optionstrategy/pkg/middleware"
	"github.com/wyfcoding/optionstrategy/pkg/ratelimit"
)

// ServiceName 健康检查中登记的服务名
const ServiceName = "optionstrategy.v1.StrategyService"

// Options gRPC 服务端构造参数，各项均可为零值
type Options struct {
	MaxConcurrentStreams uint32
	Metrics              *metrics.Metrics
	Limiter              ratelimit.RateLimiter
}

// Server 持有底层 grpc.Server 与健康状态
type Server struct {
	*grpc.Server
	health *health.Server
}

// NewServer 创建服务端并注册健康检查与反射
func NewServer(opts Options) *Server {
	interceptors := []grpc.UnaryServerInterceptor{
		middleware.GRPCRecoveryInterceptor(),
		middleware.GRPCLoggingInterceptor(),
	}
	if opts.Metrics != nil {
		interceptors = append(interceptors, middleware.GRPCMetricsInterceptor(opts.Metrics))
	}
	if opts.Limiter != nil {
		interceptors = append(interceptors, middleware.GRPCRateLimitInterceptor(opts.Limiter))
	}

	serverOpts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(interceptors...)}
	if opts.MaxConcurrentStreams > 0 {
		serverOpts = append(serverOpts, grpc.MaxConcurrentStreams(opts.MaxConcurrentStreams))
	}

	s := &Server{Server: grpc.NewServer(serverOpts...), health: health.NewServer()}
	healthpb.RegisterHealthServer(s.Server, s.health)
	reflection.Register(s.Server)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// Drain 关闭前把所有服务标记为 NOT_SERVING
func (s *Server) Drain() {
	s.health.Shutdown()
}
