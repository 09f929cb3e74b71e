package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/wyfcoding/optionstrategy/internal/strategy/application"
	"github.com/wyfcoding/optionstrategy/internal/strategy/infrastructure/marketdata"
	"github.com/wyfcoding/optionstrategy/internal/strategy/infrastructure/messaging"
	"github.com/wyfcoding/optionstrategy/internal/strategy/infrastructure/pricing"
	grpcserver "github.com/wyfcoding/optionstrategy/internal/strategy/interfaces/grpc"
	httphandler "github.com/wyfcoding/optionstrategy/internal/strategy/interfaces/http"
	"github.com/wyfcoding/optionstrategy/pkg/config"
	"github.com/wyfcoding/optionstrategy/pkg/logger"
	"github.com/wyfcoding/optionstrategy/pkg/metrics"
	"github.com/wyfcoding/optionstrategy/pkg/middleware"
	"github.com/wyfcoding/optionstrategy/pkg/mq"
	"github.com/wyfcoding/optionstrategy/pkg/ratelimit"
)

const BootstrapName = "strategy"

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:           BootstrapName,
		Short:         "Multi-leg option strategy pricing service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "configs/strategy/config.toml", "config file path")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		return err
	}
	logger.Info(ctx, "initializing service dependencies...", "service", cfg.ServiceName, "version", cfg.Version, "env", cfg.Environment)

	m := metrics.New(cfg.ServiceName)

	var limiter ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewLocalRateLimiter(ratelimit.Limit{Rate: cfg.RateLimit.Rate, Burst: cfg.RateLimit.Burst})
	}

	opts := []application.Option{
		application.WithMetrics(m),
		application.WithTimeout(cfg.Pricing.Timeout()),
	}
	var producer *mq.KafkaProducer
	if cfg.Kafka.Enabled {
		producer, err = mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			return err
		}
		defer producer.Close()
		opts = append(opts, application.WithPublisher(messaging.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)))
	}

	strategySvc := application.NewStrategyService(pricing.NewEngine(cfg.Pricing.BinomialSteps), opts...)
	marketSvc := application.NewMarketService(marketdata.NewHTTPProvider(cfg.MarketData), m)

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      newRouter(cfg, m, limiter, httphandler.NewStrategyHandler(strategySvc, marketSvc)),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
	grpcSrv := grpcserver.NewServer(grpcserver.Options{
		MaxConcurrentStreams: uint32(cfg.GRPC.MaxConcurrentStreams),
		Metrics:              m,
		Limiter:              limiter,
	})
	lis, err := net.Listen("tcp", cfg.GRPC.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPC.Addr(), err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info(ctx, "gRPC server listening", "addr", lis.Addr().String())
		if err := grpcSrv.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
		logger.Error(ctx, "server stopped unexpectedly", "error", err)
	}

	logger.Info(context.Background(), "shutting down...")
	grpcSrv.Drain()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := httpSrv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error(shutdownCtx, "HTTP shutdown failed", "error", shutdownErr)
	}
	grpcSrv.GracefulStop()
	return err
}

func newRouter(cfg *config.Config, m *metrics.Metrics, limiter ratelimit.RateLimiter, h *httphandler.StrategyHandler) *gin.Engine {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.GinRecoveryMiddleware(), middleware.GinLoggingMiddleware(), middleware.GinCORSMiddleware())
	if cfg.Metrics.Enabled {
		r.Use(middleware.GinMetricsMiddleware(m))
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	api := r.Group("")
	if limiter != nil {
		api.Use(middleware.RateLimitMiddleware(limiter))
	}
	h.RegisterRoutes(api)
	return r
}
