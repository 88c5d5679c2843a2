package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	"liyu1981.xyz/water-quality-dashboard/pkg/cache"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/config"
	"liyu1981.xyz/water-quality-dashboard/pkg/db"
	wqGrpc "liyu1981.xyz/water-quality-dashboard/pkg/grpc"
	wqHttp "liyu1981.xyz/water-quality-dashboard/pkg/http"
	"liyu1981.xyz/water-quality-dashboard/pkg/live"
	"liyu1981.xyz/water-quality-dashboard/pkg/monitor"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration, copy .env.example to .env first if in development: ", err)
	}

	var dialector gorm.Dialector
	switch cfg.DBType {
	case config.DBTypeFile:
		dialector = db.UseSqliteDialector()
	case config.DBTypeMemory:
		dialector = db.UseMemorySqliteDialector()
	case config.DBTypePostgres:
		dialector = db.UsePostgresDialector()
	}
	dbInstance := db.GetInstance(dialector)

	logger := common.GetLogger()
	defer common.SyncLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mon := (&monitor.Monitor{
		Db: *dbInstance,
	}).WithDefaultServices()

	var snapshots *cache.SnapshotCache
	registryOpts := live.RegistryOpts{
		Variant:        cfg.Variant,
		Interval:       cfg.PollInterval,
		DefaultBaseURL: cfg.DeviceBaseURL,
		DeviceTimeout:  cfg.DeviceTimeout,
	}
	if cfg.Redis.Addr != "" {
		snapshots = cache.NewSnapshotCache(cache.NewRedisClient(cfg.Redis), cfg.Redis.TTL)
		if err := snapshots.Ping(ctx); err != nil {
			// polling keeps working, only the mirror is lost
			logger.Warn("Redis not reachable, live snapshots will not be mirrored", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		registryOpts.Mirror = snapshots
		defer func() { _ = snapshots.Close() }()
	}
	pollers := live.NewRegistry(registryOpts)
	defer pollers.Close()

	newLimiterStore := func() *monitor.RateLimiterStore {
		if !cfg.LimiterEnabled {
			return nil
		}
		return monitor.NewRateLimiterStore(cfg.DefaultRate, cfg.DefaultBurst)
	}
	limiterField := zap.String("default_limiter",
		fmt.Sprintf("{\"enabled\": %v, \"default_rate\": %v, \"default_burst\": %v}", cfg.LimiterEnabled, cfg.DefaultRate, cfg.DefaultBurst))

	var grpcServer *grpc.Server
	if cfg.GrpcHostPort != "" {
		liveServer := &wqGrpc.LiveServer{
			Monitor:          mon,
			Pollers:          pollers,
			RateLimiterStore: newLimiterStore(),
		}
		if snapshots != nil {
			liveServer.Snapshots = snapshots
		}
		interceptor := liveServer.CreateRateLimitInterceptor([]string{
			wqGrpc.LiveServiceGetLiveMethod,
			wqGrpc.LiveServiceStartTestMethod,
		})
		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(interceptor))
		wqGrpc.RegisterLiveServiceServer(grpcServer, liveServer)
		logger.Info("gRPC server created with:", limiterField)

		listener, err := net.Listen("tcp", cfg.GrpcHostPort)
		if err != nil {
			log.Fatalf("failed to listen: %v", err)
		}

		go func() {
			logger.Info("start gRPC server on " + cfg.GrpcHostPort)
			if err := grpcServer.Serve(listener); err != nil {
				logger.Error("grpc server failed to serve", zap.Error(err))
				stop()
			}
		}()
	}

	rs := &wqHttp.RestfulServer{
		Server:           gin.Default(),
		Monitor:          mon,
		Pollers:          pollers,
		RateLimiterStore: newLimiterStore(),
		Location:         cfg.Location,
		HistoryLimit:     cfg.HistoryLimit,
		PollInterval:     cfg.PollInterval,
		VariantName:      cfg.Variant.Name,
	}
	rs.Setup()
	logger.Info("http server created with:", limiterField, zap.String("variant", cfg.Variant.Name))

	httpServer := &http.Server{
		Addr:    cfg.HttpHostPort,
		Handler: rs.Server,
	}
	go func() {
		logger.Info("Starting HTTP server on: " + cfg.HttpHostPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed to serve", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}
