package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/TomasB/geodb/internal/auth"
	"github.com/TomasB/geodb/internal/config"
	"github.com/TomasB/geodb/internal/data"
	"github.com/TomasB/geodb/internal/geo"
	grpchandler "github.com/TomasB/geodb/internal/handler/grpc"
	"github.com/TomasB/geodb/internal/handler/health"
	"github.com/TomasB/geodb/internal/handler/lookup"
	"github.com/TomasB/geodb/internal/logging"
	"github.com/TomasB/geodb/internal/metrics"
	"github.com/TomasB/geodb/internal/syncer"
	geodbv1 "github.com/TomasB/geodb/pkg/geodb/v1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Validate has already checked both values.
	logLevel, _ := logging.ParseLevel(cfg.LogLevel)
	logFormat, _ := logging.ParseFormat(cfg.LogFormat)
	logger := logging.New(os.Stdout, logLevel, logFormat)
	slog.SetDefault(logger)

	slog.Info("service starting", "log_level", logLevel.String(), "log_format", string(logFormat))

	if err := run(cfg, logger, logLevel); err != nil {
		slog.Error("service failed", "error", err)
		os.Exit(1)
	}

	slog.Info("service stopped")
}

func run(cfg *config.Config, logger *slog.Logger, logLevel slog.Level) error {
	keys, err := auth.LoadFile(cfg.AuthFile)
	if err != nil {
		return err
	}
	if keys.Len() == 0 {
		slog.Warn("no authorized keys loaded, every lookup will be rejected", "auth_file", cfg.AuthFile)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewInstrumentation(reg)
	m.SetAuthorizedKeys(keys.Len())

	dataset := geo.NewDataset()
	gate := geo.NewGate()

	source := data.NewFileSource(logger, data.FileSourceConfig{
		CountriesPath: cfg.CountriesPath,
		CountryDBPath: cfg.CountryDBPath,
		CityDBPath:    cfg.CityDBPath,
		ASNDBPath:     cfg.ASNDBPath,
	})
	coordinator := geo.NewCoordinator(geo.CoordinatorConfig{
		Logger:  logger,
		Dataset: dataset,
		Gate:    gate,
		Sources: source,
		Metrics: m,
	})
	fileSyncer, err := syncer.New(syncer.Config{
		Logger:   logger,
		Paths:    source.Paths(),
		Watch:    cfg.SyncWatch,
		Interval: cfg.SyncInterval,
		Debounce: cfg.SyncDebounce,
	})
	if err != nil {
		return fmt.Errorf("failed to create syncer: %w", err)
	}

	// Set Gin mode based on log level
	if logLevel == slog.LevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(ginLogger(logger))
	router.Use(gin.Recovery())

	healthHandler := health.NewHandler(gate, dataset)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	lookup.NewHandler(logger, dataset, keys, m).Register(router, gate)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(int(cfg.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	signals := make(chan geo.RefreshSignal, 10)
	g.Go(func() error {
		return fileSyncer.Run(ctx, signals)
	})
	g.Go(func() error {
		if err := coordinator.Run(ctx, signals); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		watchStartup(ctx, gate, cfg.InitWarnAfter)
		return nil
	})

	g.Go(func() error {
		slog.Info("service started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("service shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if cfg.GRPCPort != 0 {
		if err := serveGRPC(ctx, g, cfg, logger, dataset, keys, gate, m); err != nil {
			stop()
			_ = g.Wait()
			return err
		}
	}

	return g.Wait()
}

func serveGRPC(
	ctx context.Context,
	g *errgroup.Group,
	cfg *config.Config,
	logger *slog.Logger,
	dataset *geo.Dataset,
	keys *auth.KeySet,
	gate *geo.Gate,
	m *metrics.Instrumentation,
) error {
	lis, err := net.Listen("tcp", ":"+strconv.Itoa(int(cfg.GRPCPort)))
	if err != nil {
		return fmt.Errorf("failed to listen for grpc: %w", err)
	}

	server := grpc.NewServer(geodbv1.ServerCodec())
	geodbv1.RegisterGeoDBServiceServer(server, grpchandler.NewHandler(logger, dataset, keys, gate, m))
	hs := grpchandler.NewHealthServer()
	healthpb.RegisterHealthServer(server, hs)

	g.Go(func() error {
		grpchandler.ServeHealth(ctx, gate, hs)
		return nil
	})
	g.Go(func() error {
		slog.Info("grpc server started", "port", cfg.GRPCPort)
		if err := server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		hs.Shutdown()

		stopped := make(chan struct{})
		go func() {
			server.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-time.After(cfg.ShutdownTimeout):
			server.Stop()
		}
		return nil
	})

	return nil
}

// watchStartup logs an error every period while the gate stays closed.
func watchStartup(ctx context.Context, gate *geo.Gate, period time.Duration) {
	start := time.Now()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-gate.Done():
			slog.Info("dataset ready", "startup_duration_ms", time.Since(start).Milliseconds())
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			slog.Error("dataset still not ready, lookups are being held", "waiting_for", time.Since(start).Round(time.Second).String())
		}
	}
}

// ginLogger creates a Gin middleware that logs using slog.  Request headers
// are never logged, so keys stay out of the logs.
func ginLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		// Process request
		c.Next()

		// Log request
		duration := time.Since(start)
		statusCode := c.Writer.Status()

		attrs := []any{
			"method", method,
			"route", route,
			"status", statusCode,
			"duration_ms", duration.Milliseconds(),
		}

		if len(c.Errors) > 0 {
			logger.Error("request completed with errors", append(attrs, "errors", c.Errors.String())...)
		} else if statusCode >= 500 {
			logger.Error("request completed", attrs...)
		} else if statusCode >= 400 {
			logger.Warn("request completed", attrs...)
		} else {
			logger.Debug("request completed", attrs...)
		}
	}
}
