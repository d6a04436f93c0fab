package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/kevin07696/ach-processor/internal/adapters/postgres"
	"github.com/kevin07696/ach-processor/internal/calendar"
	"github.com/kevin07696/ach-processor/internal/config"
	achHandler "github.com/kevin07696/ach-processor/internal/handlers/ach"
	cronHandler "github.com/kevin07696/ach-processor/internal/handlers/cron"
	"github.com/kevin07696/ach-processor/internal/nacha"
	"github.com/kevin07696/ach-processor/internal/services/ach"
	"github.com/kevin07696/ach-processor/internal/services/outbox"
	"github.com/kevin07696/ach-processor/pkg/middleware"
	"github.com/kevin07696/ach-processor/pkg/observability"
	"github.com/kevin07696/ach-processor/pkg/resilience"
	"github.com/kevin07696/ach-processor/pkg/security"
	"github.com/kevin07696/ach-processor/pkg/shutdown"
	"github.com/kevin07696/ach-processor/pkg/timeutil"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	zlog, err := security.NewZapLoggerForLevel(cfg.Logger.Level, cfg.Logger.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()
	logger := security.NewZapLogger(zlog)

	zlog.Info("Starting ACH processor",
		zap.String("version", version),
		zap.Bool("test_mode", cfg.ACH.TestMode),
		zap.String("tokenizer", cfg.Tokenizer.Backend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownMgr := shutdown.NewManager(zlog, cfg.Server.ShutdownTimeout)
	healthChecker := observability.NewHealthChecker()
	timeouts := resilience.DefaultTimeoutConfig()

	st, err := initStores(ctx, cfg, logger, zlog)
	if err != nil {
		return fmt.Errorf("init stores: %w", err)
	}
	if st.pool != nil {
		healthChecker.AddDatabase(st.pool)
		postgres.StartPoolMonitoring(ctx, st.pool, poolMonitorInterval, logger)
		shutdownMgr.RegisterNoErr("database", st.pool.Close)
	}

	tok, err := initTokenizer(ctx, cfg.Tokenizer, logger)
	if err != nil {
		return fmt.Errorf("init tokenizer: %w", err)
	}

	paymentSink, err := initSink(cfg.Outbox, logger)
	if err != nil {
		return err
	}

	cal := calendar.NewBusinessCalendar(calendar.ByName(cfg.ACH.HolidayCalendar))
	formatter := nacha.NewFormatter(nacha.Config{
		ImmediateDestination:     cfg.NACHA.ImmediateDestination,
		ImmediateDestinationName: cfg.NACHA.ImmediateDestinationName,
		ImmediateOrigin:          cfg.NACHA.ImmediateOrigin,
		ImmediateOriginName:      cfg.NACHA.ImmediateOriginName,
		CompanyName:              cfg.ACH.OriginatorName,
		CompanyID:                cfg.ACH.CompanyID,
		OriginRoutingNumber:      cfg.ACH.OriginRoutingNumber,
		EntryDescription:         cfg.NACHA.EntryDescription,
		FileIDModifier:           cfg.NACHA.FileIDModifier,
	}, cal)

	queue := outbox.NewQueue(st.outbox, logger)
	validator := ach.NewValidator(cfg.ACH.TestMode, st.verifications, timeouts, logger)
	processor := ach.NewProcessor(ach.Config{
		OriginatorID:        cfg.ACH.OriginatorID,
		OriginatorName:      cfg.ACH.OriginatorName,
		CompanyID:           cfg.ACH.CompanyID,
		OriginRoutingNumber: cfg.ACH.OriginRoutingNumber,
		OrganizationID:      cfg.ACH.OrganizationID,
		TestMode:            cfg.ACH.TestMode,
		StrictNACHAVerify:   cfg.ACH.StrictNACHAVerify,
	}, validator, tok, queue, cal, formatter, logger,
		ach.WithDeadLetterRecorder(queue),
		ach.WithScheduleStore(st.schedules),
		ach.WithTimeouts(timeouts),
		ach.WithTraceSequence(ach.NewClockSeededTraceSequence(cfg.ACH.OriginRoutingNumber, timeutil.Now())),
	)

	mux := http.NewServeMux()
	achHandler.NewHandler(processor, validator, timeouts, zlog).RegisterRoutes(mux)
	cronHandler.NewVerificationHandler(st.verifications, timeouts, zlog, cfg.Cron.Secret).RegisterRoutes(mux)
	cronHandler.NewRecurringHandler(st.schedules, timeouts, zlog, cfg.Cron.Secret).RegisterRoutes(mux)

	var dispatcher *outbox.Dispatcher
	if paymentSink != nil {
		dispatcher = outbox.NewDispatcher(st.outbox, paymentSink, logger,
			outbox.WithBatchSize(cfg.Outbox.BatchSize),
			outbox.WithDispatcherTimeouts(timeouts),
		)
		cronHandler.NewOutboxHandler(dispatcher, timeouts, zlog, cfg.Cron.Secret).RegisterRoutes(mux)
	} else {
		zlog.Warn("SYNC_MANAGER_URL is not set, queued payments stay in the outbox until it is")
	}

	if dispatcher != nil && cfg.Outbox.DispatcherEnabled {
		worker := shutdown.NewBackgroundWorker("outbox-dispatcher", zlog)
		worker.Start(func(ctx context.Context) {
			dispatcher.Run(ctx, cfg.Outbox.DispatchInterval)
		})
		shutdownMgr.Register("outbox-dispatcher", worker.Shutdown)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, zlog)
	shutdownMgr.RegisterNoErr("rate-limiter", rateLimiter.Shutdown)

	grpcServer, grpcHealth := newGRPCServer(zlog)
	grpcAddr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.GRPCPort))
	listener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", grpcAddr, err)
	}
	go func() {
		zlog.Info("gRPC health server listening", zap.String("address", listener.Addr().String()))
		if err := grpcServer.Serve(listener); err != nil {
			zlog.Error("gRPC server stopped", zap.Error(err))
		}
	}()
	shutdownMgr.RegisterNoErr("grpc", func() {
		grpcHealth.Shutdown()
		grpcServer.GracefulStop()
	})

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.HTTPPort)),
		Handler:           rateLimiter.Middleware(observability.HTTPMiddleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		zlog.Info("HTTP API listening", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("HTTP server stopped", zap.Error(err))
			cancel()
		}
	}()
	shutdownMgr.RegisterHTTPServer("http", httpServer)

	metricsServer := observability.StartMetricsServer(strconv.Itoa(cfg.Server.MetricsPort), healthChecker, zlog)
	shutdownMgr.Register("metrics", func(context.Context) error {
		return observability.ShutdownMetricsServer(metricsServer)
	})

	healthChecker.SetReady(true)
	grpcHealth.SetServingStatus(achServiceName, healthpb.HealthCheckResponse_SERVING)
	zlog.Info("ACH processor ready")

	errs := shutdownMgr.WaitForShutdown(ctx)
	healthChecker.SetReady(false)
	if len(errs) > 0 {
		return fmt.Errorf("shutdown finished with %d errors", len(errs))
	}
	zlog.Info("ACH processor stopped")
	return nil
}
