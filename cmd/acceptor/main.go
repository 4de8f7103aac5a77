package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ismaiel54/fix-counterparty-sim/internal/builder"
	"github.com/ismaiel54/fix-counterparty-sim/internal/chaos"
	"github.com/ismaiel54/fix-counterparty-sim/internal/config"
	"github.com/ismaiel54/fix-counterparty-sim/internal/dropcopy"
	"github.com/ismaiel54/fix-counterparty-sim/internal/fixgateway"
	"github.com/ismaiel54/fix-counterparty-sim/internal/handler"
	"github.com/ismaiel54/fix-counterparty-sim/internal/logging"
	"github.com/ismaiel54/fix-counterparty-sim/internal/msg"
	"github.com/ismaiel54/fix-counterparty-sim/internal/observability"
	"github.com/ismaiel54/fix-counterparty-sim/internal/rules"
	"github.com/quickfixgo/quickfix"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	cfg := config.LoadConfig("acceptor")

	logger, err := logging.NewLogger(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting FIX acceptor",
		zap.String("fix_addr", cfg.FIXAddr()),
		zap.String("begin_string", cfg.BeginString),
		zap.String("sender_comp_id", cfg.SenderCompID),
		zap.String("symbol", cfg.AcceptedSymbol),
		zap.String("account", cfg.AcceptedAccount),
		zap.Bool("orders", cfg.EnableOrders),
		zap.Bool("market_data", cfg.EnableMarketData),
		zap.Bool("dropcopy", cfg.DropCopyEnabled),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.Int("http_port", cfg.HTTPPort),
	)

	metrics := observability.NewMetrics()
	healthChecker := observability.NewHealthChecker(logger, metrics.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Outbound path: quickfix session <- chaos <- drop copy journal <- handler
	sessions := fixgateway.NewSessions()
	var dispatcher handler.Dispatcher = fixgateway.NewDispatcher(sessions, nil)

	chaosCfg := chaos.LoadConfig()
	if chaosCfg.Enabled {
		logger.Warn("chaos enabled",
			zap.String("profile", chaosCfg.Profile),
			zap.String("target_session", chaosCfg.TargetSession),
			zap.Int64("seed", chaosCfg.Seed),
		)
		dispatcher = chaos.NewDispatcher(dispatcher, chaos.New(chaosCfg, logger.Named("chaos")))
	}

	publisherErrCh := make(chan error, 1)
	if cfg.DropCopyEnabled {
		dbPath := filepath.Join(cfg.DataDir, "dropcopy.db")
		store, err := dropcopy.Open(dbPath)
		if err != nil {
			logger.Fatal("failed to open drop copy outbox", zap.Error(err))
		}
		defer store.Close()
		logger.Info("drop copy outbox opened", zap.String("path", dbPath))

		dispatcher = dropcopy.NewJournal(dispatcher, store, logger.Named("dropcopy"),
			dropcopy.WithJournalMetrics(metrics))

		producer, err := msg.NewProducer(cfg.Brokers(), cfg.ServiceName, logger)
		if err != nil {
			logger.Fatal("failed to create kafka producer", zap.Error(err))
		}
		defer producer.Close()

		healthChecker.SetKafkaReady(false)
		go waitForKafka(ctx, producer, healthChecker, logger)

		publisher := dropcopy.NewPublisher(store, producer, logger.Named("dropcopy"), metrics)
		go func() {
			if err := publisher.Run(ctx); err != nil && err != context.Canceled {
				publisherErrCh <- err
			}
		}()
	}

	h := handler.New(
		rules.New(cfg.Rules()),
		builder.New(),
		dispatcher,
		logger.Named("handler"),
		handler.WithFeatures(cfg.Features()),
		handler.WithMetrics(metrics),
	)
	app := fixgateway.NewApplication(h, sessions, logger.Named("fix"))

	settings, err := cfg.SessionSettings()
	if err != nil {
		logger.Fatal("invalid session settings", zap.Error(err))
	}

	acceptor, err := quickfix.NewAcceptor(app, quickfix.NewMemoryStoreFactory(), settings, fixgateway.NewZapLogFactory(logger))
	if err != nil {
		logger.Fatal("failed to create FIX acceptor", zap.Error(err))
	}
	if err := acceptor.Start(); err != nil {
		logger.Fatal("failed to start FIX acceptor", zap.Error(err))
	}
	healthChecker.SetAcceptorReady(true)
	logger.Info("FIX acceptor listening", zap.String("addr", cfg.FIXAddr()))

	grpcServer := grpc.NewServer()
	healthChecker.RegisterGRPC(grpcServer)

	grpcListener, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		logger.Fatal("failed to listen on gRPC port", zap.Error(err))
	}

	grpcErrCh := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr()))
		if err := grpcServer.Serve(grpcListener); err != nil {
			grpcErrCh <- err
		}
	}()

	httpErrCh := make(chan error, 1)
	go func() {
		if err := healthChecker.StartHTTPServer(cfg.HTTPAddr()); err != nil && err != http.ErrServerClosed {
			httpErrCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-grpcErrCh:
		logger.Error("gRPC server error", zap.Error(err))
	case err := <-httpErrCh:
		logger.Error("HTTP server error", zap.Error(err))
	case err := <-publisherErrCh:
		logger.Error("drop copy publisher error", zap.Error(err))
	}

	logger.Info("shutting down gracefully...")

	healthChecker.SetAcceptorReady(false)
	acceptor.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := healthChecker.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down health checker", zap.Error(err))
	}

	grpcServer.GracefulStop()

	logger.Info("FIX acceptor stopped")
}

// waitForKafka marks Kafka ready once a broker answers. Until then drop
// copies queue in the outbox.
func waitForKafka(ctx context.Context, producer *msg.Producer, healthChecker *observability.HealthChecker, logger *zap.Logger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := producer.Ping(pingCtx)
		cancel()
		if err == nil {
			healthChecker.SetKafkaReady(true)
			logger.Info("kafka reachable")
			return
		}
		logger.Warn("kafka not reachable yet", zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
