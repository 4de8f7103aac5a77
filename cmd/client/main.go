package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ismaiel54/fix-counterparty-sim/internal/config"
	"github.com/ismaiel54/fix-counterparty-sim/internal/fixclient"
	"github.com/ismaiel54/fix-counterparty-sim/internal/fixgateway"
	"github.com/ismaiel54/fix-counterparty-sim/internal/logging"
	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/quickfix"
	"github.com/quickfixgo/tag"
	"go.uber.org/zap"
)

func main() {
	var (
		host       = flag.String("host", "127.0.0.1", "acceptor host")
		count      = flag.Int("count", 10, "number of orders to send")
		invalidPct = flag.Int("invalid-pct", 30, "percentage of orders that break one rule (0-100)")
		seed       = flag.Int64("seed", 42, "random seed for deterministic generation")
		wait       = flag.Duration("wait", 10*time.Second, "how long to wait for logon and responses")
	)
	flag.Parse()

	cfg := config.LoadConfig("client")

	logger, err := logging.NewLogger(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	settings, err := cfg.ClientSessionSettings(*host)
	if err != nil {
		logger.Fatal("invalid session settings", zap.Error(err))
	}

	// Every order gets one report and the market data request at most two
	// replies, all queued before the first read.
	app := fixclient.NewApplication(cfg.Username, cfg.Password, logger,
		fixclient.WithResponseBuffer(*count+2))
	initiator, err := quickfix.NewInitiator(app, quickfix.NewMemoryStoreFactory(), settings, fixgateway.NewZapLogFactory(logger))
	if err != nil {
		logger.Fatal("failed to create initiator", zap.Error(err))
	}
	if err := initiator.Start(); err != nil {
		logger.Fatal("failed to start initiator", zap.Error(err))
	}
	defer initiator.Stop()

	var sessionID quickfix.SessionID
	select {
	case sessionID = <-app.LoggedOn():
	case <-time.After(*wait):
		logger.Error("logon not accepted in time")
		os.Exit(1)
	}

	runID := uuid.NewString()[:8]
	logger.Info("sending orders", zap.String("run_id", runID), zap.Int("count", *count), zap.Int64("seed", *seed))
	gen := fixclient.NewOrderGenerator(*seed, runID, cfg.AcceptedSymbol, cfg.AcceptedAccount, *invalidPct)
	expected := make(map[string]bool, *count)
	for i := 0; i < *count; i++ {
		o := gen.Next()
		expected[o.ClOrdID] = o.Valid
		if err := quickfix.SendToTarget(fixclient.NewOrderSingle(o.Order, time.Now().UTC()), sessionID); err != nil {
			logger.Error("failed to send order", zap.String("cl_ord_id", o.ClOrdID), zap.Error(err))
			os.Exit(1)
		}
	}

	if err := quickfix.SendToTarget(fixclient.NewMarketDataRequest(uuid.NewString(), cfg.AcceptedSymbol), sessionID); err != nil {
		logger.Error("failed to send market data request", zap.Error(err))
		os.Exit(1)
	}

	var (
		accepted, rejected, mismatched int
		snapshots, statuses, mdRejects int
	)
	deadline := time.After(*wait)
	for accepted+rejected < *count || (snapshots+statuses < 2 && mdRejects == 0) {
		select {
		case resp := <-app.Responses():
			switch enum.MsgType(resp.MsgType) {
			case enum.MsgType_EXECUTION_REPORT:
				orderID, _ := resp.Message.Body.GetString(tag.OrderID)
				execType, _ := resp.Message.Body.GetString(tag.ExecType)
				ok := execType == string(enum.ExecType_PENDING_NEW)
				if ok {
					accepted++
				} else {
					rejected++
				}
				if expected[orderID] != ok {
					mismatched++
					logger.Warn("unexpected outcome", zap.String("cl_ord_id", orderID), zap.Bool("accepted", ok))
				}
			case enum.MsgType_MARKET_DATA_SNAPSHOT_FULL_REFRESH:
				snapshots++
			case enum.MsgType_SECURITY_STATUS:
				statuses++
			case enum.MsgType_MARKET_DATA_REQUEST_REJECT:
				mdRejects++
			}
		case <-deadline:
			logger.Error("timed out waiting for responses",
				zap.Int("reports", accepted+rejected),
				zap.Int("expected", *count),
			)
			os.Exit(1)
		}
	}

	fmt.Printf("\n=== Client Summary ===\n")
	fmt.Printf("Orders sent: %d\n", *count)
	fmt.Printf("Accepted: %d\n", accepted)
	fmt.Printf("Rejected: %d\n", rejected)
	fmt.Printf("Unexpected outcomes: %d\n", mismatched)
	fmt.Printf("Snapshots: %d, security status: %d, md rejects: %d\n", snapshots, statuses, mdRejects)
	fmt.Printf("\n")

	if mismatched > 0 {
		os.Exit(1)
	}
}
