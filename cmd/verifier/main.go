package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ismaiel54/fix-counterparty-sim/internal/dropcopy"
	"github.com/ismaiel54/fix-counterparty-sim/internal/logging"
	"github.com/ismaiel54/fix-counterparty-sim/internal/msg"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <duration_seconds> [brokers]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Example: %s 30 127.0.0.1:9092\n", os.Args[0])
		os.Exit(1)
	}

	var durationSeconds int
	if _, err := fmt.Sscanf(os.Args[1], "%d", &durationSeconds); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid duration: %v\n", err)
		os.Exit(1)
	}

	brokers := "127.0.0.1:9092"
	if len(os.Args) >= 3 {
		brokers = os.Args[2]
	}

	logger, err := logging.NewLogger("verifier", "info")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	brokerList := strings.Split(brokers, ",")
	for i := range brokerList {
		brokerList[i] = strings.TrimSpace(brokerList[i])
	}

	logger.Info("starting verifier",
		zap.Int("duration_seconds", durationSeconds),
		zap.Strings("brokers", brokerList),
	)

	// a fresh group each run so the whole topic is read
	group := fmt.Sprintf("dropcopy-verifier-%d", time.Now().UnixNano())
	consumer, err := msg.NewConsumer(brokerList, group, []string{msg.TopicDropCopy}, true, logger)
	if err != nil {
		logger.Fatal("failed to create consumer", zap.Error(err))
	}
	defer consumer.Close()

	verifier := dropcopy.NewVerifier()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(durationSeconds)*time.Second)
	defer cancel()

	err = consumer.Run(ctx, func(ctx context.Context, rec msg.Record) error {
		var event msg.DropCopyMsg
		if err := json.Unmarshal(rec.Value, &event); err != nil {
			logger.Warn("failed to unmarshal drop copy", zap.Error(err))
			return nil
		}

		verifier.Observe(event)

		logger.Debug("consumed drop copy",
			zap.String("event_id", event.EventID),
			zap.String("session", event.Session),
			zap.String("msg_type", event.MsgType),
			zap.Int32("partition", rec.Partition),
			zap.Int64("offset", rec.Offset),
		)
		return nil
	})
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("consumer error", zap.Error(err))
	}

	res := verifier.Result()

	fmt.Println("\n=== Drop Copy Verification ===")
	fmt.Printf("Total events consumed: %d\n", res.Total)
	fmt.Printf("Orders reported: %d\n", res.UniqueOrders)
	fmt.Printf("Orders with more than one report: %d\n", len(res.Duplicates))
	fmt.Printf("Ordering violations: %d\n", len(res.OrderingViolations))

	for key, count := range res.Duplicates {
		fmt.Printf("  Order %s: %d reports, first exec id %s\n", key, count, res.FirstExecIDs[key])
	}
	for _, v := range res.OrderingViolations {
		fmt.Printf("  %s\n", v)
	}

	if !res.OK() {
		fmt.Println("\nVERIFICATION FAILED")
		os.Exit(1)
	}

	fmt.Println("\nVERIFICATION PASSED")
}
