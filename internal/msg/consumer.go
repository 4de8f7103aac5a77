package msg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// Handler processes one consumed record
type Handler func(context.Context, Record) error

// Consumer wraps a Kafka group consumer with manual commits
type Consumer struct {
	client       *kgo.Client
	logger       *zap.Logger
	topics       []string
	group        string
	running      int32
	handledCount int64
	errorCount   int64
	maxRetries   int
	backoff      time.Duration
	done         chan struct{}
	closeOnce    sync.Once
}

// NewConsumer creates a new Kafka consumer. fromStart resets new groups to
// the earliest offset so a verifier sees the whole topic.
func NewConsumer(brokers []string, group string, topics []string, fromStart bool, logger *zap.Logger) (*Consumer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	}
	if fromStart {
		opts = append(opts, kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	c := &Consumer{
		client:     client,
		logger:     logger,
		topics:     topics,
		group:      group,
		maxRetries: 3,
		backoff:    100 * time.Millisecond,
		done:       make(chan struct{}),
	}

	logger.Info("consumer initialized",
		zap.Strings("brokers", brokers),
		zap.String("group", group),
		zap.Strings("topics", topics),
	)

	go c.logStats()

	return c, nil
}

// Run consumes until ctx is done and calls handler for each record. Offsets
// are committed only after the handler succeeds.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	c.logger.Info("starting consumer",
		zap.String("group", c.group),
		zap.Strings("topics", c.topics),
	)

	atomic.StoreInt32(&c.running, 1)
	defer atomic.StoreInt32(&c.running, 0)

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return errors.New("kafka client closed")
		}
		if err := ctx.Err(); err != nil {
			c.logger.Info("consumer stopping", zap.String("group", c.group))
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Warn("fetch error",
				zap.String("topic", topic),
				zap.Int32("partition", partition),
				zap.Error(err),
			)
		})

		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			rec := Record{
				Topic:     record.Topic,
				Key:       string(record.Key),
				Value:     record.Value,
				Partition: record.Partition,
				Offset:    record.Offset,
				Timestamp: record.Timestamp.UnixMilli(),
			}

			if err := c.handleWithRetry(ctx, rec, handler); err != nil {
				c.logger.Error("handler failed after retries",
					zap.String("topic", rec.Topic),
					zap.String("key", rec.Key),
					zap.Error(err),
				)
				atomic.AddInt64(&c.errorCount, 1)
				continue
			}

			if err := c.client.CommitRecords(ctx, record); err != nil {
				c.logger.Warn("failed to commit offset",
					zap.String("topic", rec.Topic),
					zap.Int64("offset", rec.Offset),
					zap.Error(err),
				)
			}
			atomic.AddInt64(&c.handledCount, 1)
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, rec Record, handler Handler) error {
	backoff := c.backoff

	var err error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err = handler(ctx, rec); err == nil {
			return nil
		}

		if attempt < c.maxRetries-1 {
			c.logger.Warn("handler failed, retrying",
				zap.String("topic", rec.Topic),
				zap.String("key", rec.Key),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return fmt.Errorf("handler failed after %d attempts: %w", c.maxRetries, err)
}

// Close closes the consumer
func (c *Consumer) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.client != nil {
			c.client.Close()
		}
	})
}

// IsRunning returns whether the consumer is running
func (c *Consumer) IsRunning() bool {
	return atomic.LoadInt32(&c.running) == 1
}

func (c *Consumer) logStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.logger.Info("consumer stats",
				zap.String("group", c.group),
				zap.Int64("processed", atomic.LoadInt64(&c.handledCount)),
				zap.Int64("errors", atomic.LoadInt64(&c.errorCount)),
			)
		}
	}
}
