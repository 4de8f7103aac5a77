package msg

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// Producer wraps a Kafka producer
type Producer struct {
	client       *kgo.Client
	logger       *zap.Logger
	produceCount int64
	errorCount   int64
	done         chan struct{}
	closeOnce    sync.Once
}

// NewProducer creates a new Kafka producer. Records are written idempotently
// so a retried batch does not duplicate drop copies within a producer session.
func NewProducer(brokers []string, clientID string, logger *zap.Logger) (*Producer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordPartitioner(kgo.StickyKeyPartitioner(nil)),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	p := &Producer{
		client: client,
		logger: logger,
		done:   make(chan struct{}),
	}

	logger.Info("producer initialized",
		zap.Strings("brokers", brokers),
		zap.String("client_id", clientID),
	)

	go p.logStats()

	return p, nil
}

// Ping checks that at least one broker is reachable
func (p *Producer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// ProduceJSON produces a JSON message to the specified topic
func (p *Producer) ProduceJSON(ctx context.Context, topic string, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		atomic.AddInt64(&p.errorCount, 1)
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}

	produceCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.client.ProduceSync(produceCtx, record).FirstErr(); err != nil {
		atomic.AddInt64(&p.errorCount, 1)
		return fmt.Errorf("failed to produce message: %w", err)
	}

	atomic.AddInt64(&p.produceCount, 1)
	return nil
}

// Close flushes and closes the producer
func (p *Producer) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		if p.client != nil {
			p.client.Close()
		}
	})
}

func (p *Producer) logStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.logger.Info("producer stats",
				zap.Int64("produced", atomic.LoadInt64(&p.produceCount)),
				zap.Int64("errors", atomic.LoadInt64(&p.errorCount)),
			)
		}
	}
}
