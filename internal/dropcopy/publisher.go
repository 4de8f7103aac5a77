package dropcopy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ismaiel54/fix-counterparty-sim/internal/msg"
	"go.uber.org/zap"
)

// Producer writes JSON records to Kafka. *msg.Producer satisfies it.
type Producer interface {
	ProduceJSON(ctx context.Context, topic string, key string, v any) error
}

// Publisher publishes outbox events to Kafka
type Publisher struct {
	store     *Store
	producer  Producer
	logger    *zap.Logger
	metrics   Metrics
	interval  time.Duration
	batchSize int
}

// NewPublisher creates a new outbox publisher
func NewPublisher(store *Store, producer Producer, logger *zap.Logger, metrics Metrics) *Publisher {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Publisher{
		store:     store,
		producer:  producer,
		logger:    logger,
		metrics:   metrics,
		interval:  250 * time.Millisecond,
		batchSize: 100,
	}
}

// Run publishes pending events every interval until ctx is done
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.PublishPending(ctx); err != nil {
				p.logger.Error("failed to publish batch", zap.Error(err))
			}
		}
	}
}

// PublishPending publishes one batch and returns how many events made it.
// Events that fail stay in the outbox for the next round.
func (p *Publisher) PublishPending(ctx context.Context) (int, error) {
	events, err := p.store.ListUnpublished(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list unpublished events: %w", err)
	}

	if len(events) == 0 {
		return 0, nil
	}

	now := time.Now().UnixMilli()
	published := 0

	for _, event := range events {
		var dropCopy msg.DropCopyMsg
		if err := json.Unmarshal([]byte(event.PayloadJSON), &dropCopy); err != nil {
			p.logger.Error("failed to unmarshal event payload",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
			continue
		}

		if err := p.producer.ProduceJSON(ctx, event.Topic, event.Key, dropCopy); err != nil {
			p.metrics.ObserveDropCopy(StageFailed)
			p.logger.Error("failed to produce event",
				zap.String("event_id", event.EventID),
				zap.String("session", event.Session),
				zap.Error(err),
			)
			// later events of the same session must not overtake this one
			break
		}

		// a failure here means the event is produced again; consumers dedupe on event_id
		if err := p.store.MarkPublished(ctx, event.EventID, now); err != nil {
			p.logger.Error("failed to mark event as published",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
			continue
		}

		published++
		p.metrics.ObserveDropCopy(StagePublished)
		p.logger.Debug("published outbox event",
			zap.String("event_id", event.EventID),
			zap.String("msg_type", event.MsgType),
		)
	}

	if published > 0 {
		p.logger.Info("published outbox batch",
			zap.Int("published", published),
			zap.Int("total", len(events)),
		)
	}

	return published, nil
}
