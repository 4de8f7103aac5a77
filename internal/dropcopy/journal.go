package dropcopy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ismaiel54/fix-counterparty-sim/internal/handler"
	"github.com/ismaiel54/fix-counterparty-sim/internal/model"
	"github.com/ismaiel54/fix-counterparty-sim/internal/msg"
	"go.uber.org/zap"
)

// Stages reported to Metrics
const (
	StageAppended  = "appended"
	StagePublished = "published"
	StageFailed    = "failed"
)

// Metrics receives outbox activity
type Metrics interface {
	ObserveDropCopy(stage string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveDropCopy(string) {}

// Journal is a handler.Dispatcher that records every successfully sent
// message in the outbox. A failed append is logged; the FIX send stands.
type Journal struct {
	next    handler.Dispatcher
	store   *Store
	logger  *zap.Logger
	metrics Metrics
	now     func() time.Time
	newID   func() string
}

// JournalOption configures a Journal
type JournalOption func(*Journal)

// WithJournalMetrics attaches a metrics sink
func WithJournalMetrics(m Metrics) JournalOption {
	return func(j *Journal) { j.metrics = m }
}

// WithJournalClock overrides the timestamp source
func WithJournalClock(now func() time.Time) JournalOption {
	return func(j *Journal) { j.now = now }
}

// NewJournal wraps next. The store assigns each event its seq.
func NewJournal(next handler.Dispatcher, store *Store, logger *zap.Logger, opts ...JournalOption) *Journal {
	j := &Journal{
		next:    next,
		store:   store,
		logger:  logger,
		metrics: nopMetrics{},
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Send implements handler.Dispatcher
func (j *Journal) Send(session model.SessionHandle, m model.Outbound) error {
	if err := j.next.Send(session, m); err != nil {
		return err
	}

	event := Event(session, m, j.now(), j.newID)
	inserted, err := j.store.Append(context.Background(), event)
	if err != nil {
		j.metrics.ObserveDropCopy(StageFailed)
		j.logger.Error("failed to journal drop copy",
			zap.String("session", string(session)),
			zap.String("msg_type", m.MsgType()),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		return nil
	}
	if inserted {
		j.metrics.ObserveDropCopy(StageAppended)
	}
	return nil
}

// Event builds the drop copy of m. Execution reports reuse their ExecID as
// the event id; other messages get a fresh one from newID. Seq is left for
// Store.Append to fill in.
func Event(session model.SessionHandle, m model.Outbound, ts time.Time, newID func() string) msg.DropCopyMsg {
	event := msg.DropCopyMsg{
		Session:      string(session),
		MsgType:      m.MsgType(),
		TsUnixMillis: ts.UnixMilli(),
	}

	switch v := m.(type) {
	case model.ExecutionReport:
		event.EventID = v.ExecID
		event.ClOrdID = v.ClOrdID
		if event.ClOrdID == "" {
			event.ClOrdID = v.OrderID
		}
		event.OrderID = v.OrderID
		event.ExecID = v.ExecID
		event.OrdStatus = string(v.OrdStatus)
		event.Symbol = v.Symbol
		event.Text = v.Text
	case model.MarketDataSnapshot:
		event.MDReqID = v.MDReqID
		event.Symbol = v.Symbol
	case model.SecurityStatus:
		event.MDReqID = v.SecurityStatusReqID
		event.Symbol = v.Symbol
	case model.MarketDataRequestReject:
		event.MDReqID = v.MDReqID
		event.Text = v.Text
	}

	if event.EventID == "" {
		event.EventID = newID()
	}
	return event
}
