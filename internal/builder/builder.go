package builder

import (
	"time"

	"github.com/google/uuid"
	"github.com/ismaiel54/fix-counterparty-sim/internal/model"
	"github.com/shopspring/decimal"
)

// Synthetic top of book quoted for every accepted market data request
var (
	OfferPx   = decimal.NewFromInt(210)
	BidPx     = decimal.NewFromInt(209)
	EntrySize = decimal.NewFromInt(1000)
)

// Clock returns the current time
type Clock func() time.Time

// IDSource returns a fresh unique token
type IDSource func() string

// Builder constructs outbound messages. The clock and id source are read once
// per built message, at build time.
type Builder struct {
	now   Clock
	newID IDSource
}

// Option configures a Builder
type Option func(*Builder)

// WithClock overrides the wall clock
func WithClock(c Clock) Option {
	return func(b *Builder) { b.now = c }
}

// WithIDSource overrides the exec id generator
func WithIDSource(s IDSource) Option {
	return func(b *Builder) { b.newID = s }
}

// New creates a Builder using UTC wall-clock time and random UUIDs
func New(opts ...Option) *Builder {
	b := &Builder{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// PendingNew acknowledges a validated order
func (b *Builder) PendingNew(req model.NewOrderRequest) model.ExecutionReport {
	return model.ExecutionReport{
		OrderID:      req.ClOrdID,
		ExecID:       b.newID(),
		ExecType:     model.ExecTypePendingNew,
		OrdStatus:    model.OrdStatusPendingNew,
		Side:         req.Side,
		LeavesQty:    req.OrderQty,
		CumQty:       decimal.Zero,
		AvgPx:        decimal.Zero,
		ClOrdID:      req.ClOrdID,
		Account:      req.Account,
		Symbol:       req.Symbol,
		OrderQty:     req.OrderQty,
		Price:        req.Price,
		OrdType:      req.OrdType,
		TimeInForce:  req.TimeInForce,
		TransactTime: b.now(),
	}
}

// Rejected refuses an order. Only the symbol is echoed besides the required fields.
func (b *Builder) Rejected(req model.NewOrderRequest, text string) model.ExecutionReport {
	return model.ExecutionReport{
		OrderID:      req.ClOrdID,
		ExecID:       b.newID(),
		ExecType:     model.ExecTypeRejected,
		OrdStatus:    model.OrdStatusRejected,
		Side:         req.Side,
		LeavesQty:    req.OrderQty,
		CumQty:       decimal.Zero,
		AvgPx:        decimal.Zero,
		Symbol:       req.Symbol,
		Text:         text,
		TransactTime: b.now(),
	}
}

// MarketData builds the snapshot and the security status for a validated
// request. Both entries share one timestamp.
func (b *Builder) MarketData(req model.MarketDataRequest) model.MarketDataResponse {
	symbol := req.Symbol()
	ts := b.now()

	return model.MarketDataResponse{
		Snapshot: model.MarketDataSnapshot{
			MDReqID: req.MDReqID,
			Symbol:  symbol,
			Entries: []model.MDEntry{
				{Type: model.MDEntryTypeOffer, Price: OfferPx, Size: EntrySize, Time: ts, PositionNo: 1},
				{Type: model.MDEntryTypeBid, Price: BidPx, Size: EntrySize, Time: ts, PositionNo: 1},
			},
		},
		Status: model.SecurityStatus{
			SecurityStatusReqID: req.MDReqID,
			Symbol:              symbol,
			TradingStatus:       model.SecurityTradingStatusReadyToTrade,
		},
	}
}

// MarketDataReject refuses a market data request
func (b *Builder) MarketDataReject(req model.MarketDataRequest, reason model.MDReqRejReason, text string) model.MarketDataRequestReject {
	return model.MarketDataRequestReject{
		MDReqID: req.MDReqID,
		Reason:  reason,
		Text:    text,
	}
}
