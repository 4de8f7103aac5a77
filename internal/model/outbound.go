package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outbound is a response message handed to the dispatcher:
// ExecutionReport, MarketDataSnapshot, SecurityStatus or MarketDataRequestReject.
type Outbound interface {
	MsgType() string
	outbound()
}

// ExecutionReport acknowledges or rejects a new order.
// ClOrdID, Account, OrderQty, Price, OrdType and TimeInForce are only set on the
// accept path; Text is only set on the reject path.
type ExecutionReport struct {
	OrderID      string
	ExecID       string
	ExecType     ExecType
	OrdStatus    OrdStatus
	Side         Side
	LeavesQty    decimal.Decimal
	CumQty       decimal.Decimal
	AvgPx        decimal.Decimal
	ClOrdID      string
	Account      string
	Symbol       string
	OrderQty     decimal.Decimal
	Price        decimal.Decimal
	OrdType      OrdType
	TimeInForce  TimeInForce
	Text         string
	TransactTime time.Time
}

// Accepted reports whether this is a PendingNew acknowledgement
func (r ExecutionReport) Accepted() bool {
	return r.ExecType == ExecTypePendingNew
}

// MDEntry is one price level of a snapshot
type MDEntry struct {
	Type       MDEntryType
	Price      decimal.Decimal
	Size       decimal.Decimal
	Time       time.Time
	PositionNo int
}

// MarketDataSnapshot is a full refresh for one symbol
type MarketDataSnapshot struct {
	MDReqID string
	Symbol  string
	Entries []MDEntry
}

// SecurityStatus follows every snapshot for the same request
type SecurityStatus struct {
	SecurityStatusReqID string
	Symbol              string
	TradingStatus       SecurityTradingStatus
}

// MarketDataRequestReject answers a market data request that failed validation
type MarketDataRequestReject struct {
	MDReqID string
	Reason  MDReqRejReason
	Text    string
}

// MarketDataResponse is the accept path of a market data request.
// Snapshot is always sent before Status.
type MarketDataResponse struct {
	Snapshot MarketDataSnapshot
	Status   SecurityStatus
}

func (ExecutionReport) MsgType() string         { return MsgTypeExecutionReport }
func (MarketDataSnapshot) MsgType() string      { return MsgTypeMarketDataSnapshot }
func (SecurityStatus) MsgType() string          { return MsgTypeSecurityStatus }
func (MarketDataRequestReject) MsgType() string { return MsgTypeMarketDataRequestReject }

func (ExecutionReport) outbound()         {}
func (MarketDataSnapshot) outbound()      {}
func (SecurityStatus) outbound()          {}
func (MarketDataRequestReject) outbound() {}
