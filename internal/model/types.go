package model

import "errors"

// SessionHandle identifies the session a message arrived on. It is opaque to
// the handler; the transport layer decides what it contains.
type SessionHandle string

// ErrSessionNotFound is returned by a dispatcher when the session is unknown or closed
var ErrSessionNotFound = errors.New("session not found")

// Side of an order
type Side string

const (
	SideBuy  Side = "1"
	SideSell Side = "2"
)

// String returns a readable side name
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN(" + string(s) + ")"
	}
}

// OrdType is the FIX order type
type OrdType string

const (
	OrdTypeMarket OrdType = "1"
	OrdTypeLimit  OrdType = "2"
)

// TimeInForce is the FIX time in force
type TimeInForce string

const (
	TimeInForceDay               TimeInForce = "0"
	TimeInForceGoodTillCancel    TimeInForce = "1"
	TimeInForceImmediateOrCancel TimeInForce = "3"
	TimeInForceFillOrKill        TimeInForce = "4"
)

// ExecType of an execution report
type ExecType string

const (
	ExecTypePendingNew ExecType = "A"
	ExecTypeRejected   ExecType = "8"
)

// OrdStatus of an execution report
type OrdStatus string

const (
	OrdStatusPendingNew OrdStatus = "A"
	OrdStatusRejected   OrdStatus = "8"
)

// MDUpdateType requested by a market data request
type MDUpdateType int

const (
	MDUpdateTypeFullRefresh MDUpdateType = 0
	MDUpdateTypeIncremental MDUpdateType = 1
)

// MDEntryType of a snapshot entry
type MDEntryType string

const (
	MDEntryTypeBid   MDEntryType = "0"
	MDEntryTypeOffer MDEntryType = "1"
)

// MDReqRejReason is the reason code carried by a market data request reject
type MDReqRejReason string

const (
	MDReqRejReasonUnknownSymbol          MDReqRejReason = "0"
	MDReqRejReasonUnsupportedMarketDepth MDReqRejReason = "5"
	MDReqRejReasonUnsupportedUpdateType  MDReqRejReason = "6"
)

// SecurityTradingStatus reported by a security status message
type SecurityTradingStatus int

const (
	SecurityTradingStatusReadyToTrade SecurityTradingStatus = 17
)

// Message types, FIX tag 35 values
const (
	MsgTypeLogon                   = "A"
	MsgTypeNewOrderSingle          = "D"
	MsgTypeExecutionReport         = "8"
	MsgTypeMarketDataRequest       = "V"
	MsgTypeMarketDataSnapshot      = "W"
	MsgTypeMarketDataRequestReject = "Y"
	MsgTypeSecurityStatus          = "f"
)
