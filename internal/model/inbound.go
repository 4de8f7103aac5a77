package model

import "github.com/shopspring/decimal"

// Inbound is one of the message kinds the handler accepts:
// LogonAttempt, NewOrderRequest or MarketDataRequest.
type Inbound interface {
	MsgType() string
	inbound()
}

// LogonAttempt carries the credentials from a Logon message.
// Empty strings mean the field was absent.
type LogonAttempt struct {
	Username string
	Password string
}

// NewOrderRequest is a decoded NewOrderSingle
type NewOrderRequest struct {
	ClOrdID     string
	Side        Side
	Symbol      string
	OrderQty    decimal.Decimal
	Price       decimal.Decimal
	Account     string
	OrdType     OrdType
	TimeInForce TimeInForce
}

// MarketDataRequest is a decoded MarketDataRequest.
// Only the first related symbol is considered.
type MarketDataRequest struct {
	MDReqID        string
	MarketDepth    int
	MDUpdateType   MDUpdateType
	RelatedSymbols []string
}

// Symbol returns the first related symbol, or "" when none were sent
func (r MarketDataRequest) Symbol() string {
	if len(r.RelatedSymbols) == 0 {
		return ""
	}
	return r.RelatedSymbols[0]
}

func (LogonAttempt) MsgType() string      { return MsgTypeLogon }
func (NewOrderRequest) MsgType() string   { return MsgTypeNewOrderSingle }
func (MarketDataRequest) MsgType() string { return MsgTypeMarketDataRequest }

func (LogonAttempt) inbound()      {}
func (NewOrderRequest) inbound()   {}
func (MarketDataRequest) inbound() {}
