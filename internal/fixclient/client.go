// Package fixclient is a minimal FIX 4.4 initiator used to exercise the
// acceptor: it logs on with credentials, sends orders and market data
// requests and reports what comes back.
package fixclient

import (
	"time"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	"github.com/quickfixgo/fix44/executionreport"
	"github.com/quickfixgo/fix44/marketdatarequest"
	"github.com/quickfixgo/fix44/marketdatarequestreject"
	"github.com/quickfixgo/fix44/marketdatasnapshotfullrefresh"
	"github.com/quickfixgo/fix44/newordersingle"
	"github.com/quickfixgo/fix44/securitystatus"
	"github.com/quickfixgo/quickfix"
	"github.com/quickfixgo/tag"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Response is one application message received from the acceptor
type Response struct {
	MsgType string
	Message *quickfix.Message
}

// Application is the initiator side quickfix.Application
type Application struct {
	*quickfix.MessageRouter
	username  string
	password  string
	logger    *zap.Logger
	loggedOn  chan quickfix.SessionID
	responses chan Response
}

const defaultResponseBuffer = 64

// Option configures an Application
type Option func(*options)

type options struct {
	responseBuffer int
}

// WithResponseBuffer sizes the response queue. Responses that arrive while
// the queue is full are dropped, so size it for everything the caller sends
// before it starts reading.
func WithResponseBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.responseBuffer = n
		}
	}
}

// NewApplication creates a client that logs on with the given credentials.
// Empty values are left off the Logon.
func NewApplication(username, password string, logger *zap.Logger, opts ...Option) *Application {
	o := options{responseBuffer: defaultResponseBuffer}
	for _, opt := range opts {
		opt(&o)
	}

	app := &Application{
		MessageRouter: quickfix.NewMessageRouter(),
		username:      username,
		password:      password,
		logger:        logger,
		loggedOn:      make(chan quickfix.SessionID, 1),
		responses:     make(chan Response, o.responseBuffer),
	}
	app.AddRoute(executionreport.Route(app.onExecutionReport))
	app.AddRoute(marketdatasnapshotfullrefresh.Route(app.onSnapshot))
	app.AddRoute(securitystatus.Route(app.onSecurityStatus))
	app.AddRoute(marketdatarequestreject.Route(app.onMarketDataRequestReject))
	return app
}

// LoggedOn yields the session once the acceptor accepted the logon
func (a *Application) LoggedOn() <-chan quickfix.SessionID {
	return a.loggedOn
}

// Responses yields application messages in arrival order
func (a *Application) Responses() <-chan Response {
	return a.responses
}

func (a *Application) OnCreate(sessionID quickfix.SessionID) {}

func (a *Application) OnLogon(sessionID quickfix.SessionID) {
	a.logger.Info("logged on", zap.String("session", sessionID.String()))
	select {
	case a.loggedOn <- sessionID:
	default:
	}
}

func (a *Application) OnLogout(sessionID quickfix.SessionID) {
	a.logger.Info("logged out", zap.String("session", sessionID.String()))
}

// ToAdmin adds the credentials to outgoing Logon messages
func (a *Application) ToAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) {
	if !msg.IsMsgTypeOf(string(enum.MsgType_LOGON)) {
		return
	}
	if a.username != "" {
		msg.Body.Set(field.NewUsername(a.username))
	}
	if a.password != "" {
		msg.Body.Set(field.NewPassword(a.password))
	}
}

func (a *Application) ToApp(msg *quickfix.Message, sessionID quickfix.SessionID) error {
	return nil
}

// FromAdmin logs the reason of a Logout, which is how a rejected logon arrives
func (a *Application) FromAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	if msg.IsMsgTypeOf(string(enum.MsgType_LOGOUT)) {
		text, _ := msg.Body.GetString(tag.Text)
		a.logger.Warn("logout received", zap.String("text", text))
	}
	return nil
}

func (a *Application) FromApp(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	return a.Route(msg, sessionID)
}

func (a *Application) onExecutionReport(msg executionreport.ExecutionReport, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	execType, _ := msg.GetExecType()
	orderID, _ := msg.GetOrderID()
	text, _ := msg.GetText()
	a.logger.Info("execution report",
		zap.String("order_id", orderID),
		zap.String("exec_type", string(execType)),
		zap.String("text", text),
	)
	a.push(msg.ToMessage())
	return nil
}

func (a *Application) onSnapshot(msg marketdatasnapshotfullrefresh.MarketDataSnapshotFullRefresh, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	symbol, _ := msg.GetSymbol()
	a.logger.Info("market data snapshot", zap.String("symbol", symbol))
	a.push(msg.ToMessage())
	return nil
}

func (a *Application) onSecurityStatus(msg securitystatus.SecurityStatus, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	status, _ := msg.GetSecurityTradingStatus()
	a.logger.Info("security status", zap.String("trading_status", string(status)))
	a.push(msg.ToMessage())
	return nil
}

func (a *Application) onMarketDataRequestReject(msg marketdatarequestreject.MarketDataRequestReject, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	reason, _ := msg.GetMDReqRejReason()
	text, _ := msg.GetText()
	a.logger.Info("market data request rejected",
		zap.String("reason", string(reason)),
		zap.String("text", text),
	)
	a.push(msg.ToMessage())
	return nil
}

func (a *Application) push(msg *quickfix.Message) {
	msgType, _ := msg.Header.GetString(tag.MsgType)
	select {
	case a.responses <- Response{MsgType: msgType, Message: msg}:
	default:
		a.logger.Warn("response buffer full, dropping", zap.String("msg_type", msgType))
	}
}

// Order describes a limit order to send
type Order struct {
	ClOrdID     string
	Side        enum.Side
	Symbol      string
	Account     string
	Qty         decimal.Decimal
	Price       decimal.Decimal
	OrdType     enum.OrdType
	TimeInForce enum.TimeInForce
}

// NewOrderSingle builds the FIX message for o
func NewOrderSingle(o Order, now time.Time) newordersingle.NewOrderSingle {
	msg := newordersingle.New(
		field.NewClOrdID(o.ClOrdID),
		field.NewSide(o.Side),
		field.NewTransactTime(now),
		field.NewOrdType(o.OrdType),
	)
	msg.SetSymbol(o.Symbol)
	msg.SetAccount(o.Account)
	msg.SetOrderQty(o.Qty, 2)
	msg.SetPrice(o.Price, 4)
	msg.SetTimeInForce(o.TimeInForce)
	return msg
}

// NewMarketDataRequest builds a top of book full refresh snapshot request
func NewMarketDataRequest(mdReqID string, symbols ...string) marketdatarequest.MarketDataRequest {
	msg := marketdatarequest.New(
		field.NewMDReqID(mdReqID),
		field.NewSubscriptionRequestType(enum.SubscriptionRequestType_SNAPSHOT),
		field.NewMarketDepth(1),
	)
	msg.SetMDUpdateType(enum.MDUpdateType_FULL_REFRESH)

	entryTypes := marketdatarequest.NewNoMDEntryTypesRepeatingGroup()
	entryTypes.Add().SetMDEntryType(enum.MDEntryType_BID)
	entryTypes.Add().SetMDEntryType(enum.MDEntryType_OFFER)
	msg.SetNoMDEntryTypes(entryTypes)

	related := marketdatarequest.NewNoRelatedSymRepeatingGroup()
	for _, s := range symbols {
		related.Add().SetSymbol(s)
	}
	msg.SetNoRelatedSym(related)
	return msg
}
