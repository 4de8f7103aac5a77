package fixgateway

import (
	"errors"

	"github.com/ismaiel54/fix-counterparty-sim/internal/handler"
	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/fix44/marketdatarequest"
	"github.com/quickfixgo/fix44/newordersingle"
	"github.com/quickfixgo/quickfix"
	"go.uber.org/zap"
)

// Application implements the quickfix.Application interface on top of the
// message handler. Anything other than Logon, NewOrderSingle and
// MarketDataRequest is rejected as unsupported.
type Application struct {
	*quickfix.MessageRouter
	handler  *handler.Handler
	sessions *Sessions
	logger   *zap.Logger
}

// NewApplication creates the acceptor application
func NewApplication(h *handler.Handler, sessions *Sessions, logger *zap.Logger) *Application {
	app := &Application{
		MessageRouter: quickfix.NewMessageRouter(),
		handler:       h,
		sessions:      sessions,
		logger:        logger,
	}
	app.AddRoute(newordersingle.Route(app.onNewOrderSingle))
	app.AddRoute(marketdatarequest.Route(app.onMarketDataRequest))
	return app
}

// OnCreate implemented as part of Application interface
func (a *Application) OnCreate(sessionID quickfix.SessionID) {
	a.logger.Debug("session created", zap.String("session", sessionID.String()))
}

// OnLogon implemented as part of Application interface
func (a *Application) OnLogon(sessionID quickfix.SessionID) {
	a.sessions.Add(sessionID)
	a.logger.Info("session logged on",
		zap.String("session", sessionID.String()),
		zap.Int("sessions", a.sessions.Len()),
	)
}

// OnLogout implemented as part of Application interface
func (a *Application) OnLogout(sessionID quickfix.SessionID) {
	a.sessions.Remove(sessionID)
	a.logger.Info("session logged out",
		zap.String("session", sessionID.String()),
		zap.Int("sessions", a.sessions.Len()),
	)
}

// ToAdmin implemented as part of Application interface
func (a *Application) ToAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) {}

// ToApp implemented as part of Application interface
func (a *Application) ToApp(msg *quickfix.Message, sessionID quickfix.SessionID) error {
	return nil
}

// FromAdmin checks Logon credentials; a rejection aborts the handshake
func (a *Application) FromAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	if !msg.IsMsgTypeOf(string(enum.MsgType_LOGON)) {
		return nil
	}

	if err := a.handler.Authenticate(DecodeLogon(msg)); err != nil {
		return quickfix.RejectLogon{Text: err.Error()}
	}
	return nil
}

// FromApp implemented as part of Application interface, uses Router on incoming application messages
func (a *Application) FromApp(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	return a.Route(msg, sessionID)
}

func (a *Application) onNewOrderSingle(msg newordersingle.NewOrderSingle, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	req, rej := DecodeNewOrder(msg)
	if rej != nil {
		a.logger.Warn("malformed new order single",
			zap.String("session", sessionID.String()),
			zap.Error(rej),
		)
		return rej
	}

	return a.toReject(a.handler.HandleNewOrder(HandleOf(sessionID), req))
}

func (a *Application) onMarketDataRequest(msg marketdatarequest.MarketDataRequest, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	req, rej := DecodeMarketDataRequest(msg)
	if rej != nil {
		a.logger.Warn("malformed market data request",
			zap.String("session", sessionID.String()),
			zap.Error(rej),
		)
		return rej
	}

	return a.toReject(a.handler.HandleMarketDataRequest(HandleOf(sessionID), req))
}

// toReject maps handler errors onto quickfix rejects. A dispatch failure has
// already been logged by the handler and there is no session to reject on.
func (a *Application) toReject(err error) quickfix.MessageRejectError {
	if err == nil {
		return nil
	}
	if errors.Is(err, handler.ErrUnsupportedMessage) {
		return quickfix.UnsupportedMessageType()
	}

	var dispatchErr *handler.DispatchError
	if !errors.As(err, &dispatchErr) {
		a.logger.Error("unexpected handler error", zap.Error(err))
	}
	return nil
}
