package handler

import (
	"errors"
	"fmt"

	"github.com/ismaiel54/fix-counterparty-sim/internal/builder"
	"github.com/ismaiel54/fix-counterparty-sim/internal/model"
	"github.com/ismaiel54/fix-counterparty-sim/internal/rules"
	"go.uber.org/zap"
)

// ErrUnsupportedMessage is returned for inbound kinds the handler does not accept
var ErrUnsupportedMessage = errors.New("unsupported message type")

// Outcome labels passed to Metrics
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Dispatcher delivers an outbound message to a session. It returns an error
// wrapping model.ErrSessionNotFound when the session is unknown or closed.
type Dispatcher interface {
	Send(session model.SessionHandle, m model.Outbound) error
}

// Metrics receives one observation per handled message
type Metrics interface {
	ObserveLogon(outcome string)
	ObserveOrder(outcome string)
	ObserveMarketDataRequest(outcome string)
	ObserveDispatchFailure(msgType string)
}

// DispatchError reports that a response could not be handed to its session.
// The response itself was built correctly; it is not retried.
type DispatchError struct {
	Session model.SessionHandle
	MsgType string
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s to session %s: %v", e.MsgType, e.Session, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Features enables message kinds independently. Logon is always handled.
type Features struct {
	Orders     bool
	MarketData bool
}

// Handler applies the rules to inbound messages, builds the responses and
// hands them to the dispatcher. It keeps no state between calls.
type Handler struct {
	rules      *rules.Rules
	builder    *builder.Builder
	dispatcher Dispatcher
	features   Features
	metrics    Metrics
	logger     *zap.Logger
}

// Option configures a Handler
type Option func(*Handler)

// WithFeatures restricts which message kinds are handled
func WithFeatures(f Features) Option {
	return func(h *Handler) { h.features = f }
}

// WithMetrics attaches a metrics sink
func WithMetrics(m Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// New creates a Handler with every message kind enabled
func New(r *rules.Rules, b *builder.Builder, d Dispatcher, logger *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		rules:      r,
		builder:    b,
		dispatcher: d,
		features:   Features{Orders: true, MarketData: true},
		metrics:    nopMetrics{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle routes an inbound message to the matching handler
func (h *Handler) Handle(session model.SessionHandle, in model.Inbound) error {
	switch m := in.(type) {
	case model.LogonAttempt:
		return h.Authenticate(m)
	case model.NewOrderRequest:
		return h.HandleNewOrder(session, m)
	case model.MarketDataRequest:
		return h.HandleMarketDataRequest(session, m)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedMessage, in)
	}
}

// Authenticate checks logon credentials. A non-nil error must abort the logon.
func (h *Handler) Authenticate(attempt model.LogonAttempt) error {
	if err := h.rules.CheckCredentials(attempt); err != nil {
		h.metrics.ObserveLogon(OutcomeRejected)
		h.logger.Warn("logon rejected",
			zap.String("username", attempt.Username),
			zap.String("reason", err.Error()),
		)
		return err
	}

	h.metrics.ObserveLogon(OutcomeAccepted)
	h.logger.Info("logon accepted", zap.String("username", attempt.Username))
	return nil
}

// EvaluateOrder validates an order and builds its execution report:
// PendingNew when every rule passes, Rejected with the first failing rule's
// text otherwise.
func (h *Handler) EvaluateOrder(req model.NewOrderRequest) model.ExecutionReport {
	if err := h.rules.ValidateOrder(req); err != nil {
		h.metrics.ObserveOrder(OutcomeRejected)
		h.logger.Info("order rejected",
			zap.String("cl_ord_id", req.ClOrdID),
			zap.String("symbol", req.Symbol),
			zap.String("reason", err.Error()),
		)
		return h.builder.Rejected(req, err.Error())
	}

	h.metrics.ObserveOrder(OutcomeAccepted)
	h.logger.Info("order accepted",
		zap.String("cl_ord_id", req.ClOrdID),
		zap.String("symbol", req.Symbol),
		zap.String("side", req.Side.String()),
		zap.String("qty", req.OrderQty.String()),
		zap.String("price", req.Price.String()),
	)
	return h.builder.PendingNew(req)
}

// HandleNewOrder sends exactly one execution report for req
func (h *Handler) HandleNewOrder(session model.SessionHandle, req model.NewOrderRequest) error {
	if !h.features.Orders {
		return fmt.Errorf("%w: new order single disabled", ErrUnsupportedMessage)
	}
	return h.send(session, h.EvaluateOrder(req))
}

// EvaluateMarketDataRequest validates a market data request. On success it
// returns the snapshot and status with a nil reject; on failure the reject.
func (h *Handler) EvaluateMarketDataRequest(req model.MarketDataRequest) (model.MarketDataResponse, *model.MarketDataRequestReject) {
	if err := h.rules.ValidateMarketDataRequest(req); err != nil {
		reason := model.MDReqRejReasonUnknownSymbol
		var rejection *rules.MarketDataRejection
		if errors.As(err, &rejection) {
			reason = rejection.Reason
		}

		h.metrics.ObserveMarketDataRequest(OutcomeRejected)
		h.logger.Info("market data request rejected",
			zap.String("md_req_id", req.MDReqID),
			zap.String("reason_code", string(reason)),
			zap.String("reason", err.Error()),
		)
		reject := h.builder.MarketDataReject(req, reason, err.Error())
		return model.MarketDataResponse{}, &reject
	}

	h.metrics.ObserveMarketDataRequest(OutcomeAccepted)
	h.logger.Info("market data request accepted",
		zap.String("md_req_id", req.MDReqID),
		zap.String("symbol", req.Symbol()),
	)
	return h.builder.MarketData(req), nil
}

// HandleMarketDataRequest sends either the snapshot followed by the security
// status, or a single reject. If the snapshot cannot be sent the status is
// not attempted.
func (h *Handler) HandleMarketDataRequest(session model.SessionHandle, req model.MarketDataRequest) error {
	if !h.features.MarketData {
		return fmt.Errorf("%w: market data request disabled", ErrUnsupportedMessage)
	}

	resp, reject := h.EvaluateMarketDataRequest(req)
	if reject != nil {
		return h.send(session, *reject)
	}

	if err := h.send(session, resp.Snapshot); err != nil {
		return err
	}
	return h.send(session, resp.Status)
}

func (h *Handler) send(session model.SessionHandle, m model.Outbound) error {
	if err := h.dispatcher.Send(session, m); err != nil {
		h.metrics.ObserveDispatchFailure(m.MsgType())
		h.logger.Error("failed to dispatch message",
			zap.String("session", string(session)),
			zap.String("msg_type", m.MsgType()),
			zap.Error(err),
		)
		return &DispatchError{Session: session, MsgType: m.MsgType(), Err: err}
	}
	return nil
}

type nopMetrics struct{}

func (nopMetrics) ObserveLogon(string)             {}
func (nopMetrics) ObserveOrder(string)             {}
func (nopMetrics) ObserveMarketDataRequest(string) {}
func (nopMetrics) ObserveDispatchFailure(string)   {}
