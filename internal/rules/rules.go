package rules

import (
	"errors"
	"fmt"

	"github.com/ismaiel54/fix-counterparty-sim/internal/model"
)

var (
	// ErrMissingCredentials is returned when a logon lacks username or password
	ErrMissingCredentials = errors.New("Logon requires username and password")
	// ErrInvalidCredentials is returned when the credential pair does not match
	ErrInvalidCredentials = errors.New("Invalid credentials")
)

// Config holds the fixed values the rules compare against
type Config struct {
	Symbol   string
	Account  string
	Username string
	Password string
}

// DefaultConfig returns the simulator's stock configuration
func DefaultConfig() Config {
	return Config{
		Symbol:   "AAPL",
		Account:  "1234",
		Username: "username",
		Password: "password",
	}
}

// OrderRejection describes the first order rule that failed
type OrderRejection struct {
	Text string
}

func (e *OrderRejection) Error() string {
	return e.Text
}

// MarketDataRejection describes the first market data rule that failed
type MarketDataRejection struct {
	Reason model.MDReqRejReason
	Text   string
}

func (e *MarketDataRejection) Error() string {
	return e.Text
}

// Rules validates inbound messages against a fixed Config.
// It has no mutable state and is safe for concurrent use.
type Rules struct {
	cfg Config
}

// New creates a rule set for cfg
func New(cfg Config) *Rules {
	return &Rules{cfg: cfg}
}

// Config returns the configuration the rules were built with
func (r *Rules) Config() Config {
	return r.cfg
}

// CheckCredentials accepts only the configured username/password pair
func (r *Rules) CheckCredentials(attempt model.LogonAttempt) error {
	if attempt.Username == "" || attempt.Password == "" {
		return ErrMissingCredentials
	}
	if attempt.Username != r.cfg.Username || attempt.Password != r.cfg.Password {
		return ErrInvalidCredentials
	}
	return nil
}

// ValidateOrder applies the order rules in a fixed sequence and returns an
// *OrderRejection for the first one that fails.
func (r *Rules) ValidateOrder(req model.NewOrderRequest) error {
	if req.Symbol != r.cfg.Symbol {
		return &OrderRejection{Text: fmt.Sprintf("Symbol must be %s", r.cfg.Symbol)}
	}
	if !req.OrderQty.IsPositive() {
		return &OrderRejection{Text: "Order Qty must be greater than zero"}
	}
	if !req.Price.IsPositive() {
		return &OrderRejection{Text: "Price must be greater than zero"}
	}
	if req.Account != r.cfg.Account {
		return &OrderRejection{Text: fmt.Sprintf("Account must be %s", r.cfg.Account)}
	}
	if req.OrdType != model.OrdTypeLimit {
		return &OrderRejection{Text: "OrdType must be LIMIT"}
	}
	if req.TimeInForce != model.TimeInForceFillOrKill {
		return &OrderRejection{Text: "TimeInForce must be FILL_OR_KILL"}
	}
	return nil
}

// ValidateMarketDataRequest accepts only top-of-book full refreshes for the
// configured symbol. Only the first related symbol is checked.
func (r *Rules) ValidateMarketDataRequest(req model.MarketDataRequest) error {
	if req.MarketDepth != 1 {
		return &MarketDataRejection{
			Reason: model.MDReqRejReasonUnsupportedMarketDepth,
			Text:   "Market depth must be TOP_OF_BOOK",
		}
	}
	if req.MDUpdateType != model.MDUpdateTypeFullRefresh {
		return &MarketDataRejection{
			Reason: model.MDReqRejReasonUnsupportedUpdateType,
			Text:   "MD update type must be FULL_REFRESH",
		}
	}
	if req.Symbol() != r.cfg.Symbol {
		return &MarketDataRejection{
			Reason: model.MDReqRejReasonUnknownSymbol,
			Text:   fmt.Sprintf("Symbol must be %s", r.cfg.Symbol),
		}
	}
	return nil
}
