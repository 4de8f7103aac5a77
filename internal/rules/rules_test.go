package rules

import (
	"errors"
	"testing"

	"github.com/ismaiel54/fix-counterparty-sim/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrder() model.NewOrderRequest {
	return model.NewOrderRequest{
		ClOrdID:     "C1",
		Side:        model.SideBuy,
		Symbol:      "AAPL",
		OrderQty:    decimal.NewFromInt(100),
		Price:       decimal.NewFromFloat(150.0),
		Account:     "1234",
		OrdType:     model.OrdTypeLimit,
		TimeInForce: model.TimeInForceFillOrKill,
	}
}

func TestCheckCredentials(t *testing.T) {
	r := New(DefaultConfig())

	tests := []struct {
		name    string
		attempt model.LogonAttempt
		want    error
	}{
		{"valid", model.LogonAttempt{Username: "username", Password: "password"}, nil},
		{"wrong password", model.LogonAttempt{Username: "username", Password: "nope"}, ErrInvalidCredentials},
		{"wrong username", model.LogonAttempt{Username: "admin", Password: "password"}, ErrInvalidCredentials},
		{"missing password", model.LogonAttempt{Username: "username"}, ErrMissingCredentials},
		{"missing username", model.LogonAttempt{Password: "password"}, ErrMissingCredentials},
		{"missing both", model.LogonAttempt{}, ErrMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.CheckCredentials(tt.attempt))
		})
	}

	assert.Equal(t, "Invalid credentials", ErrInvalidCredentials.Error())
	assert.Equal(t, "Logon requires username and password", ErrMissingCredentials.Error())
}

func TestValidateOrder_Valid(t *testing.T) {
	r := New(DefaultConfig())
	assert.NoError(t, r.ValidateOrder(validOrder()))
}

func TestValidateOrder_SingleViolation(t *testing.T) {
	r := New(DefaultConfig())

	tests := []struct {
		name   string
		mutate func(*model.NewOrderRequest)
		text   string
	}{
		{"symbol", func(o *model.NewOrderRequest) { o.Symbol = "MSFT" }, "Symbol must be AAPL"},
		{"zero qty", func(o *model.NewOrderRequest) { o.OrderQty = decimal.Zero }, "Order Qty must be greater than zero"},
		{"negative qty", func(o *model.NewOrderRequest) { o.OrderQty = decimal.NewFromInt(-5) }, "Order Qty must be greater than zero"},
		{"zero price", func(o *model.NewOrderRequest) { o.Price = decimal.Zero }, "Price must be greater than zero"},
		{"negative price", func(o *model.NewOrderRequest) { o.Price = decimal.NewFromInt(-1) }, "Price must be greater than zero"},
		{"account", func(o *model.NewOrderRequest) { o.Account = "9999" }, "Account must be 1234"},
		{"market order", func(o *model.NewOrderRequest) { o.OrdType = model.OrdTypeMarket }, "OrdType must be LIMIT"},
		{"day order", func(o *model.NewOrderRequest) { o.TimeInForce = model.TimeInForceDay }, "TimeInForce must be FILL_OR_KILL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := validOrder()
			tt.mutate(&order)

			err := r.ValidateOrder(order)
			var rejection *OrderRejection
			require.True(t, errors.As(err, &rejection))
			assert.Equal(t, tt.text, rejection.Text)
		})
	}
}

func TestValidateOrder_FirstViolationWins(t *testing.T) {
	r := New(DefaultConfig())

	order := validOrder()
	order.Symbol = "MSFT"
	order.OrderQty = decimal.Zero
	order.Account = "0000"

	err := r.ValidateOrder(order)
	require.Error(t, err)
	assert.Equal(t, "Symbol must be AAPL", err.Error())

	order.Symbol = "AAPL"
	err = r.ValidateOrder(order)
	require.Error(t, err)
	assert.Equal(t, "Order Qty must be greater than zero", err.Error())
}

func TestValidateOrder_UsesConfiguredValues(t *testing.T) {
	r := New(Config{Symbol: "MSFT", Account: "42", Username: "u", Password: "p"})

	order := validOrder()
	order.Symbol = "MSFT"
	order.Account = "42"
	assert.NoError(t, r.ValidateOrder(order))

	order.Account = "1234"
	assert.EqualError(t, r.ValidateOrder(order), "Account must be 42")
}

func TestValidateMarketDataRequest(t *testing.T) {
	r := New(DefaultConfig())

	valid := model.MarketDataRequest{
		MDReqID:        "MD1",
		MarketDepth:    1,
		MDUpdateType:   model.MDUpdateTypeFullRefresh,
		RelatedSymbols: []string{"AAPL"},
	}
	assert.NoError(t, r.ValidateMarketDataRequest(valid))

	tests := []struct {
		name   string
		mutate func(*model.MarketDataRequest)
		reason model.MDReqRejReason
		text   string
	}{
		{"depth zero", func(m *model.MarketDataRequest) { m.MarketDepth = 0 }, model.MDReqRejReasonUnsupportedMarketDepth, "Market depth must be TOP_OF_BOOK"},
		{"depth five", func(m *model.MarketDataRequest) { m.MarketDepth = 5 }, model.MDReqRejReasonUnsupportedMarketDepth, "Market depth must be TOP_OF_BOOK"},
		{"depth wins over everything", func(m *model.MarketDataRequest) {
			m.MarketDepth = 2
			m.MDUpdateType = model.MDUpdateTypeIncremental
			m.RelatedSymbols = []string{"MSFT"}
		}, model.MDReqRejReasonUnsupportedMarketDepth, "Market depth must be TOP_OF_BOOK"},
		{"incremental", func(m *model.MarketDataRequest) { m.MDUpdateType = model.MDUpdateTypeIncremental }, model.MDReqRejReasonUnsupportedUpdateType, "MD update type must be FULL_REFRESH"},
		{"unknown symbol", func(m *model.MarketDataRequest) { m.RelatedSymbols = []string{"MSFT"} }, model.MDReqRejReasonUnknownSymbol, "Symbol must be AAPL"},
		{"no symbols", func(m *model.MarketDataRequest) { m.RelatedSymbols = nil }, model.MDReqRejReasonUnknownSymbol, "Symbol must be AAPL"},
		{"only first symbol counts", func(m *model.MarketDataRequest) { m.RelatedSymbols = []string{"MSFT", "AAPL"} }, model.MDReqRejReasonUnknownSymbol, "Symbol must be AAPL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.RelatedSymbols = append([]string(nil), valid.RelatedSymbols...)
			tt.mutate(&req)

			var rejection *MarketDataRejection
			require.True(t, errors.As(r.ValidateMarketDataRequest(req), &rejection))
			assert.Equal(t, tt.reason, rejection.Reason)
			assert.Equal(t, tt.text, rejection.Text)
		})
	}

	extra := valid
	extra.RelatedSymbols = []string{"AAPL", "MSFT"}
	assert.NoError(t, r.ValidateMarketDataRequest(extra), "trailing symbols are ignored")
}
