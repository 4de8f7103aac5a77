package fixclient

import (
	"fmt"
	"math/rand"

	"github.com/quickfixgo/enum"
	"github.com/shopspring/decimal"
)

// GeneratedOrder is an order plus whether the acceptor should accept it
type GeneratedOrder struct {
	Order
	Valid bool
}

// OrderGenerator produces a deterministic mix of valid orders and orders
// that break exactly one acceptance rule. The run id only feeds ClOrdID, so
// runs with the same seed send the same orders under distinct ids.
type OrderGenerator struct {
	rng        *rand.Rand
	seed       int64
	runID      string
	symbol     string
	account    string
	invalidPct int
	n          int
}

func NewOrderGenerator(seed int64, runID, symbol, account string, invalidPct int) *OrderGenerator {
	return &OrderGenerator{
		rng:        rand.New(rand.NewSource(seed)),
		seed:       seed,
		runID:      runID,
		symbol:     symbol,
		account:    account,
		invalidPct: invalidPct,
	}
}

var breakers = []func(*Order){
	func(o *Order) { o.Symbol = "MSFT" },
	func(o *Order) { o.Qty = decimal.Zero },
	func(o *Order) { o.Price = decimal.NewFromInt(-1) },
	func(o *Order) { o.Account = "0000" },
	func(o *Order) { o.OrdType = enum.OrdType_MARKET },
	func(o *Order) { o.TimeInForce = enum.TimeInForce_DAY },
}

// Next returns the next order
func (g *OrderGenerator) Next() GeneratedOrder {
	g.n++
	o := Order{
		ClOrdID:     fmt.Sprintf("ord-%s-%d-%d", g.runID, g.seed, g.n),
		Side:        enum.Side_BUY,
		Symbol:      g.symbol,
		Account:     g.account,
		Qty:         decimal.NewFromInt(int64(1 + g.rng.Intn(100))),
		Price:       decimal.NewFromFloat(150.0 + g.rng.Float64()*10.0).Round(2),
		OrdType:     enum.OrdType_LIMIT,
		TimeInForce: enum.TimeInForce_FILL_OR_KILL,
	}
	if g.rng.Intn(2) == 1 {
		o.Side = enum.Side_SELL
	}

	if g.rng.Intn(100) < g.invalidPct {
		breakers[g.rng.Intn(len(breakers))](&o)
		return GeneratedOrder{Order: o, Valid: false}
	}
	return GeneratedOrder{Order: o, Valid: true}
}
