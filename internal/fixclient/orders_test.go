package fixclient

import (
	"testing"

	"github.com/quickfixgo/enum"
	"github.com/stretchr/testify/assert"
)

func TestOrderGenerator_Deterministic(t *testing.T) {
	a := NewOrderGenerator(42, "run1", "AAPL", "1234", 30)
	b := NewOrderGenerator(42, "run1", "AAPL", "1234", 30)

	for i := 0; i < 50; i++ {
		oa, ob := a.Next(), b.Next()
		assert.Equal(t, oa.ClOrdID, ob.ClOrdID)
		assert.Equal(t, oa.Valid, ob.Valid)
		assert.True(t, oa.Price.Equal(ob.Price))
	}
}

func TestOrderGenerator_AllValid(t *testing.T) {
	g := NewOrderGenerator(1, "run1", "AAPL", "1234", 0)
	for i := 0; i < 20; i++ {
		o := g.Next()
		assert.True(t, o.Valid)
		assert.Equal(t, "AAPL", o.Symbol)
		assert.Equal(t, "1234", o.Account)
		assert.True(t, o.Qty.IsPositive())
		assert.True(t, o.Price.IsPositive())
		assert.Equal(t, enum.OrdType_LIMIT, o.OrdType)
		assert.Equal(t, enum.TimeInForce_FILL_OR_KILL, o.TimeInForce)
	}
}

func TestOrderGenerator_AllInvalid(t *testing.T) {
	g := NewOrderGenerator(1, "run1", "AAPL", "1234", 100)
	for i := 0; i < 20; i++ {
		o := g.Next()
		assert.False(t, o.Valid)
		broken := o.Symbol != "AAPL" || !o.Qty.IsPositive() || !o.Price.IsPositive() ||
			o.Account != "1234" || o.OrdType != enum.OrdType_LIMIT || o.TimeInForce != enum.TimeInForce_FILL_OR_KILL
		assert.True(t, broken)
	}
}

func TestOrderGenerator_UniqueIDs(t *testing.T) {
	g := NewOrderGenerator(7, "run1", "AAPL", "1234", 50)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := g.Next().ClOrdID
		assert.False(t, seen[id], id)
		seen[id] = true
	}
}

func TestOrderGenerator_RunIDSeparatesClOrdIDs(t *testing.T) {
	a := NewOrderGenerator(42, "run1", "AAPL", "1234", 30)
	b := NewOrderGenerator(42, "run2", "AAPL", "1234", 30)

	for i := 0; i < 50; i++ {
		oa, ob := a.Next(), b.Next()
		assert.NotEqual(t, oa.ClOrdID, ob.ClOrdID)
		assert.Equal(t, oa.Valid, ob.Valid)
		assert.Equal(t, oa.Side, ob.Side)
		assert.True(t, oa.Qty.Equal(ob.Qty))
		assert.True(t, oa.Price.Equal(ob.Price))
	}
}
