package realized

import (
	"time"

	"github.com/hmarr/realized/date"
	"github.com/shopspring/decimal"
)

// d is a helper for tests to build exact decimals from constants.
func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// at parses an RFC 3339 instant for test trades.
func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// occ parses an OCC symbol, panicking on malformed test input.
func occ(s string) OCCSymbol {
	o, err := ParseOCC(s)
	if err != nil {
		panic(err)
	}
	return o
}

// stockTrade builds a share fill.
func stockTrade(seq int, when, symbol string, side Side, qty int64, price string) Trade {
	return Trade{
		Seq:        seq,
		Time:       at(when),
		Instrument: symbol,
		Key:        StockKey(symbol),
		Asset:      Stock,
		Side:       side,
		Quantity:   qty,
		Price:      d(price),
		Multiplier: 1,
	}
}

// optionTrade builds a single option contract fill. parent is zero for
// standalone options.
func optionTrade(seq int, when, symbol string, side Side, qty int64, price string, parent int) Trade {
	o := occ(symbol)
	return Trade{
		Seq:        seq,
		Time:       at(when),
		Instrument: symbol,
		Key:        OptionKey(o),
		Asset:      Option,
		OptionKind: o.Kind(),
		Side:       side,
		Quantity:   qty,
		Price:      d(price),
		Multiplier: 100,
		Expiry:     o.Expiry,
		Parent:     parent,
	}
}

// strategyTrade builds the parent fill of a multi-leg order over the given
// leg symbols.
func strategyTrade(seq int, when, kind string, side Side, qty int64, price string, legSymbols ...string) Trade {
	legs := make([]OCCSymbol, 0, len(legSymbols))
	for _, s := range legSymbols {
		legs = append(legs, occ(s))
	}
	expiry := legs[0].Expiry
	for _, l := range legs[1:] {
		if l.Expiry.Before(expiry) {
			expiry = l.Expiry
		}
	}
	return Trade{
		Seq:        seq,
		Time:       at(when),
		Instrument: legs[0].Root + " " + kind,
		Key:        StrategyKey(kind, legs[0].Root, expiry, legs),
		Asset:      OptionStrategy,
		OptionKind: kind,
		Side:       side,
		Quantity:   qty,
		Price:      d(price),
		Multiplier: 100,
		Expiry:     expiry,
	}
}

var farFuture = date.New(2099, time.December, 17)
