// Package broker parses brokerage transaction exports into trade batches
// for the realized P&L engine. It owns everything the engine deliberately
// does not: file formats, lenient field parsing, and the reconstruction of
// strategy parent/leg linkage from shared order ids.
package broker

import (
	"fmt"
	"strings"
	"time"

	"github.com/hmarr/realized"
	"github.com/shopspring/decimal"
)

// Import is the result of parsing one export stream: sequence-numbered
// trades in file order, and the fee table keyed the way the engine looks
// fees up.
type Import struct {
	Trades []realized.Trade
	Fees   realized.FeeTable
}

// contractSize is the share count behind one standard equity option.
var contractSize = decimal.NewFromInt(100)

// fill is one parsed export row, normalized across formats before trade
// assembly.
type fill struct {
	Time    time.Time
	Side    realized.Side
	Symbol  string
	Option  bool
	OCC     realized.OCCSymbol
	Qty     int64
	Price   decimal.Decimal
	Fee     decimal.Decimal
	OrderID string
}

// assemble turns normalized fills into trades, numbering from firstSeq.
// Fills of the same order with two or more option legs become one strategy
// parent followed by its legs; everything else is standalone.
func assemble(fills []fill, firstSeq int) (*Import, error) {
	type group struct {
		id    string
		fills []fill
	}
	var groups []*group
	index := make(map[string]*group)
	for _, f := range fills {
		if f.OrderID == "" {
			groups = append(groups, &group{fills: []fill{f}})
			continue
		}
		g, ok := index[f.OrderID]
		if !ok {
			g = &group{id: f.OrderID}
			index[f.OrderID] = g
			groups = append(groups, g)
		}
		g.fills = append(g.fills, f)
	}

	imp := &Import{Fees: make(realized.FeeTable)}
	seq := firstSeq - 1
	next := func() int { seq++; return seq }

	for _, g := range groups {
		var legs []fill
		for _, f := range g.fills {
			if f.Option {
				legs = append(legs, f)
			}
		}
		parent := 0
		if len(legs) >= 2 {
			p, err := strategyParent(legs, next())
			if err != nil {
				return nil, err
			}
			parent = p.Seq
			imp.Trades = append(imp.Trades, p)
		}
		for _, f := range g.fills {
			t := f.trade(next())
			if f.Option && parent != 0 {
				t.Parent = parent
			}
			imp.Trades = append(imp.Trades, t)
			imp.Fees.Add(f.Time, f.Side, f.Qty, f.Fee)
		}
	}
	return imp, nil
}

func (f fill) trade(seq int) realized.Trade {
	t := realized.Trade{
		Seq:        seq,
		Time:       f.Time,
		Instrument: f.Symbol,
		Side:       f.Side,
		Quantity:   f.Qty,
		Price:      f.Price,
	}
	if f.Option {
		t.Key = realized.OptionKey(f.OCC)
		t.Asset = realized.Option
		t.OptionKind = f.OCC.Kind()
		t.Multiplier = 100
		t.Expiry = f.OCC.Expiry
	} else {
		t.Key = realized.StockKey(f.Symbol)
		t.Asset = realized.Stock
		t.Multiplier = 1
	}
	return t
}

// strategyParent synthesizes the parent trade of a multi-leg order: net
// price over the legs, debit reading as a buy, quantity the smallest leg
// quantity, stamped at the earliest leg fill.
func strategyParent(legs []fill, seq int) (realized.Trade, error) {
	syms := make([]realized.OCCSymbol, 0, len(legs))
	net := decimal.Zero
	qty := legs[0].Qty
	when := legs[0].Time
	expiry := legs[0].OCC.Expiry
	for _, f := range legs {
		syms = append(syms, f.OCC)
		if f.Side == realized.Buy {
			net = net.Add(f.Price)
		} else {
			net = net.Sub(f.Price)
		}
		qty = min(qty, f.Qty)
		if f.Time.Before(when) {
			when = f.Time
		}
		if f.OCC.Expiry.Before(expiry) {
			expiry = f.OCC.Expiry
		}
	}
	kind := strategyKind(syms)
	side := realized.Buy
	if net.IsNegative() {
		side = realized.Sell
		net = net.Abs()
	}
	root := syms[0].Root
	return realized.Trade{
		Seq:        seq,
		Time:       when,
		Instrument: fmt.Sprintf("%s %s", root, kind),
		Key:        realized.StrategyKey(kind, root, expiry, syms),
		Asset:      realized.OptionStrategy,
		OptionKind: kind,
		Side:       side,
		Quantity:   qty,
		Price:      net,
		Multiplier: 100,
		Expiry:     expiry,
	}, nil
}

// strategyKind names the spread from the shape of its legs.
func strategyKind(legs []realized.OCCSymbol) string {
	strikes := make(map[string]bool)
	expiries := make(map[string]bool)
	kinds := make(map[bool]bool)
	for _, l := range legs {
		strikes[l.Strike.String()] = true
		expiries[l.Expiry.String()] = true
		kinds[l.Call] = true
	}
	switch {
	case len(kinds) > 1:
		return "combo"
	case len(expiries) > 1 && len(strikes) > 1:
		return "diagonal"
	case len(expiries) > 1:
		return "calendar"
	case len(strikes) > 1:
		return "vertical"
	default:
		return "custom"
	}
}

// parseAction maps broker action labels onto engine sides.
func parseAction(s string) (realized.Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "BUY_TO_OPEN", "BUY_TO_CLOSE":
		return realized.Buy, nil
	case "SELL", "SELL_TO_OPEN", "SELL_TO_CLOSE":
		return realized.Sell, nil
	case "EXPIRED", "EXPIRATION", "EXPIRE":
		return realized.Expire, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// parseAmount parses a decimal field leniently: empty and placeholder
// values read as zero, and amounts are normalized to their magnitude since
// exports disagree on the sign convention for debits.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "--" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v.Abs(), nil
}
