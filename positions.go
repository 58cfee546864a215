package realized

import (
	"fmt"
	"slices"

	"github.com/hmarr/realized/date"
	"github.com/shopspring/decimal"
)

// PositionRow is one open-position line. Multi-leg spreads appear as a
// synthetic summary row followed by their leg rows.
type PositionRow struct {
	Instrument string
	Asset      AssetKind
	OptionKind string
	Side       Side
	Quantity   int64
	Price      decimal.Decimal // average price; net adjusted price on summary rows
	Expiry     date.Date       // zero on summary rows and stocks
	Leg        bool            // set on the leg rows of a grouped spread
	// Initial and Adjusted bracket the roll-cost-basis adjustment and are
	// meaningful only when Grouped is set.
	Grouped  bool
	Initial  decimal.Decimal
	Adjusted decimal.Decimal
}

// SpreadKind classifies a multi-leg group of open option positions.
type SpreadKind int

const (
	// CalendarSpread has one strike and distinct expiries.
	CalendarSpread SpreadKind = iota
	// VerticalSpread has one expiry and distinct strikes.
	VerticalSpread
	// DiagonalSpread has distinct strikes and distinct expiries.
	DiagonalSpread
)

func (k SpreadKind) String() string {
	switch k {
	case CalendarSpread:
		return "calendar"
	case VerticalSpread:
		return "vertical"
	case DiagonalSpread:
		return "diagonal"
	default:
		return "unknown"
	}
}

// openPosition is the raw state of one matching key before grouping.
type openPosition struct {
	key      string
	first    Trade // display metadata
	side     Side
	qty      int64
	price    decimal.Decimal // quantity-weighted average
	occ      OCCSymbol
	isOption bool

	remaining  int64 // quantity not yet consumed by a spread group
	standalone bool  // pass-1 long remainder, excluded from pass 2
}

// spreadLeg is a slice of an open position consumed by one spread group.
// Quantities are split when positions don't align, so the same key can feed
// several groups (partial rolls).
type spreadLeg struct {
	pos      *openPosition
	qty      int64
	adjusted decimal.Decimal
}

type spread struct {
	kind SpreadKind
	qty  int64
	legs []spreadLeg
}

// BuildPositionRows reconstructs human-meaningful groupings from the final
// lot state: standalone positions and multi-leg spreads, with roll credits
// folded into long-leg cost bases. It is a pure function of its inputs;
// running it twice yields identical output.
//
// first is the matching-key to first-trade index (see FirstTradeIndex) and
// trades is the full history, consulted for roll-credit lookups.
func BuildPositionRows(positions map[string]Lots, first map[string]Trade, trades []Trade) []PositionRow {
	open := collectOpen(positions, first)

	var spreads []*spread
	spreads = append(spreads, groupCalendars(open)...)
	spreads = append(spreads, groupVerticals(open)...)

	for _, s := range spreads {
		s.classify()
		s.adjustRollCredits(trades)
	}

	var rows []PositionRow
	for _, s := range spreads {
		rows = append(rows, s.rows()...)
	}
	for _, p := range open {
		if p.remaining == 0 {
			continue
		}
		rows = append(rows, PositionRow{
			Instrument: p.first.Instrument,
			Asset:      p.first.Asset,
			OptionKind: p.first.OptionKind,
			Side:       p.side,
			Quantity:   p.remaining,
			Price:      p.price,
			Expiry:     p.first.Expiry,
		})
	}
	return rows
}

// collectOpen builds one raw position per matching key holding a positive
// quantity, in first-trade order. Strategy-parent keys are skipped: only
// their legs are displayed.
func collectOpen(positions map[string]Lots, first map[string]Trade) []*openPosition {
	var open []*openPosition
	for key, lots := range positions {
		qty := lots.Quantity()
		if qty <= 0 {
			continue
		}
		t, ok := first[key]
		if !ok || t.Asset == OptionStrategy {
			continue
		}
		p := &openPosition{
			key:       key,
			first:     t,
			side:      lots[0].Side,
			qty:       qty,
			price:     lots.AveragePrice(),
			remaining: qty,
		}
		if occ, ok := occOf(key); ok {
			p.occ, p.isOption = occ, true
		}
		open = append(open, p)
	}
	slices.SortFunc(open, func(a, b *openPosition) int { return a.first.Seq - b.first.Seq })
	return open
}

// groupCalendars is pass 1: options sharing (root, strike, call/put) but
// held on both sides are paired into calendar groups, shorts against longs.
// Long legs are taken farthest expiry first and short legs nearest first,
// consuming the smallest common remainder each round. Long quantity left
// over when the shorts run out is frozen as a standalone row.
func groupCalendars(open []*openPosition) []*spread {
	type calKey struct {
		root, strike string
		call         bool
	}
	longs := make(map[calKey][]*openPosition)
	shorts := make(map[calKey][]*openPosition)
	var order []calKey
	seen := make(map[calKey]bool)
	for _, p := range open {
		if !p.isOption {
			continue
		}
		k := calKey{p.occ.Root, p.occ.Strike.String(), p.occ.Call}
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
		if p.side == Buy {
			longs[k] = append(longs[k], p)
		} else {
			shorts[k] = append(shorts[k], p)
		}
	}

	var spreads []*spread
	for _, k := range order {
		ls, ss := longs[k], shorts[k]
		if len(ls) == 0 || len(ss) == 0 {
			continue
		}
		slices.SortFunc(ls, func(a, b *openPosition) int { return compareExpiry(b.occ.Expiry, a.occ.Expiry) })
		slices.SortFunc(ss, func(a, b *openPosition) int { return compareExpiry(a.occ.Expiry, b.occ.Expiry) })
		spreads = append(spreads, matchGreedy(ls, ss)...)
		for _, l := range ls {
			if l.remaining > 0 {
				l.standalone = true
			}
		}
	}
	return spreads
}

// groupVerticals is pass 2: options not consumed in pass 1 sharing
// (root, expiry, call/put) are paired by strike order. Unmatched long
// remainders stay plain open positions here.
func groupVerticals(open []*openPosition) []*spread {
	type vertKey struct {
		root   string
		expiry date.Date
		call   bool
	}
	longs := make(map[vertKey][]*openPosition)
	shorts := make(map[vertKey][]*openPosition)
	var order []vertKey
	seen := make(map[vertKey]bool)
	for _, p := range open {
		if !p.isOption || p.standalone || p.remaining == 0 {
			continue
		}
		k := vertKey{p.occ.Root, p.occ.Expiry, p.occ.Call}
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
		if p.side == Buy {
			longs[k] = append(longs[k], p)
		} else {
			shorts[k] = append(shorts[k], p)
		}
	}

	var spreads []*spread
	for _, k := range order {
		ls, ss := longs[k], shorts[k]
		if len(ls) == 0 || len(ss) == 0 {
			continue
		}
		slices.SortFunc(ls, func(a, b *openPosition) int { return a.occ.Strike.Cmp(b.occ.Strike) })
		slices.SortFunc(ss, func(a, b *openPosition) int { return a.occ.Strike.Cmp(b.occ.Strike) })
		spreads = append(spreads, matchGreedy(ls, ss)...)
	}
	return spreads
}

// matchGreedy pairs the head short against the head long for the smallest
// common remainder, splitting positions across groups when quantities don't
// align, until either side runs out.
func matchGreedy(longs, shorts []*openPosition) []*spread {
	var spreads []*spread
	for len(longs) > 0 && len(shorts) > 0 {
		l, s := longs[0], shorts[0]
		n := min(l.remaining, s.remaining)
		spreads = append(spreads, &spread{
			qty: n,
			legs: []spreadLeg{
				{pos: s, qty: n, adjusted: s.price},
				{pos: l, qty: n, adjusted: l.price},
			},
		})
		l.remaining -= n
		s.remaining -= n
		if l.remaining == 0 {
			longs = longs[1:]
		}
		if s.remaining == 0 {
			shorts = shorts[1:]
		}
	}
	return spreads
}

func (s *spread) classify() {
	strikes := make(map[string]bool)
	expiries := make(map[date.Date]bool)
	for _, leg := range s.legs {
		strikes[leg.pos.occ.Strike.String()] = true
		expiries[leg.pos.occ.Expiry] = true
	}
	switch {
	case len(expiries) > 1 && len(strikes) > 1:
		s.kind = DiagonalSpread
	case len(expiries) > 1:
		s.kind = CalendarSpread
	default:
		s.kind = VerticalSpread
	}
}

// adjustRollCredits folds banked roll credits into long-leg cost bases.
// Only calendar and diagonal groups qualify: a vertical's legs were opened
// against each other, not rolled into.
func (s *spread) adjustRollCredits(trades []Trade) {
	if s.kind == VerticalSpread {
		return
	}
	for i := range s.legs {
		leg := &s.legs[i]
		if leg.pos.side != Buy {
			continue
		}
		credits := rollCredits(trades, leg.pos.occ)
		if !credits.IsPositive() {
			continue
		}
		scale := decimal.NewFromInt(leg.qty).Mul(decimal.NewFromInt(100))
		leg.adjusted = leg.pos.price.Sub(credits.Div(scale))
	}
}

// rollCredits replays every historical trade on the same (root, strike,
// call/put) through a private FIFO ledger keyed by expiry date, accumulating
// realized P&L from buy-side closes (shorts being bought back). Whenever a
// per-expiry ledger fully empties its positive accumulation is banked and
// the counter resets, so several roll cycles on the same strike each
// contribute. A still-open ledger with positive accumulation contributes as
// well: partial closes still count.
func rollCredits(trades []Trade, occ OCCSymbol) decimal.Decimal {
	var history []Trade
	for _, t := range trades {
		o, ok := occOf(t.Key)
		if !ok || o.Root != occ.Root || o.Call != occ.Call || !o.Strike.Equal(occ.Strike) {
			continue
		}
		history = append(history, t)
	}
	slices.SortFunc(history, compareTrades)

	ledgers := make(map[date.Date]Lots)
	acc := make(map[date.Date]decimal.Decimal)
	total := decimal.Zero
	for _, t := range history {
		o, _ := occOf(t.Key)
		l, r, closed := ledgers[o.Expiry].Apply(t.Side, t.Quantity, t.Price, t.Multiplier)
		ledgers[o.Expiry] = l
		if t.Side == Buy && closed > 0 {
			acc[o.Expiry] = acc[o.Expiry].Add(r)
		}
		if len(l) == 0 {
			if acc[o.Expiry].IsPositive() {
				total = total.Add(acc[o.Expiry])
			}
			acc[o.Expiry] = decimal.Zero
		}
	}
	for expiry, l := range ledgers {
		if len(l) > 0 && acc[expiry].IsPositive() {
			total = total.Add(acc[expiry])
		}
	}
	return total
}

// rows expands a spread into its summary row followed by its leg rows,
// farthest expiry first, highest strike first on ties. The net price is the
// sum of long leg prices minus short leg prices, credits included; its sign
// picks the displayed side: a debit reads as a buy, a credit as a sell.
func (s *spread) rows() []PositionRow {
	net := decimal.Zero
	root := s.legs[0].pos.occ.Root
	for _, leg := range s.legs {
		if leg.pos.side == Buy {
			net = net.Add(leg.adjusted)
		} else {
			net = net.Sub(leg.pos.price)
		}
	}
	side := Buy
	if net.IsNegative() {
		side = Sell
	}

	rows := []PositionRow{{
		Instrument: fmt.Sprintf("%s %s %s spread", root, s.kind, s.legs[0].pos.occ.Kind()),
		Asset:      OptionStrategy,
		OptionKind: s.kind.String(),
		Side:       side,
		Quantity:   s.qty,
		Price:      net.Abs(),
	}}

	legs := slices.Clone(s.legs)
	slices.SortFunc(legs, func(a, b spreadLeg) int {
		if c := compareExpiry(b.pos.occ.Expiry, a.pos.occ.Expiry); c != 0 {
			return c
		}
		return b.pos.occ.Strike.Cmp(a.pos.occ.Strike)
	})
	for _, leg := range legs {
		rows = append(rows, PositionRow{
			Instrument: leg.pos.first.Instrument,
			Asset:      leg.pos.first.Asset,
			OptionKind: leg.pos.first.OptionKind,
			Side:       leg.pos.side,
			Quantity:   leg.qty,
			Price:      leg.adjusted,
			Expiry:     leg.pos.occ.Expiry,
			Leg:        true,
			Grouped:    true,
			Initial:    leg.pos.price,
			Adjusted:   leg.adjusted,
		})
	}
	return rows
}

func compareExpiry(a, b date.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
