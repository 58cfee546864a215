package realized

import (
	"slices"
	"time"

	"github.com/hmarr/realized/date"
	"github.com/shopspring/decimal"
)

// ReportRow is one line of the realized-P&L ledger.
type ReportRow struct {
	Seq        int
	Time       time.Time
	Instrument string
	Asset      AssetKind
	OptionKind string
	Side       Side
	Quantity   int64
	Price      decimal.Decimal
	Closed     int64           // quantity closed by this trade
	Realized   decimal.Decimal // realized P&L of this trade, fees deducted
	Fee        decimal.Decimal
	Cumulative decimal.Decimal // running realized P&L after this trade
	Cash       decimal.Decimal // running cash after this trade
	Total      decimal.Decimal // initial amount plus running realized P&L
	// Leg marks an informational strategy-leg row: its economics are
	// reported on the parent row and it never moves the running totals.
	Leg bool
}

// Report is the outcome of one full pass over a trade history.
type Report struct {
	Rows []ReportRow
	// Positions is the final lot ledger per matching key. It is handed to
	// BuildPositionRows read-only.
	Positions map[string]Lots
	// Realized is the final running realized P&L, fees deducted.
	Realized decimal.Decimal
}

// ComputeReport folds the FIFO matcher over the full chronological trade
// stream and returns the per-trade ledger, the final open lots, and the
// total realized P&L.
//
// Synthetic expirations for instruments past their expiry are appended
// before sorting, so they close whatever lots remain on their expiry day.
// Rows dated before since are not emitted, but their trades still run
// through the matcher so later closes find their lots. initialCash seeds the
// running cash and total columns. fees may be nil.
func ComputeReport(trades []Trade, since date.Date, initialCash decimal.Decimal, fees FeeTable) *Report {
	all := slices.Clone(trades)
	all = append(all, SynthesizeExpirations(trades, date.Today())...)
	slices.SortFunc(all, compareTrades)

	legs := legIndex(all)
	known := make(map[int]bool, len(all))
	for _, t := range all {
		known[t.Seq] = true
	}

	positions := make(map[string]Lots)
	running := decimal.Zero
	cash := initialCash
	suppressed := make(map[int]bool)

	emit := func(t Trade) bool {
		return since.IsZero() || !date.FromTime(t.Time).Before(since)
	}

	var rows []ReportRow
	for _, t := range all {
		// A leg whose parent survives in the batch is informational: it
		// updates its own ledger but leaves every running total untouched.
		if t.Parent != 0 && known[t.Parent] {
			l, _, _ := positions[t.Key].Apply(t.Side, t.Quantity, t.Price, t.Multiplier)
			setLots(positions, t.Key, l)
			if suppressed[t.Parent] || !emit(t) {
				continue
			}
			rows = append(rows, ReportRow{
				Seq: t.Seq, Time: t.Time, Instrument: t.Instrument,
				Asset: t.Asset, OptionKind: t.OptionKind, Side: t.Side,
				Quantity: t.Quantity, Price: t.Price,
				Realized: decimal.Zero, Fee: decimal.Zero,
				Cumulative: running, Cash: cash, Total: initialCash.Add(running),
				Leg: true,
			})
			continue
		}

		var realized decimal.Decimal
		var closed int64

		switch {
		case t.Asset == OptionStrategy && t.Side == Expire:
			realized, closed = expireStrategy(positions, t, legs[t.Seq])
		case t.Asset == OptionStrategy:
			l, r, c := positions[t.Key].Apply(t.Side, t.Quantity, t.Price, t.Multiplier)
			setLots(positions, t.Key, l)
			realized, closed = r, c
			// A sell parent whose own key holds no lots realized nothing
			// directly: the spread is being closed and the economics live in
			// the legs. Recompute from them, without persisting, since each
			// leg updates its own ledger when its turn comes.
			// A buy parent never takes this override.
			if t.Side == Sell && realized.IsZero() && closed == 0 {
				realized = decimal.Zero
				for _, leg := range legs[t.Seq] {
					_, r, _ := positions[leg.Key].Apply(leg.Side, leg.Quantity, leg.Price, leg.Multiplier)
					realized = realized.Add(r)
				}
			}
		default:
			l, r, c := positions[t.Key].Apply(t.Side, t.Quantity, t.Price, t.Multiplier)
			setLots(positions, t.Key, l)
			realized, closed = r, c
		}

		// An expiration that closed nothing has nothing to report, and its
		// leg rows would be orphans: suppress them too.
		if t.Side == Expire && closed == 0 {
			suppressed[t.Seq] = true
			continue
		}

		fee := tradeFee(fees, t, legs[t.Seq])
		switch t.Side {
		case Buy:
			cash = cash.Sub(t.amount())
		case Sell:
			cash = cash.Add(t.amount())
		}
		realized = realized.Sub(fee)
		cash = cash.Sub(fee)
		running = running.Add(realized)

		if !emit(t) {
			continue
		}
		qty := t.Quantity
		if t.Side == Expire {
			qty = closed
		}
		rows = append(rows, ReportRow{
			Seq: t.Seq, Time: t.Time, Instrument: t.Instrument,
			Asset: t.Asset, OptionKind: t.OptionKind, Side: t.Side,
			Quantity: qty, Price: t.Price,
			Closed: closed, Realized: realized, Fee: fee,
			Cumulative: running, Cash: cash, Total: initialCash.Add(running),
		})
	}

	return &Report{Rows: rows, Positions: positions, Realized: running}
}

// expireStrategy handles the expiration of a strategy parent. With two or
// more linked legs the economics are entirely in the legs: each leg's ledger
// is expired independently and the parent's own entry is dropped. With fewer
// legs there is no spread to speak of; the parent entry is cleared and the
// legs, if any, expire on their own elsewhere in the pass.
func expireStrategy(positions map[string]Lots, t Trade, legs []Trade) (decimal.Decimal, int64) {
	realized := decimal.Zero
	var closed int64
	if len(legs) >= 2 {
		for _, leg := range legs {
			l, r, c := positions[leg.Key].Apply(Expire, 0, decimal.Zero, leg.Multiplier)
			setLots(positions, leg.Key, l)
			realized = realized.Add(r)
			closed = max(closed, c)
		}
	}
	delete(positions, t.Key)
	return realized, closed
}

// tradeFee looks up the fee for a trade. A strategy parent is charged the
// sum of its legs' fees; everything else is charged its own.
func tradeFee(fees FeeTable, t Trade, legs []Trade) decimal.Decimal {
	if t.Asset == OptionStrategy && len(legs) > 0 {
		fee := decimal.Zero
		for _, leg := range legs {
			fee = fee.Add(fees.Lookup(leg.Time, leg.Side, leg.Quantity))
		}
		return fee
	}
	return fees.Lookup(t.Time, t.Side, t.Quantity)
}

// setLots stores a ledger, dropping the key entirely when it emptied so the
// position map never carries zero-quantity entries.
func setLots(positions map[string]Lots, key string, l Lots) {
	if len(l) == 0 {
		delete(positions, key)
		return
	}
	positions[key] = l
}
