package realized

import (
	"github.com/shopspring/decimal"
)

// Lot represents a slice of an open position at one price, on one side,
// awaiting closure. Lots never span prices or sides.
type Lot struct {
	Side     Side
	Quantity int64 // strictly positive; empty lots are pruned immediately
	Price    decimal.Decimal
}

// Lots is the ordered ledger of open lots for one matching key, oldest
// first (FIFO order).
type Lots []Lot

// Quantity returns the total open quantity across all lots.
func (l Lots) Quantity() int64 {
	var q int64
	for _, lot := range l {
		q += lot.Quantity
	}
	return q
}

// AveragePrice returns the quantity-weighted average acquisition price.
// It must only be called on a non-empty ledger.
func (l Lots) AveragePrice() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range l {
		total = total.Add(lot.Price.Mul(decimal.NewFromInt(lot.Quantity)))
	}
	return total.Div(decimal.NewFromInt(l.Quantity()))
}

// Apply matches an incoming fill against the ledger using FIFO and returns
// the updated ledger, the realized P&L, and the quantity closed. The
// receiver is left untouched; the caller persists the returned ledger.
//
// Opposite-side lots are consumed oldest first, up to the incoming quantity.
// Closing a long with a sell realizes (exit - entry) per unit, closing a
// short with a buy realizes (entry - exit) per unit, both scaled by the
// contract multiplier. Any unconsumed incoming quantity opens a new lot at
// the incoming price.
//
// An Expire side is a non-price closure: every lot is closed at price zero,
// so a long lot loses its cost and a short lot keeps its premium.
func (l Lots) Apply(side Side, qty int64, price decimal.Decimal, multiplier int64) (Lots, decimal.Decimal, int64) {
	if side == Expire {
		return l.expire(multiplier)
	}

	mult := decimal.NewFromInt(multiplier)
	realized := decimal.Zero
	var closed int64
	remaining := qty

	var updated Lots
	for _, lot := range l {
		if lot.Side == side || remaining == 0 {
			updated = append(updated, lot)
			continue
		}
		// Opposite side: consume up to the remaining incoming quantity.
		n := min(lot.Quantity, remaining)
		perUnit := price.Sub(lot.Price) // long lot closed by a sell
		if lot.Side == Sell {
			perUnit = lot.Price.Sub(price) // short lot closed by a buy
		}
		realized = realized.Add(perUnit.Mul(decimal.NewFromInt(n)).Mul(mult))
		closed += n
		remaining -= n
		if n < lot.Quantity {
			updated = append(updated, Lot{Side: lot.Side, Quantity: lot.Quantity - n, Price: lot.Price})
		}
	}

	if remaining > 0 {
		updated = append(updated, Lot{Side: side, Quantity: remaining, Price: price})
	}
	return updated, realized, closed
}

// expire closes every lot at price zero and clears the ledger.
func (l Lots) expire(multiplier int64) (Lots, decimal.Decimal, int64) {
	mult := decimal.NewFromInt(multiplier)
	realized := decimal.Zero
	var closed int64
	for _, lot := range l {
		amount := lot.Price.Mul(decimal.NewFromInt(lot.Quantity)).Mul(mult)
		if lot.Side == Buy {
			realized = realized.Sub(amount) // the premium paid is lost
		} else {
			realized = realized.Add(amount) // the premium collected is kept
		}
		closed += lot.Quantity
	}
	return nil, realized, closed
}
