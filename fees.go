package realized

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeKey identifies the fee charged on one fill. Broker exports report
// commissions on separate lines keyed by the fill's timestamp, direction and
// quantity, so that triple is what the engine looks fees up by.
type FeeKey struct {
	Time     time.Time
	Side     Side
	Quantity int64
}

// FeeTable maps fills to the commission charged for them. A nil table is a
// valid table with no fees.
type FeeTable map[FeeKey]decimal.Decimal

// Add accumulates a fee for the given fill.
func (ft FeeTable) Add(when time.Time, side Side, qty int64, fee decimal.Decimal) {
	k := FeeKey{Time: when.UTC(), Side: side, Quantity: qty}
	ft[k] = ft[k].Add(fee)
}

// Lookup returns the fee for the given fill, or zero when none is recorded.
func (ft FeeTable) Lookup(when time.Time, side Side, qty int64) decimal.Decimal {
	if ft == nil {
		return decimal.Zero
	}
	return ft[FeeKey{Time: when.UTC(), Side: side, Quantity: qty}]
}
