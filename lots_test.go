package realized

import (
	"testing"
)

func TestApplyFIFOOrdering(t *testing.T) {
	ledger := Lots{
		{Side: Buy, Quantity: 10, Price: d("5")},
		{Side: Buy, Quantity: 5, Price: d("6")},
	}

	updated, realized, closed := ledger.Apply(Sell, 12, d("7"), 1)

	// 10 units close against the first lot (+2 each), 2 against the second (+1 each).
	if !realized.Equal(d("22")) {
		t.Errorf("Apply() realized = %s, want 22", realized)
	}
	if closed != 12 {
		t.Errorf("Apply() closed = %d, want 12", closed)
	}
	if len(updated) != 1 || updated[0].Side != Buy || updated[0].Quantity != 3 || !updated[0].Price.Equal(d("6")) {
		t.Errorf("Apply() lots = %v, want [buy 3 at 6]", updated)
	}
}

func TestApplyOpensRemainderLot(t *testing.T) {
	ledger := Lots{{Side: Buy, Quantity: 10, Price: d("5")}}

	updated, realized, closed := ledger.Apply(Sell, 12, d("7"), 1)

	if !realized.Equal(d("20")) {
		t.Errorf("Apply() realized = %s, want 20", realized)
	}
	if closed != 10 {
		t.Errorf("Apply() closed = %d, want 10", closed)
	}
	// The 2 unconsumed units flip the position into a short lot.
	if len(updated) != 1 || updated[0].Side != Sell || updated[0].Quantity != 2 || !updated[0].Price.Equal(d("7")) {
		t.Errorf("Apply() lots = %v, want [sell 2 at 7]", updated)
	}
}

func TestApplySameSideAppends(t *testing.T) {
	ledger := Lots{{Side: Buy, Quantity: 10, Price: d("5")}}

	updated, realized, closed := ledger.Apply(Buy, 5, d("6"), 1)

	if !realized.IsZero() || closed != 0 {
		t.Errorf("Apply() realized = %s closed = %d, want 0 and 0", realized, closed)
	}
	if len(updated) != 2 || updated[1].Price.Cmp(d("6")) != 0 {
		t.Errorf("Apply() lots = %v, want the new lot appended", updated)
	}
}

func TestApplyClosingShortWithBuy(t *testing.T) {
	ledger := Lots{{Side: Sell, Quantity: 2, Price: d("3.50")}}

	_, realized, closed := ledger.Apply(Buy, 2, d("1.25"), 100)

	// entry - exit: (3.50 - 1.25) * 2 * 100
	if !realized.Equal(d("450")) {
		t.Errorf("Apply() realized = %s, want 450", realized)
	}
	if closed != 2 {
		t.Errorf("Apply() closed = %d, want 2", closed)
	}
}

func TestExpireAsymmetry(t *testing.T) {
	long := Lots{{Side: Buy, Quantity: 1, Price: d("3.50")}}
	updated, realized, closed := long.Apply(Expire, 0, d("0"), 100)
	if !realized.Equal(d("-350")) {
		t.Errorf("long expiration realized = %s, want -350", realized)
	}
	if closed != 1 || len(updated) != 0 {
		t.Errorf("long expiration closed = %d lots = %v, want 1 and none", closed, updated)
	}

	short := Lots{{Side: Sell, Quantity: 1, Price: d("3.50")}}
	updated, realized, closed = short.Apply(Expire, 0, d("0"), 100)
	if !realized.Equal(d("350")) {
		t.Errorf("short expiration realized = %s, want +350", realized)
	}
	if closed != 1 || len(updated) != 0 {
		t.Errorf("short expiration closed = %d lots = %v, want 1 and none", closed, updated)
	}
}

func TestApplyIsPure(t *testing.T) {
	ledger := Lots{{Side: Buy, Quantity: 10, Price: d("5")}}

	ledger.Apply(Sell, 4, d("7"), 1)

	if ledger[0].Quantity != 10 {
		t.Errorf("Apply() mutated its receiver: %v", ledger)
	}
}

func TestAveragePrice(t *testing.T) {
	ledger := Lots{
		{Side: Buy, Quantity: 1, Price: d("2")},
		{Side: Buy, Quantity: 3, Price: d("4")},
	}
	if got := ledger.AveragePrice(); !got.Equal(d("3.5")) {
		t.Errorf("AveragePrice() = %s, want 3.5", got)
	}
}
