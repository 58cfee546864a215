package realized

import (
	"testing"

	"github.com/hmarr/realized/date"
)

const (
	callA = "XYZ991217C00150000"
	putB  = "XYZ991217P00150000"
)

func TestComputeReportStockFIFO(t *testing.T) {
	trades := []Trade{
		stockTrade(1, "2025-01-02T15:00:00Z", "AAPL", Buy, 10, "5"),
		stockTrade(2, "2025-01-03T15:00:00Z", "AAPL", Buy, 5, "6"),
		stockTrade(3, "2025-01-04T15:00:00Z", "AAPL", Sell, 12, "7"),
	}

	report := ComputeReport(trades, date.Date{}, d("1000"), nil)

	if len(report.Rows) != 3 {
		t.Fatalf("ComputeReport() emitted %d rows, want 3", len(report.Rows))
	}
	sell := report.Rows[2]
	if !sell.Realized.Equal(d("22")) {
		t.Errorf("sell row realized = %s, want 22", sell.Realized)
	}
	if sell.Closed != 12 {
		t.Errorf("sell row closed = %d, want 12", sell.Closed)
	}
	if !report.Realized.Equal(d("22")) {
		t.Errorf("final realized = %s, want 22", report.Realized)
	}
	lots := report.Positions[StockKey("AAPL")]
	if lots.Quantity() != 3 || !lots[0].Price.Equal(d("6")) {
		t.Errorf("final lots = %v, want 3 shares at 6", lots)
	}
}

func TestComputeReportCash(t *testing.T) {
	trades := []Trade{
		stockTrade(1, "2025-01-02T15:00:00Z", "AAPL", Buy, 10, "10"),
		stockTrade(2, "2025-01-03T15:00:00Z", "AAPL", Sell, 10, "12"),
	}

	report := ComputeReport(trades, date.Date{}, d("1000"), nil)

	if got := report.Rows[0].Cash; !got.Equal(d("900")) {
		t.Errorf("cash after buy = %s, want 900", got)
	}
	if got := report.Rows[1].Cash; !got.Equal(d("1020")) {
		t.Errorf("cash after sell = %s, want 1020", got)
	}
	if got := report.Rows[1].Total; !got.Equal(d("1020")) {
		t.Errorf("total after sell = %s, want 1020", got)
	}
}

// A spread opened leg by leg and closed through a strategy order reports its
// economics once, on the parent row; the leg rows stay at zero and leave the
// running totals untouched.
func TestStrategyParentSellOverride(t *testing.T) {
	trades := []Trade{
		optionTrade(1, "2025-01-02T15:00:00Z", callA, Buy, 1, "1.50", 0),
		optionTrade(2, "2025-01-02T15:00:00Z", putB, Sell, 1, "1.00", 0),
		strategyTrade(3, "2025-01-10T15:00:00Z", "strangle", Sell, 1, "2.00", callA, putB),
		optionTrade(4, "2025-01-10T15:00:00Z", callA, Sell, 1, "3.00", 3),
		optionTrade(5, "2025-01-10T15:00:00Z", putB, Buy, 1, "0.50", 3),
	}

	report := ComputeReport(trades, date.Date{}, d("0"), nil)

	if len(report.Rows) != 5 {
		t.Fatalf("ComputeReport() emitted %d rows, want 5", len(report.Rows))
	}
	parent := report.Rows[2]
	if parent.Leg {
		t.Fatalf("parent row marked as leg")
	}
	// (3.00-1.50)*100 on the call plus (1.00-0.50)*100 on the put.
	if !parent.Realized.Equal(d("200")) {
		t.Errorf("parent row realized = %s, want 200", parent.Realized)
	}
	for _, leg := range report.Rows[3:] {
		if !leg.Leg {
			t.Errorf("row %d not marked as leg", leg.Seq)
		}
		if !leg.Realized.IsZero() || leg.Closed != 0 {
			t.Errorf("leg row %d realized = %s closed = %d, want zeros", leg.Seq, leg.Realized, leg.Closed)
		}
		if !leg.Cumulative.Equal(parent.Cumulative) {
			t.Errorf("leg row %d moved the running total: %s", leg.Seq, leg.Cumulative)
		}
	}
	if !report.Realized.Equal(d("200")) {
		t.Errorf("final realized = %s, want 200", report.Realized)
	}
}

// A buy parent never takes the leg-derived override: leg economics on a
// debit-opened close are deliberately not re-routed to the parent row.
func TestStrategyParentBuyNoOverride(t *testing.T) {
	trades := []Trade{
		optionTrade(1, "2025-01-02T15:00:00Z", callA, Buy, 1, "1.50", 0),
		optionTrade(2, "2025-01-02T15:00:00Z", putB, Sell, 1, "1.00", 0),
		strategyTrade(3, "2025-01-10T15:00:00Z", "strangle", Buy, 1, "0.50", callA, putB),
		optionTrade(4, "2025-01-10T15:00:00Z", callA, Sell, 1, "3.00", 3),
		optionTrade(5, "2025-01-10T15:00:00Z", putB, Buy, 1, "0.50", 3),
	}

	report := ComputeReport(trades, date.Date{}, d("0"), nil)

	parent := report.Rows[2]
	if !parent.Realized.IsZero() {
		t.Errorf("buy parent row realized = %s, want 0", parent.Realized)
	}
	if !report.Realized.IsZero() {
		t.Errorf("final realized = %s, want 0", report.Realized)
	}
	// The legs still close their own ledgers.
	if lots := report.Positions[OptionKey(occ(callA))]; len(lots) != 0 {
		t.Errorf("call ledger not closed: %v", lots)
	}
}

func TestFeesChargedOnRowAndCash(t *testing.T) {
	fees := make(FeeTable)
	fees.Add(at("2025-01-02T15:00:00Z"), Buy, 10, d("1"))
	fees.Add(at("2025-01-03T15:00:00Z"), Sell, 10, d("1"))
	trades := []Trade{
		stockTrade(1, "2025-01-02T15:00:00Z", "AAPL", Buy, 10, "10"),
		stockTrade(2, "2025-01-03T15:00:00Z", "AAPL", Sell, 10, "12"),
	}

	report := ComputeReport(trades, date.Date{}, d("1000"), fees)

	if got := report.Rows[0].Realized; !got.Equal(d("-1")) {
		t.Errorf("buy row realized = %s, want -1 (fee only)", got)
	}
	if got := report.Rows[0].Cash; !got.Equal(d("899")) {
		t.Errorf("cash after buy = %s, want 899", got)
	}
	if got := report.Rows[1].Realized; !got.Equal(d("19")) {
		t.Errorf("sell row realized = %s, want 19", got)
	}
	if !report.Realized.Equal(d("18")) {
		t.Errorf("final realized = %s, want 18", report.Realized)
	}
}

// A strategy parent is charged the sum of its legs' fees.
func TestStrategyParentFeeIsLegSum(t *testing.T) {
	fees := make(FeeTable)
	fees.Add(at("2025-01-10T15:00:00Z"), Sell, 1, d("0.60"))
	fees.Add(at("2025-01-10T15:00:00Z"), Buy, 1, d("0.40"))
	trades := []Trade{
		optionTrade(1, "2025-01-02T15:00:00Z", callA, Buy, 1, "1.50", 0),
		optionTrade(2, "2025-01-02T15:00:00Z", putB, Sell, 1, "1.00", 0),
		strategyTrade(3, "2025-01-10T15:00:00Z", "strangle", Sell, 1, "2.00", callA, putB),
		optionTrade(4, "2025-01-10T15:00:00Z", callA, Sell, 1, "3.00", 3),
		optionTrade(5, "2025-01-10T15:00:00Z", putB, Buy, 1, "0.50", 3),
	}

	report := ComputeReport(trades, date.Date{}, d("0"), fees)

	parent := report.Rows[2]
	if !parent.Fee.Equal(d("1.00")) {
		t.Errorf("parent fee = %s, want 1.00", parent.Fee)
	}
	if !parent.Realized.Equal(d("199")) {
		t.Errorf("parent realized = %s, want 199", parent.Realized)
	}
}

func TestSinceFilterKeepsMatchingState(t *testing.T) {
	trades := []Trade{
		stockTrade(1, "2025-01-02T15:00:00Z", "AAPL", Buy, 10, "5"),
		stockTrade(2, "2025-02-02T15:00:00Z", "AAPL", Sell, 10, "7"),
	}

	report := ComputeReport(trades, date.New(2025, 2, 1), d("0"), nil)

	if len(report.Rows) != 1 {
		t.Fatalf("ComputeReport() emitted %d rows, want only the post-cutoff one", len(report.Rows))
	}
	// The sell still closes against the pre-cutoff buy lot.
	if !report.Rows[0].Realized.Equal(d("20")) {
		t.Errorf("sell row realized = %s, want 20", report.Rows[0].Realized)
	}
	if !report.Realized.Equal(d("20")) {
		t.Errorf("final realized = %s, want 20", report.Realized)
	}
}

func TestSameInstantOrderedBySeq(t *testing.T) {
	// Both fills share a timestamp; the load-time sequence number decides.
	trades := []Trade{
		stockTrade(1, "2025-01-02T15:00:00Z", "AAPL", Buy, 10, "5"),
		stockTrade(2, "2025-01-02T15:00:00Z", "AAPL", Sell, 10, "7"),
	}

	report := ComputeReport(trades, date.Date{}, d("0"), nil)

	if !report.Realized.Equal(d("20")) {
		t.Errorf("final realized = %s, want 20", report.Realized)
	}
	if len(report.Positions) != 0 {
		t.Errorf("positions not flat: %v", report.Positions)
	}
}

// Summing realized over non-leg rows always equals the final running P&L.
func TestRoundTripInvariant(t *testing.T) {
	fees := make(FeeTable)
	fees.Add(at("2025-01-10T15:00:00Z"), Sell, 1, d("0.60"))
	trades := []Trade{
		stockTrade(1, "2025-01-02T15:00:00Z", "AAPL", Buy, 10, "5"),
		optionTrade(2, "2025-01-02T16:00:00Z", callA, Buy, 1, "1.50", 0),
		optionTrade(3, "2025-01-03T15:00:00Z", putB, Sell, 1, "1.00", 0),
		stockTrade(4, "2025-01-05T15:00:00Z", "AAPL", Sell, 4, "6"),
		strategyTrade(5, "2025-01-10T15:00:00Z", "strangle", Sell, 1, "2.00", callA, putB),
		optionTrade(6, "2025-01-10T15:00:00Z", callA, Sell, 1, "3.00", 5),
		optionTrade(7, "2025-01-10T15:00:00Z", putB, Buy, 1, "0.50", 5),
	}

	report := ComputeReport(trades, date.Date{}, d("500"), fees)

	sum := d("0")
	for _, row := range report.Rows {
		if row.Leg {
			continue
		}
		sum = sum.Add(row.Realized)
	}
	if !sum.Equal(report.Realized) {
		t.Errorf("sum of non-leg realized = %s, final realized = %s", sum, report.Realized)
	}
}

// A dangling parent reference demotes the leg to a standalone trade.
func TestDanglingParentTreatedAsStandalone(t *testing.T) {
	trades := []Trade{
		optionTrade(1, "2025-01-02T15:00:00Z", callA, Buy, 1, "1.50", 0),
		optionTrade(2, "2025-01-10T15:00:00Z", callA, Sell, 1, "3.00", 999),
	}

	report := ComputeReport(trades, date.Date{}, d("0"), nil)

	if len(report.Rows) != 2 {
		t.Fatalf("ComputeReport() emitted %d rows, want 2", len(report.Rows))
	}
	sell := report.Rows[1]
	if sell.Leg {
		t.Errorf("dangling leg still marked as leg")
	}
	if !sell.Realized.Equal(d("150")) {
		t.Errorf("sell row realized = %s, want 150", sell.Realized)
	}
}
