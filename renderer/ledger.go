package renderer

import (
	"strings"

	"github.com/hmarr/realized"
)

// LedgerMarkdown renders the realized-P&L ledger as a markdown report.
func LedgerMarkdown(report *realized.Report) string {
	b := &builder{Builder: &strings.Builder{}}

	b.Printf("# Realized P&L\n\n")
	b.Printf("Total realized: %s\n\n", signed(report.Realized))

	b.Printf("| # | Date | Instrument | Action | Qty | Price | Closed | Realized | Fees | Cumulative | Cash | Total |\n")
	b.Printf("|---:|:---|:---|:---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, r := range report.Rows {
		if r.Leg {
			// Informational rows: the economics sit on the parent line.
			b.Printf("| %d | %s | %s | %s | %d | %s | | | | | | |\n",
				r.Seq,
				r.Time.Format("2006-01-02"),
				label(r.Instrument, true),
				r.Side,
				r.Quantity,
				r.Price.StringFixed(2),
			)
			continue
		}
		b.Printf("| %d | %s | %s | %s | %d | %s | %d | %s | %s | %s | %s | %s |\n",
			r.Seq,
			r.Time.Format("2006-01-02"),
			r.Instrument,
			r.Side,
			r.Quantity,
			r.Price.StringFixed(2),
			r.Closed,
			signed(r.Realized),
			signed(r.Fee.Neg()),
			signed(r.Cumulative),
			usd(r.Cash),
			usd(r.Total),
		)
	}
	return b.String()
}
