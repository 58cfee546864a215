package renderer

import (
	"strings"

	"github.com/hmarr/realized"
)

// PositionsMarkdown renders the open positions, grouped spreads first, as a
// markdown report.
func PositionsMarkdown(rows []realized.PositionRow) string {
	b := &builder{Builder: &strings.Builder{}}

	b.Printf("# Open Positions\n\n")
	if len(rows) == 0 {
		b.Printf("No open positions.\n")
		return b.String()
	}

	b.Printf("| Instrument | Kind | Side | Qty | Price | Expiry | Cost Basis |\n")
	b.Printf("|:---|:---|:---|---:|---:|:---|---:|\n")
	for _, r := range rows {
		expiry := ""
		if !r.Expiry.IsZero() {
			expiry = r.Expiry.String()
		}
		b.Printf("| %s | %s | %s | %d | %s | %s | %s |\n",
			label(r.Instrument, r.Leg),
			r.OptionKind,
			r.Side,
			r.Quantity,
			r.Price.StringFixed(2),
			expiry,
			costBasis(r),
		)
	}
	return b.String()
}

// costBasis shows the roll adjustment on grouped summary rows: the adjusted
// net price, with the pre-roll price alongside when they differ.
func costBasis(r realized.PositionRow) string {
	if !r.Grouped {
		return ""
	}
	if r.Adjusted.Equal(r.Initial) {
		return r.Adjusted.StringFixed(2)
	}
	return r.Initial.StringFixed(2) + " → " + r.Adjusted.StringFixed(2)
}
