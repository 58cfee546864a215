package renderer

import (
	"io"

	"github.com/hmarr/realized"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

// LedgerTable writes the realized-P&L ledger as a plain text table, for
// terminals without markdown rendering.
func LedgerTable(w io.Writer, report *realized.Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Instrument", "Action", "Qty", "Price", "Realized", "Cumulative"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetColumnSeparator("")

	for _, r := range report.Rows {
		realizedCol, cumulativeCol := "", ""
		if !r.Leg {
			realizedCol = signed(r.Realized)
			cumulativeCol = signed(r.Cumulative)
		}
		table.Append([]string{
			r.Time.Format("2006-01-02"),
			label(r.Instrument, r.Leg),
			r.Side.String(),
			decimal.NewFromInt(r.Quantity).String(),
			r.Price.StringFixed(2),
			realizedCol,
			cumulativeCol,
		})
	}
	table.SetFooter([]string{"", "", "", "", "", "Total", signed(report.Realized)})
	table.Render()
}

// PositionsTable writes the open positions as a plain text table.
func PositionsTable(w io.Writer, rows []realized.PositionRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Instrument", "Kind", "Side", "Qty", "Price", "Expiry", "Cost Basis"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetColumnSeparator("")

	for _, r := range rows {
		expiry := ""
		if !r.Expiry.IsZero() {
			expiry = r.Expiry.String()
		}
		table.Append([]string{
			label(r.Instrument, r.Leg),
			r.OptionKind,
			r.Side.String(),
			decimal.NewFromInt(r.Quantity).String(),
			r.Price.StringFixed(2),
			expiry,
			costBasis(r),
		})
	}
	table.Render()
}
