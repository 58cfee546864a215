// Package renderer formats ledger reports and open-position summaries as
// markdown or plain tables. It holds no computation; everything it prints
// comes ready-made from the engine.
package renderer

import (
	"fmt"
	"strings"

	"github.com/hmarr/realized"
	"github.com/shopspring/decimal"
)

// builder is the shared markdown writer under every renderer in this
// package.
type builder struct {
	*strings.Builder
}

// Printf formats according to a format specifier and writes to the
// renderer's buffer.
func (b *builder) Printf(format string, args ...any) {
	fmt.Fprintf(b, format, args...)
}

// usd formats an amount for display.
func usd(v decimal.Decimal) string { return realized.USD(v).String() }

// signed formats an amount for display with an explicit sign, or returns
// empty for zero so that rows without P&L stay visually quiet.
func signed(v decimal.Decimal) string {
	if v.IsZero() {
		return ""
	}
	return realized.USD(v).SignedString()
}

// label prefixes leg rows so they read as children of the line above.
func label(instrument string, leg bool) string {
	if leg {
		return "↳ " + instrument
	}
	return instrument
}
