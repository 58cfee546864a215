package broker

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/hmarr/realized"
	log "github.com/sirupsen/logrus"
)

// csvRow is the raw shape of one transaction-history export line. Amount
// fields stay strings so that empty and placeholder values can be read
// leniently.
type csvRow struct {
	Date           string `csv:"Date"`
	Type           string `csv:"Type"`
	Action         string `csv:"Action"`
	Symbol         string `csv:"Symbol"`
	InstrumentType string `csv:"Instrument Type"`
	Quantity       int64  `csv:"Quantity"`
	AveragePrice   string `csv:"Average Price"`
	Commissions    string `csv:"Commissions"`
	Fees           string `csv:"Fees"`
	OrderID        string `csv:"Order #"`
}

// csv exports carry zone-offset timestamps like 2024-01-19T15:59:00-0600.
const csvTimeLayout = "2006-01-02T15:04:05-0700"

// ImportCSV parses a transaction-history CSV export, numbering trades from
// firstSeq. Non-trade lines (money movement, dividends, assignments of
// cash) are skipped with a warning.
func ImportCSV(r io.Reader, firstSeq int) (*Import, error) {
	var rows []csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("cannot parse csv: %w", err)
	}

	// Exports list newest first. Fills are assembled oldest first so that
	// sequence numbers follow time.
	var fills []fill
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		f, ok, err := row.fill()
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", i+2, err)
		}
		if !ok {
			log.WithFields(log.Fields{"type": row.Type, "symbol": row.Symbol}).
				Debug("skipping non-trade row")
			continue
		}
		fills = append(fills, f)
	}
	return assemble(fills, firstSeq)
}

// fill normalizes one export row. The second return is false for rows that
// are not trades at all.
func (r csvRow) fill() (fill, bool, error) {
	switch strings.ToLower(strings.TrimSpace(r.Type)) {
	case "trade", "receive deliver":
	default:
		return fill{}, false, nil
	}
	side, err := parseAction(r.Action)
	if err != nil {
		return fill{}, false, err
	}
	when, err := time.Parse(csvTimeLayout, r.Date)
	if err != nil {
		return fill{}, false, fmt.Errorf("invalid date %q: %w", r.Date, err)
	}
	// Per-contract prices come signed by cash direction; fees per fill.
	price, err := parseAmount(r.AveragePrice)
	if err != nil {
		return fill{}, false, err
	}
	commission, err := parseAmount(r.Commissions)
	if err != nil {
		return fill{}, false, err
	}
	extra, err := parseAmount(r.Fees)
	if err != nil {
		return fill{}, false, err
	}

	f := fill{
		Time:    when.UTC(),
		Side:    side,
		Symbol:  strings.TrimSpace(r.Symbol),
		Qty:     r.Quantity,
		Price:   price,
		Fee:     commission.Add(extra),
		OrderID: strings.TrimSpace(r.OrderID),
	}
	if strings.EqualFold(strings.TrimSpace(r.InstrumentType), "Equity Option") {
		occ, err := realized.ParseOCC(f.Symbol)
		if err != nil {
			return fill{}, false, err
		}
		f.Option = true
		f.OCC = occ
		f.Symbol = occ.String()
		// Exports quote options per contract; the engine works in per-share
		// premium and applies the multiplier itself.
		f.Price = f.Price.Div(contractSize)
	}
	return f, true, nil
}
