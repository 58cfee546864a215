package broker

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/hmarr/realized"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

/*
	{
	    "data": {
	        "items": [
	            {
	                "transaction-type": "Trade",
	                "executed-at": "2024-01-19T15:59:00.000+00:00",
	                "action": "Sell to Open",
	                "symbol": "XYZ   240119C00050000",
	                "instrument-type": "Equity Option",
	                "quantity": 1,
	                "price": "2.04",
	                "commission": "1.00",
	                "regulatory-fees": "0.04",
	                "order-id": 301948
	            }
	        ]
	    }
	}
*/

// ImportJSON parses a transaction-history API response, numbering trades
// from firstSeq.
func ImportJSON(r io.Reader, firstSeq int) (*Import, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot parse json: %w", err)
	}
	path := "$.data.items[*]"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing transactions: %q %w", path, err)
	}
	items, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("error parsing transactions: %q is not a list", path)
	}

	// The API lists newest first, same as the csv export.
	var fills []fill
	for i := len(items) - 1; i >= 0; i-- {
		jitem, ok := items[i].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("transaction %d is not an object", i)
		}
		f, ok, err := jsonFill(jitem)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if !ok {
			log.WithField("type", jitem["transaction-type"]).Debug("skipping non-trade item")
			continue
		}
		fills = append(fills, f)
	}
	return assemble(fills, firstSeq)
}

func jsonFill(jitem map[string]any) (fill, bool, error) {
	kind, _ := jitem["transaction-type"].(string)
	switch strings.ToLower(kind) {
	case "trade", "receive deliver":
	default:
		return fill{}, false, nil
	}
	action, _ := jitem["action"].(string)
	// API actions read "Sell to Open"; the parser wants underscores.
	side, err := parseAction(strings.ReplaceAll(action, " ", "_"))
	if err != nil {
		return fill{}, false, err
	}
	stamp, _ := jitem["executed-at"].(string)
	when, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return fill{}, false, fmt.Errorf("invalid executed-at %q: %w", stamp, err)
	}
	qty, err := jsonInt(jitem["quantity"])
	if err != nil {
		return fill{}, false, fmt.Errorf("invalid quantity: %w", err)
	}
	price, err := jsonAmount(jitem["price"])
	if err != nil {
		return fill{}, false, fmt.Errorf("invalid price: %w", err)
	}
	commission, err := jsonAmount(jitem["commission"])
	if err != nil {
		return fill{}, false, fmt.Errorf("invalid commission: %w", err)
	}
	extra, err := jsonAmount(jitem["regulatory-fees"])
	if err != nil {
		return fill{}, false, fmt.Errorf("invalid regulatory-fees: %w", err)
	}

	symbol, _ := jitem["symbol"].(string)
	f := fill{
		Time:   when.UTC(),
		Side:   side,
		Symbol: strings.TrimSpace(symbol),
		Qty:    qty,
		Price:  price,
		Fee:    commission.Add(extra),
	}
	if id, err := jsonInt(jitem["order-id"]); err == nil && id != 0 {
		f.OrderID = fmt.Sprint(id)
	}
	itype, _ := jitem["instrument-type"].(string)
	if strings.EqualFold(itype, "Equity Option") {
		occ, err := realized.ParseOCC(f.Symbol)
		if err != nil {
			return fill{}, false, err
		}
		f.Option = true
		f.OCC = occ
		f.Symbol = occ.String()
	}
	return f, true, nil
}

// jsonInt reads a number that the API serves sometimes as a json number and
// sometimes as a string.
func jsonInt(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return 0, err
		}
		return d.IntPart(), nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

// jsonAmount reads a monetary field: string, number, or absent all occur.
func jsonAmount(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, nil
	case float64:
		return decimal.NewFromFloat(n).Abs(), nil
	case string:
		return parseAmount(n)
	default:
		return decimal.Zero, fmt.Errorf("not an amount: %v", v)
	}
}
