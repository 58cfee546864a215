package realized

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hmarr/realized/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// tradeRecord is the JSONL form of a Trade. Enums travel as their string
// form so the files stay greppable and diffable.
type tradeRecord struct {
	Seq        int             `json:"seq,omitempty"`
	Time       time.Time       `json:"time"`
	Instrument string          `json:"instrument"`
	Key        string          `json:"key"`
	Asset      string          `json:"asset"`
	OptionKind string          `json:"option,omitempty"`
	Side       string          `json:"side"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Multiplier int64           `json:"multiplier"`
	Expiry     *date.Date      `json:"expiry,omitempty"`
	Parent     int             `json:"parent,omitempty"`
}

// DecodeTrades decodes trades from a stream of JSONL data. Records missing
// a sequence number are assigned the next one after the largest seen so
// far, so several files can be concatenated and keep a single monotonic
// sequence space.
func DecodeTrades(r io.Reader) ([]Trade, error) {
	var trades []Trade
	maxSeq := 0
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec tradeRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("could not decode trade on line %d: %w", line, err)
		}
		t, err := rec.trade()
		if err != nil {
			return nil, fmt.Errorf("invalid trade on line %d: %w", line, err)
		}
		if t.Seq == 0 {
			t.Seq = maxSeq + 1
		}
		maxSeq = max(maxSeq, t.Seq)
		trades = append(trades, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read trades: %w", err)
	}
	return trades, nil
}

// EncodeTrades writes trades in the canonical JSONL form, one per line.
func EncodeTrades(w io.Writer, trades []Trade) error {
	for _, t := range trades {
		if err := EncodeTrade(w, t); err != nil {
			return err
		}
	}
	return nil
}

// EncodeTrade writes a single trade as one JSONL line.
func EncodeTrade(w io.Writer, t Trade) error {
	rec := tradeRecord{
		Seq:        t.Seq,
		Time:       t.Time.UTC(),
		Instrument: t.Instrument,
		Key:        t.Key,
		Asset:      t.Asset.String(),
		OptionKind: t.OptionKind,
		Side:       t.Side.String(),
		Quantity:   t.Quantity,
		Price:      t.Price,
		Multiplier: t.Multiplier,
		Parent:     t.Parent,
	}
	if !t.Expiry.IsZero() {
		expiry := t.Expiry
		rec.Expiry = &expiry
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("could not encode trade %d: %w", t.Seq, err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", raw); err != nil {
		return fmt.Errorf("could not write trade %d: %w", t.Seq, err)
	}
	return nil
}

func (rec tradeRecord) trade() (Trade, error) {
	asset, err := ParseAssetKind(rec.Asset)
	if err != nil {
		return Trade{}, err
	}
	side, err := ParseSide(rec.Side)
	if err != nil {
		return Trade{}, err
	}
	if rec.Key == "" {
		return Trade{}, fmt.Errorf("missing matching key")
	}
	t := Trade{
		Seq:        rec.Seq,
		Time:       rec.Time.UTC(),
		Instrument: rec.Instrument,
		Key:        rec.Key,
		Asset:      asset,
		OptionKind: rec.OptionKind,
		Side:       side,
		Quantity:   rec.Quantity,
		Price:      rec.Price,
		Multiplier: rec.Multiplier,
		Parent:     rec.Parent,
	}
	if rec.Expiry != nil {
		t.Expiry = *rec.Expiry
	}
	if t.Multiplier == 0 {
		t.Multiplier = 1
	}
	return t, nil
}
