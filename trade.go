package realized

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hmarr/realized/date"
	"github.com/shopspring/decimal"
)

// AssetKind identifies the kind of instrument a trade fills.
type AssetKind int

const (
	// Stock is a plain share fill.
	Stock AssetKind = iota
	// Option is a single option contract fill, possibly a leg of a strategy.
	Option
	// OptionStrategy is the parent fill of a multi-leg option order,
	// carrying the net price of the whole strategy.
	OptionStrategy
)

func (k AssetKind) String() string {
	switch k {
	case Stock:
		return "stock"
	case Option:
		return "option"
	case OptionStrategy:
		return "strategy"
	default:
		return "unknown"
	}
}

// ParseAssetKind parses a string into an AssetKind.
func ParseAssetKind(s string) (AssetKind, error) {
	switch s {
	case "stock":
		return Stock, nil
	case "option":
		return Option, nil
	case "strategy":
		return OptionStrategy, nil
	default:
		return 0, fmt.Errorf("unknown asset kind: %q", s)
	}
}

// Side is the direction of a fill. Expire is a non-price closure generated
// for instruments that lapsed without an explicit closing trade.
type Side int

const (
	Buy Side = iota
	Sell
	Expire
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case Expire:
		return "expire"
	default:
		return "unknown"
	}
}

// ParseSide parses a string into a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	case "expire":
		return Expire, nil
	default:
		return 0, fmt.Errorf("unknown side: %q", s)
	}
}

// Trade is one fill event: a stock fill, an option leg, or the parent of a
// multi-leg strategy order. Trades are immutable once constructed; all
// position state lives in the lot ledger.
type Trade struct {
	// Seq is assigned monotonically at load time, across files, and is the
	// sole tie-break between trades sharing a timestamp.
	Seq        int
	Time       time.Time
	Instrument string // display name
	Key        string // matching key, see StockKey / OptionKey / StrategyKey
	Asset      AssetKind
	OptionKind string // "call", "put", or the strategy kind; empty for stocks
	Side       Side
	Quantity   int64
	Price      decimal.Decimal // per unit
	Multiplier int64           // 100 for option contracts, 1 for shares
	Expiry     date.Date       // zero when the instrument does not expire
	// Parent is the Seq of the strategy-parent trade this leg belongs to,
	// zero for standalone trades. A Parent that resolves to no trade in the
	// batch is treated as absent.
	Parent int
}

// StockKey returns the matching key for a share of the given symbol.
func StockKey(symbol string) string { return "stock:" + symbol }

// OptionKey returns the matching key for a single option contract.
func OptionKey(occ OCCSymbol) string { return "option:" + occ.String() }

// StrategyKey returns the matching key for a multi-leg strategy. Legs are
// sorted so that the same strategy always maps to the same key regardless of
// fill order.
func StrategyKey(kind, root string, expiry date.Date, legs []OCCSymbol) string {
	ss := make([]string, 0, len(legs))
	for _, l := range legs {
		ss = append(ss, l.String())
	}
	sort.Strings(ss)
	return fmt.Sprintf("strategy:%s:%s:%s:%s", kind, root, expiry, strings.Join(ss, ","))
}

// compareTrades orders trades chronologically, breaking timestamp ties with
// the load-time sequence number.
func compareTrades(a, b Trade) int {
	if a.Time.Before(b.Time) {
		return -1
	}
	if a.Time.After(b.Time) {
		return 1
	}
	return a.Seq - b.Seq
}

// legIndex maps a parent trade's Seq to the leg trades that reference it.
func legIndex(trades []Trade) map[int][]Trade {
	legs := make(map[int][]Trade)
	for _, t := range trades {
		if t.Parent != 0 {
			legs[t.Parent] = append(legs[t.Parent], t)
		}
	}
	return legs
}

// FirstTradeIndex maps each matching key to the first trade seen for it, in
// sequence order. The open-position grouper uses it for display metadata.
func FirstTradeIndex(trades []Trade) map[string]Trade {
	first := make(map[string]Trade, len(trades))
	for _, t := range trades {
		if prev, ok := first[t.Key]; !ok || t.Seq < prev.Seq {
			first[t.Key] = t
		}
	}
	return first
}

// amount returns the cash amount of the fill: quantity times price times the
// contract multiplier.
func (t Trade) amount() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity)).Mul(decimal.NewFromInt(t.Multiplier))
}
