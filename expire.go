package realized

import (
	"github.com/hmarr/realized/date"
	"github.com/shopspring/decimal"
)

// SynthesizeExpirations derives one Expire trade for every instrument whose
// expiry is strictly before today and that has no explicit closing
// expiration in the batch. The synthetic trade is stamped at end of day on
// the expiry date with zero quantity and price; the matcher computes the
// actual closed quantity and P&L from whatever lots remain at that point.
//
// Sequence numbers continue after the largest real one, strategy parents
// first, then legs. A leg keeps its parent linkage only when the parent's
// synthetic expiration exists and falls on the same calendar day, and a
// parent left with fewer than two linked legs is demoted: its legs expire
// as independent instruments.
func SynthesizeExpirations(trades []Trade, today date.Date) []Trade {
	bySeq := make(map[int]Trade, len(trades))
	first := make(map[string]Trade, len(trades))
	var keys []string
	explicit := make(map[string]bool)
	maxSeq := 0

	for _, t := range trades {
		bySeq[t.Seq] = t
		if _, ok := first[t.Key]; !ok {
			first[t.Key] = t
			keys = append(keys, t.Key)
		}
		if t.Side == Expire {
			explicit[t.Key] = true
		}
		maxSeq = max(maxSeq, t.Seq)
	}

	lapsed := func(t Trade) bool {
		return !t.Expiry.IsZero() && t.Expiry.Before(today) && !explicit[t.Key]
	}

	synth := func(seq int, t Trade) Trade {
		return Trade{
			Seq:        seq,
			Time:       t.Expiry.EndOfDay(),
			Instrument: t.Instrument,
			Key:        t.Key,
			Asset:      t.Asset,
			OptionKind: t.OptionKind,
			Side:       Expire,
			Quantity:   0,
			Price:      decimal.Zero,
			Multiplier: t.Multiplier,
			Expiry:     t.Expiry,
		}
	}

	seq := maxSeq
	var out []Trade

	// Strategy parents first.
	parents := make(map[string]Trade) // strategy key -> its synthetic expiration
	for _, k := range keys {
		t := first[k]
		if t.Asset != OptionStrategy || !lapsed(t) {
			continue
		}
		seq++
		p := synth(seq, t)
		parents[k] = p
		out = append(out, p)
	}

	// Then option legs and standalone options.
	linked := make(map[int]int)   // synthetic parent seq -> linked leg count
	legAt := make(map[int][]int)  // synthetic parent seq -> indexes into out
	for _, k := range keys {
		t := first[k]
		if t.Asset != Option || !lapsed(t) {
			continue
		}
		seq++
		s := synth(seq, t)
		if pk, ok := strategyOf(trades, bySeq, k); ok {
			if p, ok := parents[pk]; ok && p.Expiry == t.Expiry {
				s.Parent = p.Seq
				linked[p.Seq]++
				legAt[p.Seq] = append(legAt[p.Seq], len(out))
			}
		}
		out = append(out, s)
	}

	// A one-legged "spread" is no spread: drop the linkage so the leg
	// expires on its own.
	for pseq, n := range linked {
		if n >= 2 {
			continue
		}
		for _, i := range legAt[pseq] {
			out[i].Parent = 0
		}
	}
	return out
}

// strategyOf resolves the strategy key an option key belongs to, through the
// first of its trades that carries a surviving parent reference.
func strategyOf(trades []Trade, bySeq map[int]Trade, key string) (string, bool) {
	for _, t := range trades {
		if t.Key != key || t.Parent == 0 {
			continue
		}
		if p, ok := bySeq[t.Parent]; ok {
			return p.Key, true
		}
	}
	return "", false
}
