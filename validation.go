package realized

import (
	"errors"
	"fmt"
)

// Validate checks a trade batch against the engine's input assumptions and
// returns every violation found. The engine itself does not re-validate:
// import adapters call this before handing trades over.
func Validate(trades []Trade) error {
	var errs []error
	seen := make(map[int]bool, len(trades))
	prev := 0
	for _, t := range trades {
		if t.Seq <= prev {
			errs = append(errs, fmt.Errorf("trade %d: sequence numbers must be strictly increasing (previous %d)", t.Seq, prev))
		}
		if seen[t.Seq] {
			errs = append(errs, fmt.Errorf("trade %d: duplicate sequence number", t.Seq))
		}
		seen[t.Seq] = true
		prev = t.Seq

		if t.Key == "" {
			errs = append(errs, fmt.Errorf("trade %d: missing matching key", t.Seq))
		}
		if t.Side != Expire && t.Quantity <= 0 {
			errs = append(errs, fmt.Errorf("trade %d: non-positive quantity %d", t.Seq, t.Quantity))
		}
		if t.Price.IsNegative() {
			errs = append(errs, fmt.Errorf("trade %d: negative price %s", t.Seq, t.Price))
		}
		if t.Multiplier <= 0 {
			errs = append(errs, fmt.Errorf("trade %d: non-positive multiplier %d", t.Seq, t.Multiplier))
		}
		if t.Parent != 0 && t.Parent >= t.Seq {
			errs = append(errs, fmt.Errorf("trade %d: parent %d does not precede it", t.Seq, t.Parent))
		}
	}
	return errors.Join(errs...)
}
