package realized

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hmarr/realized/date"
	"github.com/shopspring/decimal"
)

// OCCSymbol is the decomposition of an OCC option symbol such as
// "AAPL250321C00150000": root, expiry, call/put flag and strike.
//
// The textual form follows the OCC convention (root, yymmdd, C or P, strike
// in thousandths over 8 digits) but without the space padding of the root,
// so it can be embedded in matching keys.
type OCCSymbol struct {
	Root   string
	Expiry date.Date
	Call   bool
	Strike decimal.Decimal
}

// ParseOCC parses an OCC option symbol. Space padding after the root
// (present in raw broker exports) is accepted and dropped.
func ParseOCC(s string) (OCCSymbol, error) {
	// The tail is fixed width: 6 date digits, 1 type letter, 8 strike digits.
	if len(s) < 16 {
		return OCCSymbol{}, fmt.Errorf("occ symbol %q too short", s)
	}
	root := strings.TrimRight(s[:len(s)-15], " ")
	if root == "" {
		return OCCSymbol{}, fmt.Errorf("occ symbol %q has an empty root", s)
	}
	tail := s[len(s)-15:]

	yy, err1 := strconv.Atoi(tail[0:2])
	mm, err2 := strconv.Atoi(tail[2:4])
	dd, err3 := strconv.Atoi(tail[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return OCCSymbol{}, fmt.Errorf("occ symbol %q has an invalid expiry", s)
	}
	expiry := date.New(2000+yy, time.Month(mm), dd)

	var call bool
	switch tail[6] {
	case 'C':
		call = true
	case 'P':
		call = false
	default:
		return OCCSymbol{}, fmt.Errorf("occ symbol %q has an invalid type %q", s, tail[6])
	}

	milli, err := strconv.ParseInt(tail[7:], 10, 64)
	if err != nil {
		return OCCSymbol{}, fmt.Errorf("occ symbol %q has an invalid strike: %w", s, err)
	}

	return OCCSymbol{
		Root:   root,
		Expiry: expiry,
		Call:   call,
		Strike: decimal.New(milli, -3),
	}, nil
}

// String formats the symbol back to its canonical unpadded form.
func (o OCCSymbol) String() string {
	cp := byte('P')
	if o.Call {
		cp = 'C'
	}
	milli := o.Strike.Mul(decimal.NewFromInt(1000)).IntPart()
	return fmt.Sprintf("%s%02d%02d%02d%c%08d",
		o.Root, o.Expiry.Year()%100, int(o.Expiry.Month()), o.Expiry.Day(), cp, milli)
}

// Kind returns "call" or "put".
func (o OCCSymbol) Kind() string {
	if o.Call {
		return "call"
	}
	return "put"
}

// occOf extracts the OCC symbol backing an option matching key.
func occOf(key string) (OCCSymbol, bool) {
	s, ok := strings.CutPrefix(key, "option:")
	if !ok {
		return OCCSymbol{}, false
	}
	occ, err := ParseOCC(s)
	if err != nil {
		return OCCSymbol{}, false
	}
	return occ, true
}
