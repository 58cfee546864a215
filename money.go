package realized

import (
	"log"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a display wrapper over a monetary value. The engine itself works
// in exact decimals; renderers use Money for locale-correct formatting.
type Money struct {
	value *money.Money
}

// USD creates a US dollar Money from a decimal amount.
func USD(amount decimal.Decimal) Money {
	cur := money.GetCurrency(money.USD)
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	return Money{money.New(amount.Mul(factor).Round(0).IntPart(), money.USD)}
}

// String returns the string representation of the money value.
func (m Money) String() string {
	if m.value == nil {
		return ""
	}
	return m.value.Display()
}

// SignedString returns the string representation of the money value with a sign.
func (m Money) SignedString() string {
	if m.value == nil {
		return ""
	}
	if m.value.IsPositive() {
		return "+" + m.value.Display()
	}
	return m.value.Display()
}

// IsZero reports whether the value is zero.
func (m Money) IsZero() bool {
	return m.value == nil || m.value.IsZero()
}

// Add returns the sum of both values.
func (m Money) Add(n Money) Money {
	if m.value == nil {
		return n
	}
	if n.value == nil {
		return m
	}
	r, err := m.value.Add(n.value)
	if err != nil {
		log.Fatalf("invalid money operation: %v", err)
	}
	return Money{r}
}
