package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

var moneyCleaner = strings.NewReplacer("$", "", ",", "", "AUD", "", " ", "")

// ParseMoney parses a monetary cell such as "1,250.00" or "$300".
// Returns an invalid NullDecimal if the input is empty or not a number.
func ParseMoney(s string) decimal.NullDecimal {
	s = moneyCleaner.Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// Ratio divides num by den as a float64. ok is false when den is zero.
func Ratio(num, den decimal.Decimal) (float64, bool) {
	if den.IsZero() {
		return 0, false
	}
	return num.DivRound(den, 12).InexactFloat64(), true
}

// Percent is num/den*100, falling back to 0 for a zero denominator.
func Percent(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return num.Mul(hundred).DivRound(den, 10).InexactFloat64()
}

var hundred = decimal.NewFromInt(100)
