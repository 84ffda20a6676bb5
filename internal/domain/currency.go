package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyValue is the fixed-point money shape used on the wire: whole
// units as a decimal string plus a nano-unit fraction.
type CurrencyValue struct {
	CurrencyCode string `json:"currency_code,omitempty"`
	Units        string `json:"units"`
	Nanos        int64  `json:"nanos"`
}

// Amount converts the fixed-point pair into a decimal amount.
// A non-numeric units string normalizes to zero rather than erroring;
// an empty units string counts as zero units.
func (v CurrencyValue) Amount() decimal.Decimal {
	units := strings.TrimSpace(v.Units)
	if units == "" {
		return decimal.New(v.Nanos, -9)
	}

	whole, err := strconv.ParseInt(units, 10, 64)
	if err != nil {
		return decimal.Zero
	}

	return decimal.NewFromInt(whole).Add(decimal.New(v.Nanos, -9))
}

func (v CurrencyValue) Float64() float64 {
	return v.Amount().InexactFloat64()
}

var (
	tierThousand = decimal.NewFromInt(1_000)
	tierLakh     = decimal.NewFromInt(100_000)
	tierCrore    = decimal.NewFromInt(10_000_000)
)

// FormatINR renders an amount in the Indian tiered numbering scheme used
// for display: crore above 1e7, lakh above 1e5, thousand above 1e3, plain
// rupees below that. Presentation only; canonical snapshot values stay
// decimal.
func FormatINR(amount decimal.Decimal) string {
	sign := ""
	abs := amount
	if amount.IsNegative() {
		sign = "-"
		abs = amount.Neg()
	}

	switch {
	case abs.GreaterThanOrEqual(tierCrore):
		return sign + "₹" + abs.Div(tierCrore).StringFixed(2) + "Cr"
	case abs.GreaterThanOrEqual(tierLakh):
		return sign + "₹" + abs.Div(tierLakh).StringFixed(2) + "L"
	case abs.GreaterThanOrEqual(tierThousand):
		return sign + "₹" + abs.Div(tierThousand).StringFixed(2) + "K"
	default:
		return sign + "₹" + abs.StringFixed(0)
	}
}
