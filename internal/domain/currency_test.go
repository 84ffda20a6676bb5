package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCurrencyValueAmountCombinesUnitsAndNanos(t *testing.T) {
	t.Parallel()

	value := CurrencyValue{Units: "150", Nanos: 500_000_000}
	assert.Equal(t, "150.5", value.Amount().String())
	assert.InDelta(t, 150.5, value.Float64(), 1e-9)
}

func TestCurrencyValueAmountZero(t *testing.T) {
	t.Parallel()

	value := CurrencyValue{Units: "0", Nanos: 0}
	assert.True(t, value.Amount().IsZero())
	assert.Zero(t, value.Float64())
}

func TestCurrencyValueAmountNonNumericUnitsNormalizesToZero(t *testing.T) {
	t.Parallel()

	value := CurrencyValue{Units: "not-a-number", Nanos: 500_000_000}
	assert.True(t, value.Amount().IsZero())
}

func TestCurrencyValueAmountEmptyUnitsCountsAsZeroUnits(t *testing.T) {
	t.Parallel()

	value := CurrencyValue{Units: "", Nanos: 250_000_000}
	assert.Equal(t, "0.25", value.Amount().String())
}

func TestCurrencyValueAmountNegativeUnits(t *testing.T) {
	t.Parallel()

	value := CurrencyValue{Units: "-42", Nanos: 0}
	assert.Equal(t, "-42", value.Amount().String())
}

func TestFormatINRTiers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "₹1.25Cr", FormatINR(decimal.NewFromInt(12_500_000)))
	assert.Equal(t, "₹1.50L", FormatINR(decimal.NewFromInt(150_000)))
	assert.Equal(t, "₹1.50K", FormatINR(decimal.NewFromInt(1_500)))
	assert.Equal(t, "₹500", FormatINR(decimal.NewFromInt(500)))
}

func TestFormatINRNegativeAmount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "-₹1.25Cr", FormatINR(decimal.NewFromInt(-12_500_000)))
}
