// Package credit holds the scoring and eligibility engine. Everything in this
// package is a pure computation over data passed in by the caller: no clock
// reads, no storage access, no mutation of its inputs.
package credit

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount = errors.New("loan amount must be positive")
	ErrNonPositiveTenure = errors.New("tenure must be a positive number of months")
	ErrNegativeRate      = errors.New("interest rate must not be negative")
)

// MonthlyInstallment computes the fixed EMI for a loan of the given principal,
// annual interest rate (percent) and tenure in months:
//
//	r   = annualRatePercent / 1200
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1)
//
// A zero rate degrades to a straight principal/tenure split. The result is
// rounded to 2 decimal places, half away from zero.
func MonthlyInstallment(principal, annualRatePercent decimal.Decimal, tenureMonths int32) (decimal.Decimal, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrNonPositiveAmount
	}
	if tenureMonths <= 0 {
		return decimal.Zero, ErrNonPositiveTenure
	}
	if annualRatePercent.IsNegative() {
		return decimal.Zero, ErrNegativeRate
	}

	if annualRatePercent.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(tenureMonths))).Round(2), nil
	}

	// The power term is computed in float64, monetary arithmetic stays decimal.
	monthlyRate, _ := annualRatePercent.Div(decimal.NewFromInt(1200)).Float64()
	factor := math.Pow(1+monthlyRate, float64(tenureMonths))
	emi := principal.InexactFloat64() * monthlyRate * factor / (factor - 1)
	return decimal.NewFromFloat(emi).Round(2), nil
}
