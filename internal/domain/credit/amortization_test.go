package credit

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMonthlyInstallmentZeroRate(t *testing.T) {
	emi, err := MonthlyInstallment(decimal.NewFromInt(120000), decimal.Zero, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !emi.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected 10000, got %s", emi)
	}
}

func TestMonthlyInstallmentKnownValue(t *testing.T) {
	// 100000 at 12% annual over 12 months is the textbook 8884.88.
	emi, err := MonthlyInstallment(decimal.NewFromInt(100000), decimal.NewFromInt(12), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := emi.StringFixed(2); got != "8884.88" {
		t.Fatalf("expected 8884.88, got %s", got)
	}
}

func TestMonthlyInstallmentRoundsToTwoPlaces(t *testing.T) {
	emi, err := MonthlyInstallment(decimal.NewFromInt(100000), decimal.NewFromFloat(10.5), 36)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emi.Exponent() < -2 {
		t.Fatalf("expected at most 2 decimal places, got %s", emi)
	}
	if emi.LessThanOrEqual(decimal.Zero) {
		t.Fatalf("expected positive installment, got %s", emi)
	}
}

func TestMonthlyInstallmentRejectsBadInputs(t *testing.T) {
	if _, err := MonthlyInstallment(decimal.Zero, decimal.NewFromInt(10), 12); !errors.Is(err, ErrNonPositiveAmount) {
		t.Fatalf("expected ErrNonPositiveAmount, got %v", err)
	}
	if _, err := MonthlyInstallment(decimal.NewFromInt(-5), decimal.NewFromInt(10), 12); !errors.Is(err, ErrNonPositiveAmount) {
		t.Fatalf("expected ErrNonPositiveAmount, got %v", err)
	}
	if _, err := MonthlyInstallment(decimal.NewFromInt(1000), decimal.NewFromInt(10), 0); !errors.Is(err, ErrNonPositiveTenure) {
		t.Fatalf("expected ErrNonPositiveTenure, got %v", err)
	}
	if _, err := MonthlyInstallment(decimal.NewFromInt(1000), decimal.NewFromInt(-1), 12); !errors.Is(err, ErrNegativeRate) {
		t.Fatalf("expected ErrNegativeRate, got %v", err)
	}
}
