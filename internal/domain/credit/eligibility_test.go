package credit

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func wealthyProfile() Profile {
	return Profile{MonthlyIncome: 100000, ApprovedLimit: 3600000, CurrentDebt: decimal.Zero}
}

func TestEvaluateHighScoreKeepsRate(t *testing.T) {
	d, err := Evaluate(wealthyProfile(), nil, 55, decimal.NewFromInt(500000), decimal.NewFromInt(8), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Approved {
		t.Fatalf("expected approval, got reasons %v", d.Reasons)
	}
	if !d.CorrectedRate.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("expected rate to stay 8, got %s", d.CorrectedRate)
	}
	if d.MonthlyInstallment.LessThanOrEqual(decimal.Zero) {
		t.Fatalf("expected positive installment, got %s", d.MonthlyInstallment)
	}
}

func TestEvaluateMidScoreRaisesRateToTwelve(t *testing.T) {
	d, err := Evaluate(wealthyProfile(), nil, 40, decimal.NewFromInt(500000), decimal.NewFromInt(8), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Approved {
		t.Fatalf("expected approval, got reasons %v", d.Reasons)
	}
	if !d.CorrectedRate.Equal(decimal.NewFromFloat(12.0)) {
		t.Fatalf("expected corrected rate 12, got %s", d.CorrectedRate)
	}
}

func TestEvaluateMidScoreKeepsHigherRate(t *testing.T) {
	d, err := Evaluate(wealthyProfile(), nil, 40, decimal.NewFromInt(500000), decimal.NewFromInt(14), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.CorrectedRate.Equal(decimal.NewFromInt(14)) {
		t.Fatalf("expected rate above the floor to be kept, got %s", d.CorrectedRate)
	}
}

func TestEvaluateLowScoreRaisesRateToSixteen(t *testing.T) {
	d, err := Evaluate(wealthyProfile(), nil, 20, decimal.NewFromInt(500000), decimal.NewFromInt(8), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Approved {
		t.Fatalf("expected approval, got reasons %v", d.Reasons)
	}
	if !d.CorrectedRate.Equal(decimal.NewFromFloat(16.0)) {
		t.Fatalf("expected corrected rate 16, got %s", d.CorrectedRate)
	}
}

func TestEvaluateRejectsVeryLowScore(t *testing.T) {
	d, err := Evaluate(wealthyProfile(), nil, 10, decimal.NewFromInt(500000), decimal.NewFromInt(8), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Approved {
		t.Fatalf("expected rejection for score 10")
	}
	if len(d.Reasons) == 0 {
		t.Fatalf("expected a rejection reason")
	}
}

func TestEvaluateRejectsDebtOverLimit(t *testing.T) {
	p := wealthyProfile()
	p.CurrentDebt = decimal.NewFromInt(4000000)

	d, err := Evaluate(p, nil, 80, decimal.NewFromInt(100000), decimal.NewFromInt(8), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Approved {
		t.Fatalf("expected rejection when debt exceeds limit")
	}
}

func TestEvaluateRejectsWhenEMIsExceedHalfIncome(t *testing.T) {
	p := Profile{MonthlyIncome: 20000, ApprovedLimit: 720000, CurrentDebt: decimal.Zero}
	active := []LoanRecord{{MonthlyInstallment: decimal.NewFromInt(8000)}}

	// New EMI is roughly 4349, which alone fits the 10000 budget but not on top
	// of the existing 8000.
	d, err := Evaluate(p, active, 80, decimal.NewFromInt(50000), decimal.NewFromInt(8), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Approved {
		t.Fatalf("expected affordability rejection")
	}

	d, err = Evaluate(p, nil, 80, decimal.NewFromInt(50000), decimal.NewFromInt(8), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Approved {
		t.Fatalf("expected approval without the existing loan, got reasons %v", d.Reasons)
	}
}

func TestEvaluateAffordabilityUsesCorrectedRate(t *testing.T) {
	// At the requested 0% rate the EMI would be 5000, exactly half of income.
	// The score tier raises the rate to 12%, pushing the EMI over budget.
	p := Profile{MonthlyIncome: 10000, ApprovedLimit: 360000, CurrentDebt: decimal.Zero}

	d, err := Evaluate(p, nil, 40, decimal.NewFromInt(60000), decimal.Zero, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Approved {
		t.Fatalf("expected rejection once the corrected rate applies")
	}
	if !d.CorrectedRate.Equal(decimal.NewFromFloat(12.0)) {
		t.Fatalf("expected corrected rate 12, got %s", d.CorrectedRate)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	p := wealthyProfile()
	first, err := Evaluate(p, nil, 40, decimal.NewFromInt(500000), decimal.NewFromInt(8), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Evaluate(p, nil, 40, decimal.NewFromInt(500000), decimal.NewFromInt(8), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Approved != second.Approved ||
		!first.CorrectedRate.Equal(second.CorrectedRate) ||
		!first.MonthlyInstallment.Equal(second.MonthlyInstallment) {
		t.Fatalf("expected identical decisions, got %+v and %+v", first, second)
	}
}

func TestEvaluateRejectsBadInputs(t *testing.T) {
	p := wealthyProfile()
	if _, err := Evaluate(p, nil, 80, decimal.Zero, decimal.NewFromInt(8), 12); !errors.Is(err, ErrNonPositiveAmount) {
		t.Fatalf("expected ErrNonPositiveAmount, got %v", err)
	}
	if _, err := Evaluate(p, nil, 80, decimal.NewFromInt(1000), decimal.NewFromInt(8), 0); !errors.Is(err, ErrNonPositiveTenure) {
		t.Fatalf("expected ErrNonPositiveTenure, got %v", err)
	}
	if _, err := Evaluate(p, nil, 80, decimal.NewFromInt(1000), decimal.NewFromInt(-2), 12); !errors.Is(err, ErrNegativeRate) {
		t.Fatalf("expected ErrNegativeRate, got %v", err)
	}
}
