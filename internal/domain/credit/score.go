package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile is the slice of customer state the engine needs. Callers hand the
// engine an immutable snapshot instead of a live record.
type Profile struct {
	MonthlyIncome int64
	ApprovedLimit int64
	CurrentDebt   decimal.Decimal
}

// LoanRecord is the loan-history snapshot the engine computes over. Callers
// map their ledger rows into these records at the call site; the engine never
// depends on how loans are stored.
type LoanRecord struct {
	Amount             decimal.Decimal
	TenureMonths       int32
	EMIsPaidOnTime     int32
	MonthlyInstallment decimal.Decimal
	StartDate          time.Time
}

const (
	maxPaymentScore   = 30
	maxLoanCountScore = 20
	maxActivityScore  = 15
	maxVolumeScore    = 35
	pointsPerLoan     = 5
	activityPenalty   = 5
	midVolumeScore    = 15
	scoreFloor        = 0
	scoreCeiling      = 100
)

// Breakdown carries the four sub-scores alongside the clamped total.
type Breakdown struct {
	PaymentTimeliness   int
	LoanCount           int
	CurrentYearActivity int
	ApprovedVolume      int
	Total               int
}

// Score computes the customer's credit score from their entire loan history,
// active or not. currentYear is passed in rather than read from the clock so
// results are reproducible.
func Score(p Profile, history []LoanRecord, currentYear int) Breakdown {
	b := Breakdown{
		PaymentTimeliness:   paymentTimelinessScore(history),
		LoanCount:           loanCountScore(len(history)),
		CurrentYearActivity: currentYearActivityScore(history, currentYear),
		ApprovedVolume:      approvedVolumeScore(p, history),
	}

	total := b.PaymentTimeliness + b.LoanCount + b.CurrentYearActivity + b.ApprovedVolume
	if total < scoreFloor {
		total = scoreFloor
	}
	if total > scoreCeiling {
		total = scoreCeiling
	}
	b.Total = total
	return b
}

// A customer with no payable history gets the full 30: no history at all, or
// a history whose tenures sum to zero, is treated as a perfect record.
func paymentTimelinessScore(history []LoanRecord) int {
	var paidOnTime, tenure int64
	for _, l := range history {
		paidOnTime += int64(l.EMIsPaidOnTime)
		tenure += int64(l.TenureMonths)
	}
	if tenure <= 0 {
		return maxPaymentScore
	}
	// Integer division floors the ratio.
	return int(maxPaymentScore * paidOnTime / tenure)
}

func loanCountScore(n int) int {
	score := pointsPerLoan * n
	if score > maxLoanCountScore {
		return maxLoanCountScore
	}
	return score
}

func currentYearActivityScore(history []LoanRecord, currentYear int) int {
	started := 0
	for _, l := range history {
		if l.StartDate.Year() == currentYear {
			started++
		}
	}
	score := maxActivityScore - activityPenalty*started
	if score < 0 {
		return 0
	}
	return score
}

func approvedVolumeScore(p Profile, history []LoanRecord) int {
	total := decimal.Zero
	for _, l := range history {
		total = total.Add(l.Amount)
	}

	limit := decimal.NewFromInt(p.ApprovedLimit)
	switch {
	case total.GreaterThan(limit.Mul(decimal.NewFromInt(2))):
		return 0
	case total.GreaterThan(limit):
		return midVolumeScore
	default:
		return maxVolumeScore
	}
}
