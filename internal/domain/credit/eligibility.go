package credit

import "github.com/shopspring/decimal"

var (
	rateFloorMid = decimal.NewFromFloat(12.0)
	rateFloorLow = decimal.NewFromFloat(16.0)

	emiIncomeShare = decimal.NewFromFloat(0.5)
)

const (
	scoreTierHigh = 50
	scoreTierMid  = 30
	scoreTierLow  = 10
)

// Decision is the outcome of one eligibility evaluation. CorrectedRate and
// MonthlyInstallment are always populated so callers can log what the loan
// would have cost; they are only meaningful to the applicant when Approved.
type Decision struct {
	Approved           bool
	Score              int
	CorrectedRate      decimal.Decimal
	MonthlyInstallment decimal.Decimal
	Reasons            []string
}

type evalInput struct {
	profile     Profile
	activeLoans []LoanRecord
	score       int
	amount      decimal.Decimal
	rate        decimal.Decimal
	tenure      int32
}

// A rule inspects the application and may veto it, raise the interest rate to
// a floor, or both. Rules never approve: approval is the absence of any veto.
type ruleResult struct {
	Reject    bool
	Reason    string
	RateFloor *decimal.Decimal
}

type rule func(in evalInput, correctedRate decimal.Decimal) ruleResult

// Evaluate runs the rule cascade over a snapshot of the customer's state and
// the proposed terms. The rules are folded in order; each sees the corrected
// rate produced so far, and a rejection by any rule makes the final decision a
// rejection no matter what earlier rules concluded.
func Evaluate(profile Profile, activeLoans []LoanRecord, score int, amount, rate decimal.Decimal, tenureMonths int32) (Decision, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Decision{}, ErrNonPositiveAmount
	}
	if tenureMonths <= 0 {
		return Decision{}, ErrNonPositiveTenure
	}
	if rate.IsNegative() {
		return Decision{}, ErrNegativeRate
	}

	in := evalInput{
		profile:     profile,
		activeLoans: activeLoans,
		score:       score,
		amount:      amount,
		rate:        rate,
		tenure:      tenureMonths,
	}

	rules := []rule{debtCeilingRule, scoreTierRule, affordabilityRule}

	decision := Decision{Approved: true, Score: score, CorrectedRate: rate}
	for _, r := range rules {
		res := r(in, decision.CorrectedRate)
		if res.RateFloor != nil && decision.CorrectedRate.LessThan(*res.RateFloor) {
			decision.CorrectedRate = *res.RateFloor
		}
		if res.Reject {
			decision.Approved = false
			decision.Reasons = append(decision.Reasons, res.Reason)
		}
	}

	// Inputs were validated above, so the EMI computation cannot fail here.
	emi, err := MonthlyInstallment(amount, decision.CorrectedRate, tenureMonths)
	if err != nil {
		return Decision{}, err
	}
	decision.MonthlyInstallment = emi
	return decision, nil
}

func debtCeilingRule(in evalInput, _ decimal.Decimal) ruleResult {
	if in.profile.CurrentDebt.GreaterThan(decimal.NewFromInt(in.profile.ApprovedLimit)) {
		return ruleResult{Reject: true, Reason: "current debt exceeds approved limit"}
	}
	return ruleResult{}
}

func scoreTierRule(in evalInput, _ decimal.Decimal) ruleResult {
	switch {
	case in.score > scoreTierHigh:
		return ruleResult{}
	case in.score > scoreTierMid:
		return ruleResult{RateFloor: &rateFloorMid}
	case in.score > scoreTierLow:
		return ruleResult{RateFloor: &rateFloorLow}
	default:
		return ruleResult{Reject: true, Reason: "credit score too low"}
	}
}

// affordabilityRule runs against the corrected rate produced by the score tier
// rule, which is why it must stay last in the cascade.
func affordabilityRule(in evalInput, correctedRate decimal.Decimal) ruleResult {
	newEMI, err := MonthlyInstallment(in.amount, correctedRate, in.tenure)
	if err != nil {
		return ruleResult{Reject: true, Reason: "installment could not be computed"}
	}

	totalEMI := newEMI
	for _, l := range in.activeLoans {
		totalEMI = totalEMI.Add(l.MonthlyInstallment)
	}

	budget := decimal.NewFromInt(in.profile.MonthlyIncome).Mul(emiIncomeShare)
	if totalEMI.GreaterThan(budget) {
		return ruleResult{Reject: true, Reason: "total EMIs would exceed half of monthly income"}
	}
	return ruleResult{}
}
