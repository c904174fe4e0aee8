package loan

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/creditline/backend/internal/domain/credit"
	"github.com/creditline/backend/internal/domain/customer"
)

const (
	EventLoanApproved = "loan_approved"
	EventLoanRejected = "loan_rejected"
)

type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*customer.Entity, error)
}

// EventRecorder receives loan decision events for the realtime stream.
// Recording is best effort and never blocks the decision itself.
type EventRecorder interface {
	RecordLoanEvent(ctx context.Context, customerID int64, loanID *int64, event string, payload []byte) error
}

type EligibilityInput struct {
	CustomerID   int64
	Amount       decimal.Decimal
	InterestRate decimal.Decimal
	TenureMonths int32
}

type EligibilityResult struct {
	CustomerID         int64
	Approved           bool
	InterestRate       decimal.Decimal
	CorrectedRate      decimal.Decimal
	TenureMonths       int32
	MonthlyInstallment decimal.Decimal
}

type CreateLoanResult struct {
	LoanID             *int64
	CustomerID         int64
	Approved           bool
	Message            string
	MonthlyInstallment decimal.Decimal
}

type Detail struct {
	Loan     Entity
	Customer customer.Entity
}

type Service struct {
	customers CustomerRepository
	loans     Repository
	events    EventRecorder
	now       func() time.Time
}

func NewService(customers CustomerRepository, loans Repository, events EventRecorder) *Service {
	return &Service{
		customers: customers,
		loans:     loans,
		events:    events,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CheckEligibility runs the scoring and rule cascade against a snapshot of the
// customer's ledger state. It never mutates anything; identical inputs against
// an unchanged ledger produce identical results.
func (s *Service) CheckEligibility(ctx context.Context, in EligibilityInput) (*EligibilityResult, error) {
	decision, _, err := s.evaluate(ctx, in)
	if err != nil {
		return nil, err
	}
	return &EligibilityResult{
		CustomerID:         in.CustomerID,
		Approved:           decision.Approved,
		InterestRate:       in.InterestRate,
		CorrectedRate:      decision.CorrectedRate,
		TenureMonths:       in.TenureMonths,
		MonthlyInstallment: decision.MonthlyInstallment,
	}, nil
}

// CreateLoan re-runs the eligibility evaluation and, on approval, persists the
// loan at the corrected rate. The loan insert and the customer debt update
// happen in one ledger transaction.
func (s *Service) CreateLoan(ctx context.Context, in EligibilityInput) (*CreateLoanResult, error) {
	decision, _, err := s.evaluate(ctx, in)
	if err != nil {
		return nil, err
	}

	if !decision.Approved {
		s.recordDecision(ctx, in.CustomerID, nil, decision)
		return &CreateLoanResult{
			CustomerID: in.CustomerID,
			Approved:   false,
			Message:    rejectionMessage(decision),
		}, nil
	}

	startDate := s.now().Truncate(24 * time.Hour)
	created, err := s.loans.CreateApproved(ctx, CreateInput{
		CustomerID:         in.CustomerID,
		Amount:             in.Amount,
		TenureMonths:       in.TenureMonths,
		InterestRate:       decision.CorrectedRate,
		MonthlyInstallment: decision.MonthlyInstallment,
		StartDate:          startDate,
		EndDate:            startDate.AddDate(0, int(in.TenureMonths), 0),
	})
	if err != nil {
		return nil, err
	}

	s.recordDecision(ctx, in.CustomerID, &created.ID, decision)
	return &CreateLoanResult{
		LoanID:             &created.ID,
		CustomerID:         in.CustomerID,
		Approved:           true,
		Message:            "loan approved and created",
		MonthlyInstallment: created.MonthlyInstallment,
	}, nil
}

func (s *Service) GetLoan(ctx context.Context, loanID int64) (*Detail, error) {
	l, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	cust, err := s.customers.GetByID(ctx, l.CustomerID)
	if err != nil {
		return nil, err
	}
	return &Detail{Loan: *l, Customer: *cust}, nil
}

func (s *Service) ListCustomerLoans(ctx context.Context, customerID int64) ([]Entity, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.loans.ListByCustomer(ctx, customerID, "")
}

// evaluate loads the ledger snapshot and runs the engine over it. The current
// calendar year comes from the service clock, not from inside the engine.
func (s *Service) evaluate(ctx context.Context, in EligibilityInput) (credit.Decision, credit.Breakdown, error) {
	cust, err := s.customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return credit.Decision{}, credit.Breakdown{}, err
	}

	history, err := s.loans.ListByCustomer(ctx, in.CustomerID, "")
	if err != nil {
		return credit.Decision{}, credit.Breakdown{}, err
	}

	records := make([]credit.LoanRecord, 0, len(history))
	active := make([]credit.LoanRecord, 0, len(history))
	for _, l := range history {
		rec := snapshotLoan(l)
		records = append(records, rec)
		if l.Status == StatusActive {
			active = append(active, rec)
		}
	}

	profile := credit.Profile{
		MonthlyIncome: cust.MonthlyIncome,
		ApprovedLimit: cust.ApprovedLimit,
		CurrentDebt:   cust.CurrentDebt,
	}
	breakdown := credit.Score(profile, records, s.now().Year())
	decision, err := credit.Evaluate(profile, active, breakdown.Total, in.Amount, in.InterestRate, in.TenureMonths)
	if err != nil {
		return credit.Decision{}, credit.Breakdown{}, err
	}
	return decision, breakdown, nil
}

// snapshotLoan copies the engine-relevant fields into the immutable record
// the credit package evaluates over.
func snapshotLoan(l Entity) credit.LoanRecord {
	return credit.LoanRecord{
		Amount:             l.Amount,
		TenureMonths:       l.TenureMonths,
		EMIsPaidOnTime:     l.EMIsPaidOnTime,
		MonthlyInstallment: l.MonthlyInstallment,
		StartDate:          l.StartDate,
	}
}

func (s *Service) recordDecision(ctx context.Context, customerID int64, loanID *int64, decision credit.Decision) {
	if s.events == nil {
		return
	}
	event := EventLoanRejected
	if decision.Approved {
		event = EventLoanApproved
	}
	payload, _ := json.Marshal(map[string]any{
		"score":               decision.Score,
		"corrected_rate":      decision.CorrectedRate.StringFixed(2),
		"monthly_installment": decision.MonthlyInstallment.StringFixed(2),
		"reasons":             decision.Reasons,
	})
	_ = s.events.RecordLoanEvent(ctx, customerID, loanID, event, payload)
}

func rejectionMessage(decision credit.Decision) string {
	if len(decision.Reasons) == 0 {
		return "loan application was not approved"
	}
	msg := "loan application was not approved: " + decision.Reasons[0]
	for _, r := range decision.Reasons[1:] {
		msg += "; " + r
	}
	return msg
}
