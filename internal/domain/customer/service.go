package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/creditline/backend/internal/domain/credit"
)

const (
	minAge = 18
	maxAge = 100
)

// FieldError reports a single invalid request field; registration surfaces
// these verbatim to the caller.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type RegisterInput struct {
	FirstName     string
	LastName      string
	Age           int32
	PhoneNumber   string
	MonthlyIncome int64
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new customer with a ledger-allocated id, a derived
// approved limit and zero debt. A phone number already on file is a conflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Entity, error) {
	if err := validateRegisterInput(in); err != nil {
		return nil, err
	}

	phone := strings.TrimSpace(in.PhoneNumber)
	if _, err := s.repo.GetByPhone(ctx, phone); err == nil {
		return nil, ErrPhoneTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return s.repo.Create(ctx, CreateInput{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Age:           in.Age,
		PhoneNumber:   phone,
		MonthlyIncome: in.MonthlyIncome,
		ApprovedLimit: credit.ApprovedLimit(in.MonthlyIncome),
	})
}

func (s *Service) Get(ctx context.Context, id int64) (*Entity, error) {
	return s.repo.GetByID(ctx, id)
}

func validateRegisterInput(in RegisterInput) error {
	if strings.TrimSpace(in.FirstName) == "" {
		return FieldError{Field: "first_name", Message: "required"}
	}
	if strings.TrimSpace(in.LastName) == "" {
		return FieldError{Field: "last_name", Message: "required"}
	}
	if in.Age < minAge {
		return FieldError{Field: "age", Message: "must be at least 18"}
	}
	if in.Age > maxAge {
		return FieldError{Field: "age", Message: "must be at most 100"}
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		return FieldError{Field: "phone_number", Message: "required"}
	}
	if in.MonthlyIncome < 0 {
		return FieldError{Field: "monthly_income", Message: "must not be negative"}
	}
	return nil
}
