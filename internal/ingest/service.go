// Package ingest implements the bulk CSV import of historical customer and
// loan data. Bad rows are logged and skipped; the batch never fails on them.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/creditline/backend/internal/domain/customer"
	"github.com/creditline/backend/internal/domain/loan"
)

const dateLayout = "02-01-2006"

var customerHeaders = []string{
	"customer id", "first name", "last name", "age", "phone number", "monthly salary", "approved limit",
}

var loanHeaders = []string{
	"customer id", "loan id", "loan amount", "tenure", "interest rate",
	"monthly payment", "emis paid on time", "date of approval", "end date",
}

type CustomerRepository interface {
	Upsert(ctx context.Context, e customer.Entity) error
	GetByID(ctx context.Context, id int64) (*customer.Entity, error)
	ListIDs(ctx context.Context) ([]int64, error)
	RecomputeDebt(ctx context.Context, id int64) (decimal.Decimal, error)
	SyncIDSequence(ctx context.Context) error
}

type LoanRepository interface {
	Upsert(ctx context.Context, e loan.Entity) error
	SyncIDSequence(ctx context.Context) error
}

type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type FileResult struct {
	Processed int        `json:"processed"`
	Skipped   []RowError `json:"skipped"`
}

type Result struct {
	Customers       FileResult `json:"customers"`
	Loans           FileResult `json:"loans"`
	DebtsRecomputed int        `json:"debts_recomputed"`
}

type Service struct {
	customers CustomerRepository
	loans     LoanRepository
	logger    *slog.Logger
}

func NewService(customers CustomerRepository, loans LoanRepository, logger *slog.Logger) *Service {
	return &Service{customers: customers, loans: loans, logger: logger}
}

// Run imports both files, then recomputes every customer's current debt and
// advances the id sequences past the imported ids.
func (s *Service) Run(ctx context.Context, customersCSV, loansCSV io.Reader) (*Result, error) {
	result := &Result{}

	customersResult, err := s.IngestCustomers(ctx, customersCSV)
	if err != nil {
		return nil, err
	}
	result.Customers = *customersResult

	loansResult, err := s.IngestLoans(ctx, loansCSV)
	if err != nil {
		return nil, err
	}
	result.Loans = *loansResult

	ids, err := s.customers.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, err := s.customers.RecomputeDebt(ctx, id); err != nil {
			return nil, fmt.Errorf("recompute debt for customer %d: %w", id, err)
		}
		result.DebtsRecomputed++
	}

	if err := s.customers.SyncIDSequence(ctx); err != nil {
		return nil, err
	}
	if err := s.loans.SyncIDSequence(ctx); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) IngestCustomers(ctx context.Context, r io.Reader) (*FileResult, error) {
	rows, cols, err := readCSV(r, customerHeaders)
	if err != nil {
		return nil, err
	}

	result := &FileResult{Skipped: []RowError{}}
	for i, row := range rows {
		rowNum := i + 2
		e, rowErr := parseCustomerRow(row, cols)
		if rowErr != nil {
			rowErr.Row = rowNum
			s.skip(result, "customers", *rowErr)
			continue
		}
		if err := s.customers.Upsert(ctx, *e); err != nil {
			s.skip(result, "customers", RowError{Row: rowNum, Field: "row", Message: err.Error()})
			continue
		}
		result.Processed++
	}
	return result, nil
}

func (s *Service) IngestLoans(ctx context.Context, r io.Reader) (*FileResult, error) {
	rows, cols, err := readCSV(r, loanHeaders)
	if err != nil {
		return nil, err
	}

	result := &FileResult{Skipped: []RowError{}}
	for i, row := range rows {
		rowNum := i + 2
		e, rowErr := parseLoanRow(row, cols)
		if rowErr != nil {
			rowErr.Row = rowNum
			s.skip(result, "loans", *rowErr)
			continue
		}
		// Loans referencing customers the customer file never mentioned are
		// skipped, not fatal.
		if _, err := s.customers.GetByID(ctx, e.CustomerID); err != nil {
			if errors.Is(err, customer.ErrNotFound) {
				s.skip(result, "loans", RowError{Row: rowNum, Field: "customer id", Message: "unknown customer"})
				continue
			}
			return nil, err
		}
		if err := s.loans.Upsert(ctx, *e); err != nil {
			s.skip(result, "loans", RowError{Row: rowNum, Field: "row", Message: err.Error()})
			continue
		}
		result.Processed++
	}
	return result, nil
}

func (s *Service) skip(result *FileResult, file string, rowErr RowError) {
	result.Skipped = append(result.Skipped, rowErr)
	if s.logger != nil {
		s.logger.Warn("skipping row", "file", file, "row", rowErr.Row, "field", rowErr.Field, "reason", rowErr.Message)
	}
}

// readCSV returns the data rows plus a header-name -> column-index map, so
// files with reordered columns still import.
func readCSV(r io.Reader, required []string) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("csv has no header row")
	}

	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}
	return rows[1:], cols, nil
}

func field(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseCustomerRow(row []string, cols map[string]int) (*customer.Entity, *RowError) {
	id, err := strconv.ParseInt(field(row, cols, "customer id"), 10, 64)
	if err != nil || id <= 0 {
		return nil, &RowError{Field: "customer id", Message: "must be a positive integer"}
	}

	firstName := field(row, cols, "first name")
	lastName := field(row, cols, "last name")
	phone := field(row, cols, "phone number")
	if firstName == "" || lastName == "" || phone == "" {
		return nil, &RowError{Field: "name/phone", Message: "required"}
	}

	age, err := strconv.ParseInt(field(row, cols, "age"), 10, 32)
	if err != nil || age <= 0 {
		return nil, &RowError{Field: "age", Message: "must be a positive integer"}
	}

	income, err := strconv.ParseInt(field(row, cols, "monthly salary"), 10, 64)
	if err != nil || income < 0 {
		return nil, &RowError{Field: "monthly salary", Message: "must be a non-negative integer"}
	}

	limit, err := strconv.ParseInt(field(row, cols, "approved limit"), 10, 64)
	if err != nil || limit < 0 {
		return nil, &RowError{Field: "approved limit", Message: "must be a non-negative integer"}
	}

	return &customer.Entity{
		ID:            id,
		FirstName:     firstName,
		LastName:      lastName,
		Age:           int32(age),
		PhoneNumber:   phone,
		MonthlyIncome: income,
		ApprovedLimit: limit,
		CurrentDebt:   decimal.Zero,
	}, nil
}

func parseLoanRow(row []string, cols map[string]int) (*loan.Entity, *RowError) {
	customerID, err := strconv.ParseInt(field(row, cols, "customer id"), 10, 64)
	if err != nil || customerID <= 0 {
		return nil, &RowError{Field: "customer id", Message: "must be a positive integer"}
	}

	loanID, err := strconv.ParseInt(field(row, cols, "loan id"), 10, 64)
	if err != nil || loanID <= 0 {
		return nil, &RowError{Field: "loan id", Message: "must be a positive integer"}
	}

	amount, err := decimal.NewFromString(field(row, cols, "loan amount"))
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return nil, &RowError{Field: "loan amount", Message: "must be a positive number"}
	}

	tenure, err := strconv.ParseInt(field(row, cols, "tenure"), 10, 32)
	if err != nil || tenure <= 0 {
		return nil, &RowError{Field: "tenure", Message: "must be a positive integer"}
	}

	rate, err := decimal.NewFromString(field(row, cols, "interest rate"))
	if err != nil || rate.IsNegative() {
		return nil, &RowError{Field: "interest rate", Message: "must be a non-negative number"}
	}

	installment, err := decimal.NewFromString(field(row, cols, "monthly payment"))
	if err != nil || installment.IsNegative() {
		return nil, &RowError{Field: "monthly payment", Message: "must be a non-negative number"}
	}

	paidOnTime, err := strconv.ParseInt(field(row, cols, "emis paid on time"), 10, 32)
	if err != nil || paidOnTime < 0 {
		return nil, &RowError{Field: "emis paid on time", Message: "must be a non-negative integer"}
	}

	startDate, err := time.Parse(dateLayout, field(row, cols, "date of approval"))
	if err != nil {
		return nil, &RowError{Field: "date of approval", Message: "must be DD-MM-YYYY"}
	}
	endDate, err := time.Parse(dateLayout, field(row, cols, "end date"))
	if err != nil {
		return nil, &RowError{Field: "end date", Message: "must be DD-MM-YYYY"}
	}

	status := loan.StatusActive
	if int32(paidOnTime) >= int32(tenure) {
		status = loan.StatusCompleted
	}

	return &loan.Entity{
		ID:                 loanID,
		CustomerID:         customerID,
		Amount:             amount,
		TenureMonths:       int32(tenure),
		InterestRate:       rate,
		MonthlyInstallment: installment,
		EMIsPaidOnTime:     int32(paidOnTime),
		StartDate:          startDate,
		EndDate:            endDate,
		Status:             status,
	}, nil
}
