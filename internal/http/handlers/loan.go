package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/creditline/backend/internal/domain/credit"
	customerdomain "github.com/creditline/backend/internal/domain/customer"
	loandomain "github.com/creditline/backend/internal/domain/loan"
	"github.com/creditline/backend/internal/observability"
)

type LoanService interface {
	CheckEligibility(ctx context.Context, in loandomain.EligibilityInput) (*loandomain.EligibilityResult, error)
	CreateLoan(ctx context.Context, in loandomain.EligibilityInput) (*loandomain.CreateLoanResult, error)
	GetLoan(ctx context.Context, loanID int64) (*loandomain.Detail, error)
	ListCustomerLoans(ctx context.Context, customerID int64) ([]loandomain.Entity, error)
}

type LoanHandler struct {
	loanService LoanService
	metrics     *observability.Metrics
}

func NewLoanHandler(loanService LoanService, metrics *observability.Metrics) *LoanHandler {
	return &LoanHandler{loanService: loanService, metrics: metrics}
}

type loanApplicationRequest struct {
	CustomerID   int64   `json:"customer_id"`
	LoanAmount   float64 `json:"loan_amount"`
	InterestRate float64 `json:"interest_rate"`
	Tenure       int32   `json:"tenure"`
}

func (r loanApplicationRequest) toInput() loandomain.EligibilityInput {
	return loandomain.EligibilityInput{
		CustomerID:   r.CustomerID,
		Amount:       decimal.NewFromFloat(r.LoanAmount),
		InterestRate: decimal.NewFromFloat(r.InterestRate),
		TenureMonths: r.Tenure,
	}
}

type eligibilityResponse struct {
	CustomerID            int64    `json:"customer_id"`
	Approval              bool     `json:"approval"`
	InterestRate          float64  `json:"interest_rate"`
	CorrectedInterestRate *float64 `json:"corrected_interest_rate"`
	Tenure                int32    `json:"tenure"`
	MonthlyInstallment    *float64 `json:"monthly_installment"`
}

func (h *LoanHandler) CheckEligibility(c *gin.Context) {
	var req loanApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	result, err := h.loanService.CheckEligibility(c.Request.Context(), req.toInput())
	if err != nil {
		h.renderError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveDecision(result.Approved)
	}

	resp := eligibilityResponse{
		CustomerID:   result.CustomerID,
		Approval:     result.Approved,
		InterestRate: req.InterestRate,
		Tenure:       result.TenureMonths,
	}
	if result.Approved {
		corrected := result.CorrectedRate.InexactFloat64()
		installment := result.MonthlyInstallment.InexactFloat64()
		resp.CorrectedInterestRate = &corrected
		resp.MonthlyInstallment = &installment
	}
	c.JSON(http.StatusOK, resp)
}

type createLoanResponse struct {
	LoanID             *int64   `json:"loan_id"`
	CustomerID         int64    `json:"customer_id"`
	LoanApproved       bool     `json:"loan_approved"`
	Message            string   `json:"message"`
	MonthlyInstallment *float64 `json:"monthly_installment"`
}

func (h *LoanHandler) CreateLoan(c *gin.Context) {
	var req loanApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	result, err := h.loanService.CreateLoan(c.Request.Context(), req.toInput())
	if err != nil {
		h.renderError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveDecision(result.Approved)
	}

	resp := createLoanResponse{
		LoanID:       result.LoanID,
		CustomerID:   result.CustomerID,
		LoanApproved: result.Approved,
		Message:      result.Message,
	}
	status := http.StatusOK
	if result.Approved {
		installment := result.MonthlyInstallment.InexactFloat64()
		resp.MonthlyInstallment = &installment
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

type loanCustomerSummary struct {
	CustomerID  int64  `json:"customer_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Age         int32  `json:"age"`
}

type viewLoanResponse struct {
	LoanID             int64               `json:"loan_id"`
	Customer           loanCustomerSummary `json:"customer"`
	LoanAmount         float64             `json:"loan_amount"`
	InterestRate       float64             `json:"interest_rate"`
	MonthlyInstallment float64             `json:"monthly_installment"`
	Tenure             int32               `json:"tenure"`
}

func (h *LoanHandler) ViewLoan(c *gin.Context) {
	loanID, err := strconv.ParseInt(strings.TrimSpace(c.Param("loanId")), 10, 64)
	if err != nil || loanID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_loan_id"})
		return
	}

	detail, err := h.loanService.GetLoan(c.Request.Context(), loanID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, viewLoanResponse{
		LoanID: detail.Loan.ID,
		Customer: loanCustomerSummary{
			CustomerID:  detail.Customer.ID,
			FirstName:   detail.Customer.FirstName,
			LastName:    detail.Customer.LastName,
			PhoneNumber: detail.Customer.PhoneNumber,
			Age:         detail.Customer.Age,
		},
		LoanAmount:         detail.Loan.Amount.InexactFloat64(),
		InterestRate:       detail.Loan.InterestRate.InexactFloat64(),
		MonthlyInstallment: detail.Loan.MonthlyInstallment.InexactFloat64(),
		Tenure:             detail.Loan.TenureMonths,
	})
}

type loanSummary struct {
	LoanID             int64   `json:"loan_id"`
	LoanAmount         float64 `json:"loan_amount"`
	InterestRate       float64 `json:"interest_rate"`
	MonthlyInstallment float64 `json:"monthly_installment"`
	RepaymentsLeft     int32   `json:"repayments_left"`
	Tenure             int32   `json:"tenure"`
}

func (h *LoanHandler) ViewCustomerLoans(c *gin.Context) {
	customerID, err := strconv.ParseInt(strings.TrimSpace(c.Param("customerId")), 10, 64)
	if err != nil || customerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_customer_id"})
		return
	}

	loans, err := h.loanService.ListCustomerLoans(c.Request.Context(), customerID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	items := make([]loanSummary, 0, len(loans))
	for _, l := range loans {
		items = append(items, loanSummary{
			LoanID:             l.ID,
			LoanAmount:         l.Amount.InexactFloat64(),
			InterestRate:       l.InterestRate.InexactFloat64(),
			MonthlyInstallment: l.MonthlyInstallment.InexactFloat64(),
			RepaymentsLeft:     l.RemainingEMIs(),
			Tenure:             l.TenureMonths,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *LoanHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, customerdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "customer_not_found"})
	case errors.Is(err, loandomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "loan_not_found"})
	case errors.Is(err, credit.ErrNonPositiveAmount),
		errors.Is(err, credit.ErrNonPositiveTenure),
		errors.Is(err, credit.ErrNegativeRate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
