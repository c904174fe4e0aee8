package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	customerdomain "github.com/creditline/backend/internal/domain/customer"
	"github.com/creditline/backend/internal/observability"
)

type CustomerService interface {
	Register(ctx context.Context, in customerdomain.RegisterInput) (*customerdomain.Entity, error)
}

type CustomerHandler struct {
	customerService CustomerService
	metrics         *observability.Metrics
}

func NewCustomerHandler(customerService CustomerService, metrics *observability.Metrics) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, metrics: metrics}
}

type registerRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Age           int32  `json:"age"`
	MonthlyIncome int64  `json:"monthly_income"`
	PhoneNumber   string `json:"phone_number"`
}

type registerResponse struct {
	CustomerID    int64  `json:"customer_id"`
	Name          string `json:"name"`
	Age           int32  `json:"age"`
	MonthlyIncome int64  `json:"monthly_income"`
	ApprovedLimit int64  `json:"approved_limit"`
	PhoneNumber   string `json:"phone_number"`
}

func (h *CustomerHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	created, err := h.customerService.Register(c.Request.Context(), customerdomain.RegisterInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Age:           req.Age,
		MonthlyIncome: req.MonthlyIncome,
		PhoneNumber:   req.PhoneNumber,
	})
	if err != nil {
		var fieldErr customerdomain.FieldError
		switch {
		case errors.As(err, &fieldErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "field": fieldErr.Field, "message": fieldErr.Message})
		case errors.Is(err, customerdomain.ErrPhoneTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "phone_number_already_registered"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "register_failed"})
		}
		return
	}

	if h.metrics != nil {
		h.metrics.Registrations.Inc()
	}
	c.JSON(http.StatusCreated, registerResponse{
		CustomerID:    created.ID,
		Name:          created.FullName(),
		Age:           created.Age,
		MonthlyIncome: created.MonthlyIncome,
		ApprovedLimit: created.ApprovedLimit,
		PhoneNumber:   created.PhoneNumber,
	})
}
