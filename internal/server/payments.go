package server

import (
	"errors"
	"net/http"

	paymentdomain "github.com/brightframelabs/portal/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createOrderRequest struct {
	Proposal    string            `json:"proposal" binding:"required"`
	Amount      int64             `json:"amount" binding:"required,gt=0"`
	Currency    string            `json:"currency" binding:"required,len=3"`
	PaymentType string            `json:"payment_type,omitempty"`
	Notes       map[string]string `json:"notes,omitempty"`
}

// CreatePaymentOrder
// POST /api/payments/orders
func (s *Server) CreatePaymentOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	proposalID, err := snowflake.ParseString(req.Proposal)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return
	}

	payment, err := s.orders.CreateOrder(c.Request.Context(), paymentdomain.CreateOrderInput{
		ProposalID:  proposalID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		PaymentType: paymentdomain.PaymentType(req.PaymentType),
		Notes:       req.Notes,
	})
	if err != nil {
		if errors.Is(err, paymentdomain.ErrInvalidAmount) || errors.Is(err, paymentdomain.ErrInvalidCurrency) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("order creation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "order creation failed"})
		return
	}

	respondData(c, payment)
}

// ListPayments
// GET /api/admin/payments
func (s *Server) ListPayments(c *gin.Context) {
	req := paymentdomain.ListRequest{
		Status: paymentdomain.PaymentStatus(c.Query("status")),
	}
	parsePagination(c, &req.Limit, &req.Offset)

	payments, err := s.payments.List(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payments"})
		return
	}
	respondData(c, payments)
}
