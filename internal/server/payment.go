package server

import (
	"net/http"
	"strings"

	paymentdomain "github.com/billfold/billfold/internal/payment/domain"
	"github.com/gin-gonic/gin"
)

type recordPaymentRequest struct {
	CustomerID      string `json:"customer_id"`
	InvoiceID       string `json:"invoice_id"`
	Amount          int64  `json:"amount"`
	PaymentDate     string `json:"payment_date"`
	PaymentMethod   string `json:"payment_method"`
	ReferenceNumber string `json:"reference_number"`
	Notes           string `json:"notes"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paymentDate, err := parseOptionalDate(req.PaymentDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("payment_date", "invalid_payment_date", "invalid payment_date"))
		return
	}

	resp, err := s.paymentSvc.Record(c.Request.Context(), paymentdomain.RecordPaymentRequest{
		CustomerID:      strings.TrimSpace(req.CustomerID),
		InvoiceID:       strings.TrimSpace(req.InvoiceID),
		Amount:          req.Amount,
		PaymentDate:     paymentDate,
		PaymentMethod:   paymentdomain.PaymentMethod(strings.TrimSpace(req.PaymentMethod)),
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		Notes:           strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPayments(c *gin.Context) {
	customerID := strings.TrimSpace(c.Query("customerId"))
	if customerID == "" {
		customerID = strings.TrimSpace(c.Query("customer_id"))
	}

	resp, err := s.paymentSvc.ListByCustomer(c.Request.Context(), paymentdomain.ListPaymentsRequest{
		CustomerID: customerID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
