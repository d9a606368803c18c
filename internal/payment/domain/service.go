package domain

import (
	"context"
	"errors"
	"time"
)

type RecordPaymentRequest struct {
	CustomerID      string
	InvoiceID       string
	Amount          int64
	PaymentDate     time.Time
	PaymentMethod   PaymentMethod
	ReferenceNumber string
	Notes           string
}

type ListPaymentsRequest struct {
	CustomerID string
}

type Service interface {
	Record(context.Context, RecordPaymentRequest) (Payment, error)
	ListByCustomer(context.Context, ListPaymentsRequest) ([]Payment, error)
}

var (
	ErrInvalidOwner      = errors.New("invalid_owner")
	ErrInvalidCustomerID = errors.New("invalid_customer_id")
	ErrInvalidInvoiceID  = errors.New("invalid_invoice_id")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidDate       = errors.New("invalid_payment_date")
	ErrInvalidMethod     = errors.New("invalid_payment_method")
	ErrCustomerNotFound  = errors.New("customer_not_found")
)
