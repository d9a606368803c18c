package domain

import (
	"context"
	"errors"
	"time"
)

type CreateInvoiceItem struct {
	Description string
	Quantity    int64
	UnitAmount  int64
}

type CreateInvoiceRequest struct {
	InvoiceNumber string
	ClientName    string
	ClientEmail   string
	IssueDate     time.Time
	DueDate       time.Time
	TaxAmount     int64
	Notes         string
	Items         []CreateInvoiceItem
}

type ListInvoiceRequest struct {
	Status      string
	ClientEmail string
}

type UpdateInvoiceStatusRequest struct {
	ID     string
	Status InvoiceStatus
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	List(context.Context, ListInvoiceRequest) ([]Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	UpdateStatus(context.Context, UpdateInvoiceStatusRequest) error
	Stats(ctx context.Context) (DashboardStats, error)
}

var (
	ErrInvalidOwner  = errors.New("invalid_owner")
	ErrInvalidNumber = errors.New("invalid_invoice_number")
	ErrInvalidClient = errors.New("invalid_client")
	ErrInvalidDates  = errors.New("invalid_invoice_dates")
	ErrInvalidItems  = errors.New("invalid_invoice_items")
	ErrInvalidStatus = errors.New("invalid_invoice_status")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidTax    = errors.New("invalid_tax_amount")
	ErrNotFound      = errors.New("invoice_not_found")
	ErrNumberExists  = errors.New("invoice_number_exists")
)
