package domain

import (
	"context"
	"errors"
	"time"

	"github.com/billfold/billfold/pkg/db/pagination"
)

var (
	ErrInvalidOwner           = errors.New("invalid_owner")
	ErrInvalidCustomerID      = errors.New("invalid_customer_id")
	ErrInvalidCustomerEmail   = errors.New("invalid_customer_email")
	ErrInvalidDateRange       = errors.New("invalid_date_range")
	ErrInvalidStatementNumber = errors.New("invalid_statement_number")
	ErrInvalidChannel         = errors.New("invalid_delivery_channel")
	ErrInvalidStatus          = errors.New("invalid_statement_status")
	ErrInvalidID              = errors.New("invalid_statement_id")
	ErrNotFound               = errors.New("statement_not_found")
	ErrCustomerNotFound       = errors.New("customer_not_found")
	ErrDuplicateNumber        = errors.New("statement_number_exists")
	ErrAlreadySent            = errors.New("statement_already_sent")
)

// GenerateStatementRequest asks the calculator for a summary of one
// customer's activity. The customer is identified by email so a preview
// can run before the customer record exists. Zero From/To fall back to
// the default window.
type GenerateStatementRequest struct {
	CustomerEmail string
	From          time.Time
	To            time.Time
}

type CreateStatementRequest struct {
	CustomerID      string
	StatementNumber string
	From            time.Time
	To              time.Time
	Notes           string
}

type ListStatementsRequest struct {
	PageToken  string
	PageSize   int
	CustomerID string
	Status     string
	From       time.Time
	To         time.Time
}

type ListStatementsResponse struct {
	pagination.PageInfo
	Statements []CustomerStatement `json:"statements"`
}

type MarkSentRequest struct {
	ID      string
	Channel DeliveryChannel
	// Force allows re-marking a statement that is already sent,
	// overwriting the previous channel and timestamp.
	Force bool
}

type Service interface {
	Generate(ctx context.Context, req GenerateStatementRequest) (StatementSummary, error)
	Create(ctx context.Context, req CreateStatementRequest) (CustomerStatement, error)
	List(ctx context.Context, req ListStatementsRequest) (ListStatementsResponse, error)
	GetByID(ctx context.Context, id string) (CustomerStatement, error)
	MarkSent(ctx context.Context, req MarkSentRequest) (CustomerStatement, error)
}
