package domain

import (
	"context"
	"errors"

	statementdomain "github.com/billfold/billfold/internal/statement/domain"
)

var (
	ErrMissingEmail   = errors.New("customer_email_missing")
	ErrMissingPhone   = errors.New("customer_phone_missing")
	ErrDispatchFailed = errors.New("dispatch_failed")
)

// DispatchRequest sends a statement over one channel and, only on
// success, records it as sent.
type DispatchRequest struct {
	StatementID string
	Channel     statementdomain.DeliveryChannel
	Force       bool
}

type DispatchResult struct {
	Statement statementdomain.CustomerStatement `json:"statement"`
	// CorrelationID identifies the outbound message for channels that
	// return one; empty for manual sends.
	CorrelationID string `json:"correlation_id,omitempty"`
}

type Service interface {
	Dispatch(ctx context.Context, req DispatchRequest) (DispatchResult, error)
}
