package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PaymentMethod enumerates how a payment was received.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCheck        PaymentMethod = "check"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCard         PaymentMethod = "card"
	MethodOther        PaymentMethod = "other"
)

// ValidMethod reports whether m is one of the supported payment methods.
func ValidMethod(m PaymentMethod) bool {
	switch m {
	case MethodCash, MethodCheck, MethodBankTransfer, MethodCard, MethodOther:
		return true
	default:
		return false
	}
}

// Payment records money received from a customer. Amounts are minor units
// (cents). Payments are written once and never mutated.
type Payment struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	OwnerID         snowflake.ID  `gorm:"not null;index" json:"owner_id"`
	InvoiceID       *snowflake.ID `gorm:"index" json:"invoice_id,omitempty"`
	CustomerID      snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	Amount          int64         `gorm:"not null" json:"amount"`
	PaymentDate     time.Time     `gorm:"type:date;not null" json:"payment_date"`
	PaymentMethod   PaymentMethod `gorm:"type:text;not null;default:'cash'" json:"payment_method"`
	ReferenceNumber string        `gorm:"column:reference_number" json:"reference_number,omitempty"`
	Notes           string        `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
