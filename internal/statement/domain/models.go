package domain

import (
	"time"

	customerdomain "github.com/billfold/billfold/internal/customer/domain"
	"github.com/bwmarrin/snowflake"
)

type StatementStatus string

const (
	StatementStatusDraft StatementStatus = "draft"
	StatementStatusSent  StatementStatus = "sent"
)

type DeliveryChannel string

const (
	DeliveryChannelEmail    DeliveryChannel = "email"
	DeliveryChannelWhatsApp DeliveryChannel = "whatsapp"
	DeliveryChannelManual   DeliveryChannel = "manual"
)

func ValidChannel(c DeliveryChannel) bool {
	switch c {
	case DeliveryChannelEmail, DeliveryChannelWhatsApp, DeliveryChannelManual:
		return true
	}
	return false
}

// CustomerStatement is the persisted snapshot of a customer's activity
// over a period. Amounts are minor units and frozen at creation time;
// later payments or invoices do not mutate an existing statement.
type CustomerStatement struct {
	ID                 snowflake.ID     `gorm:"primaryKey" json:"id,string"`
	OwnerID            snowflake.ID     `gorm:"index" json:"owner_id,string"`
	CustomerID         snowflake.ID     `gorm:"index" json:"customer_id,string"`
	StatementNumber    string           `json:"statement_number"`
	PeriodStart        time.Time        `gorm:"type:date" json:"period_start"`
	PeriodEnd          time.Time        `gorm:"type:date" json:"period_end"`
	TotalSales         int64            `json:"total_sales"`
	TotalPayments      int64            `json:"total_payments"`
	OutstandingBalance int64            `json:"outstanding_balance"`
	Status             StatementStatus  `json:"status"`
	SentVia            *DeliveryChannel `json:"sent_via,omitempty"`
	SentAt             *time.Time       `json:"sent_at,omitempty"`
	Notes              string           `json:"notes,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`

	Customer *customerdomain.Customer `gorm:"-" json:"customer,omitempty"`
}

func (CustomerStatement) TableName() string {
	return "customer_statements"
}

// StatementSummary is the computed (not yet persisted) view returned by
// the calculator. CustomerName falls back to a placeholder when the
// customer record cannot be resolved.
type StatementSummary struct {
	CustomerID         snowflake.ID `json:"customer_id,string"`
	CustomerName       string       `json:"customer_name"`
	CustomerEmail      string       `json:"customer_email,omitempty"`
	CustomerPhone      string       `json:"customer_phone,omitempty"`
	CustomerAddress    string       `json:"customer_address,omitempty"`
	PeriodStart        time.Time    `json:"period_start"`
	PeriodEnd          time.Time    `json:"period_end"`
	TotalSales         int64        `json:"total_sales"`
	TotalPayments      int64        `json:"total_payments"`
	InvoiceCount       int64        `json:"invoice_count"`
	PaymentCount       int64        `json:"payment_count"`
	OutstandingBalance int64        `json:"outstanding_balance"`
}
