// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// ValidStatus reports whether st is a supported invoice status.
func ValidStatus(st InvoiceStatus) bool {
	switch st {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	default:
		return false
	}
}

// Invoice represents an issued invoice. Amounts are minor units (cents).
// The client is identified by email; customer statements aggregate sales
// by matching this email against the customer record.
type Invoice struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	OwnerID        snowflake.ID  `gorm:"not null;index" json:"owner_id"`
	InvoiceNumber  string        `gorm:"not null" json:"invoice_number"`
	ClientName     string        `gorm:"not null" json:"client_name"`
	ClientEmail    string        `gorm:"not null;index" json:"client_email"`
	IssueDate      time.Time     `gorm:"type:date;not null" json:"issue_date"`
	DueDate        time.Time     `gorm:"type:date;not null" json:"due_date"`
	Status         InvoiceStatus `gorm:"type:text;not null;default:'draft'" json:"status"`
	SubtotalAmount int64         `gorm:"not null;default:0" json:"subtotal_amount"`
	TaxAmount      int64         `gorm:"not null;default:0" json:"tax_amount"`
	TotalAmount    int64         `gorm:"not null;default:0" json:"total_amount"`
	Notes          string        `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []InvoiceItem `gorm:"-" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem represents a line on an invoice.
type InvoiceItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerID     snowflake.ID `gorm:"not null;index" json:"owner_id"`
	InvoiceID   snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	Description string       `gorm:"not null" json:"description"`
	Quantity    int64        `gorm:"not null" json:"quantity"`
	UnitAmount  int64        `gorm:"not null" json:"unit_amount"`
	Amount      int64        `gorm:"not null" json:"amount"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// DashboardStats summarizes the owner's invoices by status.
type DashboardStats struct {
	TotalInvoices int64 `json:"total_invoices"`
	PaidAmount    int64 `json:"paid_amount"`
	PendingAmount int64 `json:"pending_amount"`
}
