package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListInvoiceFilter struct {
	Status      InvoiceStatus
	ClientEmail string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice, items []InvoiceItem) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter ListInvoiceFilter) ([]*Invoice, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID, status InvoiceStatus, at time.Time) (int64, error)
	// SumForClientEmail aggregates invoice totals for one client email inside
	// the inclusive [from, to] issue-date range. Returns the total in minor
	// units and the number of matching invoices.
	SumForClientEmail(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, clientEmail string, from, to time.Time) (int64, int64, error)
	Stats(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (DashboardStats, error)
}
