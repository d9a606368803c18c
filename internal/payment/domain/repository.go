package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	ListByCustomer(ctx context.Context, db *gorm.DB, ownerID, customerID snowflake.ID) ([]*Payment, error)
	// SumForCustomer aggregates payment amounts for one customer inside the
	// inclusive [from, to] date range. Returns the total in minor units and
	// the number of matching payments.
	SumForCustomer(ctx context.Context, db *gorm.DB, ownerID, customerID snowflake.ID, from, to time.Time) (int64, int64, error)
}
