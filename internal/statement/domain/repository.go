package domain

import (
	"context"
	"time"

	"github.com/billfold/billfold/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListStatementFilter struct {
	CustomerID snowflake.ID
	Status     StatementStatus
	From       time.Time
	To         time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, statement *CustomerStatement) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*CustomerStatement, error)
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter ListStatementFilter, page pagination.Pagination) ([]*CustomerStatement, error)
	// MarkSent flips a statement to sent. When draftOnly is true the
	// update only applies while the row is still a draft; the returned
	// count tells the caller whether anything changed.
	MarkSent(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID, via DeliveryChannel, sentAt time.Time, draftOnly bool) (int64, error)
}
