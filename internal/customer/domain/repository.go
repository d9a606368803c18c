package domain

import (
	"context"

	"github.com/billfold/billfold/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*Customer, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, ids []snowflake.ID) ([]*Customer, error)
	FindByEmail(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, email string) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter ListCustomerFilter, page pagination.Pagination) ([]*Customer, error)
}
