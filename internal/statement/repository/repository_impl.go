package repository

import (
	"context"
	"time"

	"github.com/billfold/billfold/internal/statement/domain"
	"github.com/billfold/billfold/pkg/db/option"
	"github.com/billfold/billfold/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, statement *domain.CustomerStatement) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customer_statements
		 (id, owner_id, customer_id, statement_number, period_start, period_end,
		  total_sales, total_payments, outstanding_balance, status, sent_via, sent_at, notes,
		  created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		statement.ID,
		statement.OwnerID,
		statement.CustomerID,
		statement.StatementNumber,
		statement.PeriodStart,
		statement.PeriodEnd,
		statement.TotalSales,
		statement.TotalPayments,
		statement.OutstandingBalance,
		statement.Status,
		statement.SentVia,
		statement.SentAt,
		statement.Notes,
		statement.CreatedAt,
		statement.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*domain.CustomerStatement, error) {
	var statement domain.CustomerStatement
	err := db.WithContext(ctx).
		Model(&domain.CustomerStatement{}).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Scan(&statement).Error
	if err != nil {
		return nil, err
	}
	if statement.ID == 0 {
		return nil, nil
	}
	return &statement, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter domain.ListStatementFilter, page pagination.Pagination) ([]*domain.CustomerStatement, error) {
	var statements []*domain.CustomerStatement
	stmt := db.WithContext(ctx).
		Model(&domain.CustomerStatement{}).
		Where("owner_id = ?", ownerID)
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		stmt = stmt.Where("period_end >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		stmt = stmt.Where("period_start <= ?", filter.To)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&statements).Error
	if err != nil {
		return nil, err
	}
	return statements, nil
}

func (r *repo) MarkSent(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID, via domain.DeliveryChannel, sentAt time.Time, draftOnly bool) (int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.CustomerStatement{}).
		Where("owner_id = ? AND id = ?", ownerID, id)
	if draftOnly {
		stmt = stmt.Where("status = ?", domain.StatementStatusDraft)
	}
	result := stmt.Updates(map[string]any{
		"status":     domain.StatementStatusSent,
		"sent_via":   via,
		"sent_at":    sentAt,
		"updated_at": sentAt,
	})
	return result.RowsAffected, result.Error
}
