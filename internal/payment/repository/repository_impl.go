package repository

import (
	"context"
	"time"

	"github.com/billfold/billfold/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (id, owner_id, invoice_id, customer_id, amount, payment_date, payment_method, reference_number, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.OwnerID,
		payment.InvoiceID,
		payment.CustomerID,
		payment.Amount,
		payment.PaymentDate,
		payment.PaymentMethod,
		payment.ReferenceNumber,
		payment.Notes,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Error
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, ownerID, customerID snowflake.ID) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	err := db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("owner_id = ? AND customer_id = ?", ownerID, customerID).
		Order("payment_date desc, id desc").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) SumForCustomer(ctx context.Context, db *gorm.DB, ownerID, customerID snowflake.ID, from, to time.Time) (int64, int64, error) {
	var row struct {
		Total int64
		Count int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count
		 FROM payments
		 WHERE owner_id = ? AND customer_id = ? AND payment_date >= ? AND payment_date <= ?`,
		ownerID,
		customerID,
		from,
		to,
	).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.Count, nil
}
