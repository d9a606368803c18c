package repository

import (
	"context"
	"time"

	"github.com/billfold/billfold/internal/invoice/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, items []domain.InvoiceItem) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			`INSERT INTO invoices (id, owner_id, invoice_number, client_name, client_email, issue_date, due_date, status, subtotal_amount, tax_amount, total_amount, notes, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			invoice.ID,
			invoice.OwnerID,
			invoice.InvoiceNumber,
			invoice.ClientName,
			invoice.ClientEmail,
			invoice.IssueDate,
			invoice.DueDate,
			invoice.Status,
			invoice.SubtotalAmount,
			invoice.TaxAmount,
			invoice.TotalAmount,
			invoice.Notes,
			invoice.CreatedAt,
			invoice.UpdatedAt,
		).Error
		if err != nil {
			return err
		}

		for i := range items {
			err := tx.Exec(
				`INSERT INTO invoice_items (id, owner_id, invoice_id, description, quantity, unit_amount, amount, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				items[i].ID,
				items[i].OwnerID,
				items[i].InvoiceID,
				items[i].Description,
				items[i].Quantity,
				items[i].UnitAmount,
				items[i].Amount,
				items[i].CreatedAt,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_id, invoice_number, client_name, client_email, issue_date, due_date, status, subtotal_amount, tax_amount, total_amount, notes, created_at, updated_at
		 FROM invoices WHERE owner_id = ? AND id = ?`,
		ownerID,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}

	var items []domain.InvoiceItem
	err = db.WithContext(ctx).
		Model(&domain.InvoiceItem{}).
		Where("owner_id = ? AND invoice_id = ?", ownerID, id).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	invoice.Items = items

	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter domain.ListInvoiceFilter) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("owner_id = ?", ownerID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ClientEmail != "" {
		stmt = stmt.Where("client_email = ?", filter.ClientEmail)
	}
	err := stmt.
		Order("issue_date desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, ownerID, id snowflake.ID, status domain.InvoiceStatus, at time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, updated_at = ? WHERE owner_id = ? AND id = ?`,
		status,
		at,
		ownerID,
		id,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) SumForClientEmail(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, clientEmail string, from, to time.Time) (int64, int64, error) {
	var row struct {
		Total int64
		Count int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count
		 FROM invoices
		 WHERE owner_id = ? AND client_email = ? AND issue_date >= ? AND issue_date <= ?`,
		ownerID,
		clientEmail,
		from,
		to,
	).Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.Count, nil
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (domain.DashboardStats, error) {
	var rows []struct {
		Status domain.InvoiceStatus
		Total  int64
		Count  int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT status, COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count
		 FROM invoices WHERE owner_id = ? GROUP BY status`,
		ownerID,
	).Scan(&rows).Error
	if err != nil {
		return domain.DashboardStats{}, err
	}

	var stats domain.DashboardStats
	for _, row := range rows {
		stats.TotalInvoices += row.Count
		switch row.Status {
		case domain.InvoiceStatusPaid:
			stats.PaidAmount += row.Total
		case domain.InvoiceStatusSent, domain.InvoiceStatusOverdue:
			stats.PendingAmount += row.Total
		}
	}
	return stats, nil
}
