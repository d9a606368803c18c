// Package seed bootstraps demo data for local development so the admin
// surface has something to show on a fresh database.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/billfold/billfold/internal/config"
	customerdomain "github.com/billfold/billfold/internal/customer/domain"
	invoicedomain "github.com/billfold/billfold/internal/invoice/domain"
	paymentdomain "github.com/billfold/billfold/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DemoOwnerID is the fixed owner every seeded row belongs to. Dev
// clients send it in the X-Owner-ID header.
const DemoOwnerID snowflake.ID = 1

var Module = fx.Module("seed",
	fx.Invoke(EnsureDemoData),
)

// EnsureDemoData inserts a demo customer with an invoice and a payment
// when the database is empty. Production environments are left alone.
func EnsureDemoData(cfg config.Config, db *gorm.DB, log *zap.Logger, genID *snowflake.Node) error {
	if cfg.IsProduction() {
		return nil
	}
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&customerdomain.Customer{}).
			Where("owner_id = ?", DemoOwnerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

		customer := customerdomain.Customer{
			ID:        genID.Generate(),
			OwnerID:   DemoOwnerID,
			Name:      "Demo Customer",
			Email:     "demo@billfold.local",
			Phone:     "+15550100",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}

		invoice := invoicedomain.Invoice{
			ID:             genID.Generate(),
			OwnerID:        DemoOwnerID,
			InvoiceNumber:  "INV-DEMO-1",
			ClientName:     customer.Name,
			ClientEmail:    customer.Email,
			IssueDate:      today.AddDate(0, 0, -30),
			DueDate:        today,
			Status:         invoicedomain.InvoiceStatusSent,
			SubtotalAmount: 25000,
			TotalAmount:    25000,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		payment := paymentdomain.Payment{
			ID:            genID.Generate(),
			OwnerID:       DemoOwnerID,
			CustomerID:    customer.ID,
			InvoiceID:     &invoice.ID,
			Amount:        10000,
			PaymentDate:   today.AddDate(0, 0, -7),
			PaymentMethod: paymentdomain.MethodBankTransfer,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		log.Info("seeded demo data",
			zap.String("owner_id", DemoOwnerID.String()),
			zap.String("customer_id", customer.ID.String()),
		)
		return nil
	})
}
