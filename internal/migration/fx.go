package migration

import (
	"github.com/billfold/billfold/internal/config"
	customerdomain "github.com/billfold/billfold/internal/customer/domain"
	invoicedomain "github.com/billfold/billfold/internal/invoice/domain"
	paymentdomain "github.com/billfold/billfold/internal/payment/domain"
	statementdomain "github.com/billfold/billfold/internal/statement/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module runs schema migrations at startup. Postgres uses the embedded
// migration files; other dialects (sqlite for local hacking, mysql) fall
// back to gorm's AutoMigrate since golang-migrate is wired for postgres.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		return conn.AutoMigrate(
			&customerdomain.Customer{},
			&invoicedomain.Invoice{},
			&invoicedomain.InvoiceItem{},
			&paymentdomain.Payment{},
			&statementdomain.CustomerStatement{},
		)
	}),
)
