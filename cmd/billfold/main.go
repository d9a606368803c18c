package main

import (
	"github.com/billfold/billfold/internal/clock"
	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/customer"
	"github.com/billfold/billfold/internal/dispatch"
	"github.com/billfold/billfold/internal/invoice"
	"github.com/billfold/billfold/internal/logger"
	"github.com/billfold/billfold/internal/migration"
	"github.com/billfold/billfold/internal/payment"
	"github.com/billfold/billfold/internal/providers"
	"github.com/billfold/billfold/internal/seed"
	"github.com/billfold/billfold/internal/server"
	"github.com/billfold/billfold/internal/statement"
	"github.com/billfold/billfold/pkg/db"
	"github.com/billfold/billfold/pkg/telemetry"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		telemetry.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		seed.Module,

		customer.Module,
		payment.Module,
		invoice.Module,
		statement.Module,
		providers.Module,
		dispatch.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
