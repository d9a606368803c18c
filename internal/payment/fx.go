package payment

import (
	"github.com/billfold/billfold/internal/payment/repository"
	"github.com/billfold/billfold/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
