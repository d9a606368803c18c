package invoice

import (
	"github.com/billfold/billfold/internal/invoice/repository"
	"github.com/billfold/billfold/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
