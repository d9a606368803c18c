package statement

import (
	"github.com/billfold/billfold/internal/statement/repository"
	"github.com/billfold/billfold/internal/statement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("statement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
