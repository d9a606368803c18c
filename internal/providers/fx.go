package providers

import (
	"github.com/billfold/billfold/internal/providers/email"
	"github.com/billfold/billfold/internal/providers/pdf"
	"github.com/billfold/billfold/internal/providers/whatsapp"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
	whatsapp.Module,
)
