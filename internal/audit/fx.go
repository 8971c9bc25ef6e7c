package audit

import (
	"github.com/brightframelabs/portal/internal/audit/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("audit",
	fx.Provide(repository.Provide),
)
