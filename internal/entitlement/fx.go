package entitlement

import (
	"go.uber.org/fx"

	"github.com/hireloop/hireloop/internal/entitlement/service"
)

var Module = fx.Module("entitlement.guard",
	fx.Provide(service.New),
)
