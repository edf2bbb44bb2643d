package subscription

import (
	"go.uber.org/fx"

	"github.com/hireloop/hireloop/internal/subscription/repository"
	"github.com/hireloop/hireloop/internal/subscription/service"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
