package plan

import (
	"go.uber.org/fx"

	"github.com/hireloop/hireloop/internal/plan/repository"
	"github.com/hireloop/hireloop/internal/plan/service"
)

var Module = fx.Module("plan.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
