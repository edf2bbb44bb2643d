package match

import (
	"go.uber.org/fx"

	"github.com/hireloop/hireloop/internal/match/repository"
	"github.com/hireloop/hireloop/internal/match/service"
)

var Module = fx.Module("match.service",
	fx.Provide(repository.Provide),
	fx.Provide(repository.ProvideReferenceChecker),
	fx.Provide(service.New),
)
