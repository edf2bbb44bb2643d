package catalog

import (
	"context"

	"go.uber.org/fx"

	plandomain "github.com/hireloop/hireloop/internal/plan/domain"
)

var Module = fx.Module("plan.catalog",
	fx.Provide(New),
	fx.Provide(func(c *Cache) plandomain.CatalogRefresher { return c }),
	fx.Invoke(warmUp),
)

// warmUp performs the initial refresh. A failure here aborts startup so the
// process never serves metered requests against an empty catalog.
func warmUp(lc fx.Lifecycle, c *Cache) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return c.Refresh(ctx)
		},
	})
}
