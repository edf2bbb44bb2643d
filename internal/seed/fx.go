package seed

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/clock"
	"github.com/hireloop/hireloop/internal/config"
)

var Module = fx.Module("seed",
	fx.Invoke(func(db *gorm.DB, cfg config.Config, genID *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
		if !cfg.SeedDemo {
			return nil
		}
		return EnsurePlanCatalog(context.Background(), db, genID, clk, log.Named("seed"))
	}),
)
