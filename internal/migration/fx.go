package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/config"
	matchdomain "github.com/hireloop/hireloop/internal/match/domain"
	plandomain "github.com/hireloop/hireloop/internal/plan/domain"
	subdomain "github.com/hireloop/hireloop/internal/subscription/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The versioned SQL path targets postgres. sqlite deployments and
		// tests bootstrap through AutoMigrate instead.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&plandomain.Plan{},
				&subdomain.Subscription{},
				&matchdomain.Application{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
