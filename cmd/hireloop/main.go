package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/hireloop/hireloop/internal/clock"
	"github.com/hireloop/hireloop/internal/config"
	"github.com/hireloop/hireloop/internal/migration"
	"github.com/hireloop/hireloop/internal/observability"
	"github.com/hireloop/hireloop/internal/seed"
	"github.com/hireloop/hireloop/internal/server"
	"github.com/hireloop/hireloop/internal/sweeper"
	"github.com/hireloop/hireloop/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		migration.Module,
		seed.Module,
		server.Module,
		sweeper.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
