package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/printpower/storefront/internal/observability"
	"github.com/printpower/storefront/internal/server"
	"github.com/printpower/storefront/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		server.Module,
	)

	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
