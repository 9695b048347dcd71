package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/opencitizen/notifstore/internal/clock"
	"github.com/opencitizen/notifstore/internal/config"
	"github.com/opencitizen/notifstore/internal/content"
	"github.com/opencitizen/notifstore/internal/demand"
	"github.com/opencitizen/notifstore/internal/demandtype"
	"github.com/opencitizen/notifstore/internal/event"
	"github.com/opencitizen/notifstore/internal/ingest"
	"github.com/opencitizen/notifstore/internal/logger"
	"github.com/opencitizen/notifstore/internal/migration"
	"github.com/opencitizen/notifstore/internal/observability"
	"github.com/opencitizen/notifstore/internal/scheduler"
	"github.com/opencitizen/notifstore/internal/server"
	"github.com/opencitizen/notifstore/internal/status"
	"github.com/opencitizen/notifstore/pkg/db"
)

func main() {
	app := fx.New(
		// Infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Domain
		status.Module,
		content.Module,
		demand.Module,
		event.Module,
		demandtype.Module,
		ingest.Module,

		// Surfaces
		server.Module,
		scheduler.Module,
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
