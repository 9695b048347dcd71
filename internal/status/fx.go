package status

import (
	"github.com/opencitizen/notifstore/internal/status/repository"
	"github.com/opencitizen/notifstore/internal/status/service"
	"go.uber.org/fx"
)

var Module = fx.Module("status.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
