package event

import (
	"go.uber.org/fx"

	"github.com/opencitizen/notifstore/internal/event/repository"
	"github.com/opencitizen/notifstore/internal/event/service"
)

var Module = fx.Module("event",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
