package demandtype

import (
	"go.uber.org/fx"

	"github.com/opencitizen/notifstore/internal/demandtype/repository"
	"github.com/opencitizen/notifstore/internal/demandtype/service"
)

var Module = fx.Module("demandtype",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
