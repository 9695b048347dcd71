package demand

import (
	"go.uber.org/fx"

	"github.com/opencitizen/notifstore/internal/demand/repository"
	"github.com/opencitizen/notifstore/internal/demand/service"
)

var Module = fx.Module("demand",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
