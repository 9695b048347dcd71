package content

import (
	"github.com/opencitizen/notifstore/internal/content/codec"
	"github.com/opencitizen/notifstore/internal/content/repository"
	"github.com/opencitizen/notifstore/internal/content/service"
	"go.uber.org/fx"
)

var Module = fx.Module("content.store",
	fx.Provide(codec.New),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
