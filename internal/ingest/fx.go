package ingest

import (
	"go.uber.org/fx"
)

// Subscribers register into the "subscribers" value group and receive stored
// notifications in registration order.
var Module = fx.Module("ingest",
	fx.Provide(
		NewResolver,
		New,
	),
)
