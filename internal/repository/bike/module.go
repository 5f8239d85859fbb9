package bike

import "go.uber.org/fx"

// Module provides the bike repository to Fx.
var Module = fx.Provide(NewRepository)
