package inventory

import "go.uber.org/fx"

// Module provides the stock administration service to Fx.
var Module = fx.Provide(NewService)
