package inventory

import "go.uber.org/fx"

// Module provides the inventory repository and basket handle to Fx.
var Module = fx.Provide(NewRepository, NewBasketHandle)
