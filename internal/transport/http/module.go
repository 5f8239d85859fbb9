package http

import (
	"go.uber.org/fx"

	biketransport "github.com/Additional-Code/bikeshop/internal/transport/http/bike"
	ordertransport "github.com/Additional-Code/bikeshop/internal/transport/http/order"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	biketransport.Module,
	ordertransport.Module,
)
