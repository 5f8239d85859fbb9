package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/bikeshop/internal/cache"
	"github.com/Additional-Code/bikeshop/internal/config"
	"github.com/Additional-Code/bikeshop/internal/database"
	"github.com/Additional-Code/bikeshop/internal/logger"
	"github.com/Additional-Code/bikeshop/internal/messaging"
	"github.com/Additional-Code/bikeshop/internal/observability"
	repositorybike "github.com/Additional-Code/bikeshop/internal/repository/bike"
	repositoryinventory "github.com/Additional-Code/bikeshop/internal/repository/inventory"
	repositoryorder "github.com/Additional-Code/bikeshop/internal/repository/order"
	grpcserver "github.com/Additional-Code/bikeshop/internal/server/grpc"
	httpserver "github.com/Additional-Code/bikeshop/internal/server/http"
	servicecatalog "github.com/Additional-Code/bikeshop/internal/service/catalog"
	serviceinventory "github.com/Additional-Code/bikeshop/internal/service/inventory"
	serviceorder "github.com/Additional-Code/bikeshop/internal/service/order"
	transporthttp "github.com/Additional-Code/bikeshop/internal/transport/http"
	"github.com/Additional-Code/bikeshop/internal/worker"
	workerorder "github.com/Additional-Code/bikeshop/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositorybike.Module,
	repositoryinventory.Module,
	repositoryorder.Module,
	servicecatalog.Module,
	serviceinventory.Module,
	serviceorder.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	logger.FxEvents,
	httpserver.Module,
	transporthttp.Module,
)

// GRPC adds the gRPC server, with its health service, next to HTTP.
var GRPC = fx.Options(
	HTTP,
	grpcserver.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	logger.FxEvents,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
