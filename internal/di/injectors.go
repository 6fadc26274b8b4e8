//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"zoblogs/internal"
	"zoblogs/internal/controllers"
	"zoblogs/internal/ipfs"
	"zoblogs/internal/metadata"
	"zoblogs/internal/protocol"
	"zoblogs/internal/providers"
	"zoblogs/internal/registry"
	"zoblogs/internal/scheduler"
	"zoblogs/internal/services"
	"zoblogs/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewKVStore,
		providers.NewWorkerPool,

		registry.NewRegistry,
		ipfs.NewClient,
		wire.Bind(new(ipfs.ClientInterface), new(*ipfs.Client)),
		protocol.NewClient,
		wire.Bind(new(protocol.IndexerInterface), new(*protocol.Client)),
		wire.Bind(new(protocol.DeployerInterface), new(*protocol.Client)),
		wire.Bind(new(protocol.TraderInterface), new(*protocol.Client)),
		metadata.NewBuilder,

		services.NewReaderService,
		services.NewPostService,
		services.NewTradeService,
		services.NewLegacyService,

		controllers.NewPageController,
		controllers.NewPostController,
		controllers.NewTradeController,
		controllers.NewUploadController,
		controllers.NewHealthController,
		wire.Bind(new(scheduler.Warmer), new(*controllers.PageController)),
		scheduler.NewScheduler,

		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}
