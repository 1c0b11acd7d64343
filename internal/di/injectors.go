//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"postit/internal"
	"postit/internal/controllers"
	"postit/internal/persistence"
	"postit/internal/providers"
	"postit/internal/services"
	"postit/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewPasswordHasher,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewSessionProvider,
		providers.NewUploadProvider,

		services.NewSocialService,
		persistence.NewCompressor,
		persistence.NewFileManager,
		persistence.NewAutosaver,
		controllers.NewSocialController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
