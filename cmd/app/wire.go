//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/textcraft/internal/bootstrap"
	"github.com/yanqian/textcraft/internal/domain/extract"
	"github.com/yanqian/textcraft/internal/domain/generation"
	"github.com/yanqian/textcraft/internal/domain/textcraft"
	"github.com/yanqian/textcraft/internal/infra/config"
	httpiface "github.com/yanqian/textcraft/internal/interface/http"
	"github.com/yanqian/textcraft/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideServiceConfig,
		provideExtractor,
		providePolicy,
		provideResolver,
		provideLoader,
		provideResultCache,
		provideHistory,
		provideArchive,
		generation.NewModelCache,
		textcraft.NewService,
		wire.Bind(new(generation.ModelResolver), new(*generation.Resolver)),
		wire.Bind(new(textcraft.DocumentExtractor), new(*extract.Extractor)),
		wire.Bind(new(textcraft.PromptPolicy), new(*generation.Policy)),
		wire.Bind(new(textcraft.PipelineProvider), new(*generation.ModelCache)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
