//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/ai-tripplanner/internal/bootstrap"
	"github.com/yanqian/ai-tripplanner/internal/domain/export"
	"github.com/yanqian/ai-tripplanner/internal/domain/intent"
	"github.com/yanqian/ai-tripplanner/internal/domain/trip"
	"github.com/yanqian/ai-tripplanner/internal/infra/config"
	httpiface "github.com/yanqian/ai-tripplanner/internal/interface/http"
	"github.com/yanqian/ai-tripplanner/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideRetryPolicy,
		provideOverpassClient,
		provideCandidateStore,
		providePOIProvider,
		provideWeatherProvider,
		provideTripRepository,
		provideSessionManager,
		provideChatClient,
		provideClassifierConfig,
		provideWebhook,
		provideArchive,
		trip.NewService,
		intent.NewClassifier,
		intent.NewDispatcher,
		export.NewService,
		httpiface.NewCommandHandler,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
