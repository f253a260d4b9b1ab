//go:build wireinject
// +build wireinject

package main

import (
	"net/http"

	"github.com/google/wire"

	"github.com/rescuerunner/runnerboard/internal/leaderboardhttp"
	"github.com/rescuerunner/runnerboard/internal/scoresvc"
	"github.com/rescuerunner/runnerboard/internal/store"
)

var MetricsSet = wire.NewSet(
	provideRegistry,
	provideMetrics,
)

var ScoreSet = wire.NewSet(
	store.Open,
	provideRanking,
	provideEventBus,
	scoresvc.New,
)

func InitializeServer(path ConfigPath) (*http.Server, func(), error) {
	wire.Build(
		provideConfig,
		MetricsSet,
		ScoreSet,
		provideServer,
		provideRouterConfig,
		leaderboardhttp.NewRouter,
		provideHTTPServer,
	)
	return nil, nil, nil
}
