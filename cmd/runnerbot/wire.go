//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/rescuerunner/runnerboard"
	"github.com/rescuerunner/runnerboard/internal/bot"
	"github.com/rescuerunner/runnerboard/internal/command"
	"github.com/rescuerunner/runnerboard/internal/discord"
)

var DiscordSet = wire.NewSet(
	discord.NewSession,
	discord.NewDialer,
	provideToken,
	provideChannel,
)

func InitializeApp(path ConfigPath) (*app, func(), error) {
	wire.Build(
		provideApp,
		provideConfig,
		bot.New,
		provideRouter,
		wire.Bind(new(bot.CommandRouter), new(*command.Router)),
		wire.Bind(new(bot.Session), new(*discord.Session)),
		DiscordSet,
		wire.Bind(new(bot.Board), new(*runnerboard.Client)),
		provideClient,
	)
	return nil, nil, nil
}
