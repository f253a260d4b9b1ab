package main

import (
	"errors"

	"github.com/rescuerunner/runnerboard"
	"github.com/rescuerunner/runnerboard/config"
	"github.com/rescuerunner/runnerboard/internal/bot"
	"github.com/rescuerunner/runnerboard/internal/command"
	"github.com/rescuerunner/runnerboard/internal/discord"
)

// ConfigPath is the optional config file. Environment variables override it.
type ConfigPath string

type app struct {
	bot *bot.Bot
	cfg config.Config
}

func provideApp(b *bot.Bot, cfg config.Config) *app {
	return &app{bot: b, cfg: cfg}
}

func provideConfig(path ConfigPath) (config.Config, error) {
	cfg, err := config.FromEnvironment(string(path))
	if err != nil {
		return config.Config{}, err
	}
	if err := config.SetupLogging(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func provideToken(cfg config.Config) (discord.Token, error) {
	if cfg.DiscordToken == "" {
		return "", errors.New("discord_token is not set")
	}
	return discord.Token(cfg.DiscordToken), nil
}

func provideChannel(cfg config.Config) discord.Channel {
	return discord.Channel(cfg.DiscordChannel)
}

func provideClient(cfg config.Config) *runnerboard.Client {
	return runnerboard.NewHTTPClient(cfg.APIURL)
}

func provideRouter(s *discord.Session) *command.Router {
	return command.NewRouter("@" + s.Username())
}
