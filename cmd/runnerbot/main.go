package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/rescuerunner/runnerboard/internal/event"
	"github.com/rescuerunner/runnerboard/internal/rabbitmq"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("shutting down")
	}
}

func run(ctx context.Context) error {
	app, cleanup, err := InitializeApp(ConfigPath(os.Getenv("RUNNERBOARD_CONFIG")))
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg   sync.WaitGroup
		errs = make(chan error, 2)
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- app.bot.Listen(ctx)
		cancel()
	}()

	if app.cfg.AMQPURL != "" && app.cfg.DiscordChannel != "" {
		ch, closeAMQP, err := rabbitmq.Dial(app.cfg.AMQPURL, app.cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer closeAMQP()

		deliveries, err := rabbitmq.Subscribe(ch, app.cfg.AMQPExchange, event.KeyChangedLeader)
		if err != nil {
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- app.bot.Announce(ctx, app.cfg.DiscordChannel, event.Stream(ctx, deliveries))
			cancel()
		}()
	} else {
		log.Info("leader announcements disabled, set amqp_url and discord_channel to enable")
	}

	log.Info("ready to answer leaderboard questions")
	wg.Wait()
	close(errs)

	return <-errs
}
