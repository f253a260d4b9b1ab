package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		log.WithError(err).Fatal("shutting down")
	}
}

func run(ctx context.Context) error {
	srv, cleanup, err := InitializeServer(ConfigPath(os.Getenv("RUNNERBOARD_CONFIG")))
	if err != nil {
		return err
	}
	defer cleanup()

	errs := make(chan error, 1)
	go func() {
		log.WithField("listen", srv.Addr).Info("serving leaderboard")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return err
}
