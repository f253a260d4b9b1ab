package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/rescuerunner/runnerboard"
	"github.com/rescuerunner/runnerboard/config"
	"github.com/rescuerunner/runnerboard/internal/leaderboardhttp"
	"github.com/rescuerunner/runnerboard/internal/metrics"
	"github.com/rescuerunner/runnerboard/internal/middleware"
	"github.com/rescuerunner/runnerboard/internal/rabbitmq"
	"github.com/rescuerunner/runnerboard/internal/scoresvc"
)

// ConfigPath is the optional config file. Environment variables override it.
type ConfigPath string

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

func provideRanking(store runnerboard.Store, cfg config.Config) *runnerboard.Service {
	return runnerboard.NewService(store, runnerboard.Options{
		Capacity:     cfg.Capacity,
		MaxScore:     cfg.MaxScore,
		DefaultLimit: cfg.DefaultLimit,
		MaxLimit:     cfg.MaxLimit,
	})
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

// provideEventBus publishes to AMQP when a broker is configured and drops
// events otherwise.
func provideEventBus(cfg config.Config) (scoresvc.EventBus, func(), error) {
	if cfg.AMQPURL == "" {
		log.Info("no amqp_url configured, score events are discarded")
		return rabbitmq.Discard{}, func() {}, nil
	}

	ch, cleanup, err := rabbitmq.Dial(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, nil, err
	}
	return rabbitmq.NewEventBus(ch, cfg.AMQPExchange), cleanup, nil
}

func provideServer(svc *scoresvc.Service, cfg config.Config) *leaderboardhttp.Server {
	return leaderboardhttp.NewServer(svc, cfg.Debug())
}

func provideRouterConfig(cfg config.Config, m *metrics.Metrics, reg *prometheus.Registry) (leaderboardhttp.RouterConfig, error) {
	proxies, err := cfg.ProxyPrefixes()
	if err != nil {
		return leaderboardhttp.RouterConfig{}, err
	}
	return leaderboardhttp.RouterConfig{
		CORS: middleware.CORSConfig{AllowedOrigins: cfg.CORSOrigins},
		RateLimiter: middleware.NewRateLimiter(middleware.RateLimit{
			RequestsPerMinute: float64(cfg.RateLimit),
			Burst:             cfg.RateBurst,
			TrustedProxies:    proxies,
		}, m.Throttled),
		Observer:       m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}, nil
}

func provideHTTPServer(cfg config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Listen,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
