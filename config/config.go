// Package config loads runnerboard settings from a key/value file and the
// environment.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

// ErrUnknownKey indicates the config file contains an unexpected/unknown
// key.
type ErrUnknownKey struct {
	Line int
	Key  string
}

// Error returns the error string for ErrUnknownKey types.
func (e ErrUnknownKey) Error() string {
	return "unknown config key"
}

// ErrMissingValue indicates that a value was not supplied with a given config
// key.
type ErrMissingValue struct {
	Line   int
	ForKey string
}

// Error returns the error string for ErrMissingValue instances.
func (e ErrMissingValue) Error() string {
	return "missing value for config key"
}

// ErrInvalidValue indicates that a numeric key was given something that is
// not a number.
type ErrInvalidValue struct {
	Line   int
	ForKey string
	Value  string
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid value %q for config key %s", e.Value, e.ForKey)
}

var ErrInvalidConfig = errors.New("invalid config")

const (
	StoreMemory  = "memory"
	StoreSQLite  = "sqlite"
	StoreLevelDB = "leveldb"

	EnvironmentProduction = "production"
)

// Config holds the program's configuration.
type Config struct {
	Listen      string `env:"RUNNERBOARD_LISTEN"`
	Environment string `env:"RUNNERBOARD_ENVIRONMENT"`
	LogLevel    string `env:"RUNNERBOARD_LOG_LEVEL"`
	LogFormat   string `env:"RUNNERBOARD_LOG_FORMAT"`

	Store    string `env:"RUNNERBOARD_STORE"`
	Database string `env:"RUNNERBOARD_DATABASE"`
	LevelDB  string `env:"RUNNERBOARD_LEVELDB"`

	Capacity     int   `env:"RUNNERBOARD_CAPACITY"`
	MaxScore     int64 `env:"RUNNERBOARD_MAX_SCORE"`
	DefaultLimit int   `env:"RUNNERBOARD_DEFAULT_LIMIT"`
	MaxLimit     int   `env:"RUNNERBOARD_MAX_LIMIT"`

	// RateLimit is in requests per minute per client. Zero disables it.
	RateLimit int `env:"RUNNERBOARD_RATE_LIMIT"`
	RateBurst int `env:"RUNNERBOARD_RATE_BURST"`
	// TrustedProxies lists the addresses or CIDR ranges allowed to name the
	// client through X-Real-IP and X-Forwarded-For.
	TrustedProxies []string `env:"RUNNERBOARD_TRUSTED_PROXIES" envSeparator:","`

	AMQPURL      string `env:"RUNNERBOARD_AMQP_URL"`
	AMQPExchange string `env:"RUNNERBOARD_AMQP_EXCHANGE"`

	// APIURL is where the bot reaches the leaderboard server.
	APIURL         string `env:"RUNNERBOARD_API_URL"`
	DiscordToken   string `env:"RUNNERBOARD_DISCORD_TOKEN"`
	DiscordChannel string `env:"RUNNERBOARD_DISCORD_CHANNEL"`

	CORSOrigins []string `env:"RUNNERBOARD_CORS_ORIGINS" envSeparator:","`
}

// Default returns the settings used for anything the file and the
// environment leave out.
func Default() Config {
	return Config{
		Listen:       ":8080",
		Environment:  EnvironmentProduction,
		LogLevel:     "info",
		LogFormat:    "text",
		Store:        StoreMemory,
		AMQPExchange: "runnerboard_topic",
		APIURL:       "http://localhost:8080",
	}
}

// Debug reports whether internal error details may be shown to clients.
func (c Config) Debug() bool {
	return c.Environment != EnvironmentProduction
}

// Validate checks the combination of settings.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.Database == "" {
			return fmt.Errorf("%w: store sqlite needs database", ErrInvalidConfig)
		}
	case StoreLevelDB:
		if c.LevelDB == "" {
			return fmt.Errorf("%w: store leveldb needs leveldb", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfig)
	}
	if _, err := c.ProxyPrefixes(); err != nil {
		return err
	}
	return nil
}

// ProxyPrefixes parses TrustedProxies. A bare address is a single host range.
func (c Config) ProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if addr, err := netip.ParseAddr(raw); err == nil {
			addr = addr.Unmap()
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: trusted proxy %q", ErrInvalidConfig, raw)
		}
		prefixes = append(prefixes, p.Masked())
	}
	return prefixes, nil
}

// Load extracts the config key, value pairs from the given reader on top of
// Default.
//
// Lines starting with "#" are considered comments and are ignored.
func Load(r io.Reader) (Config, error) {
	config := Default()

	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)

	var lineNumber int
	for ; scanner.Scan(); lineNumber++ {
		line := strings.TrimSpace(scanner.Text())

		// empty line or comment
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		wordScanner := bufio.NewScanner(strings.NewReader(line))
		wordScanner.Split(bufio.ScanWords)

		if ok := wordScanner.Scan(); !ok {
			return Config{}, fmt.Errorf("expected config key: %w", wordScanner.Err())
		}
		key := wordScanner.Text()

		if ok := wordScanner.Scan(); !ok {
			return Config{}, ErrMissingValue{Line: lineNumber, ForKey: key}
		}
		val := wordScanner.Text()

		number := func(dst *int) error {
			n, err := strconv.Atoi(val)
			if err != nil {
				return ErrInvalidValue{Line: lineNumber, ForKey: key, Value: val}
			}
			*dst = n
			return nil
		}

		var err error
		switch key {
		case "listen":
			config.Listen = val
		case "environment":
			config.Environment = val
		case "log_level":
			config.LogLevel = val
		case "log_format":
			config.LogFormat = val
		case "store":
			config.Store = val
		case "database":
			config.Database = val
		case "leveldb":
			config.LevelDB = val
		case "capacity":
			err = number(&config.Capacity)
		case "max_score":
			var n int
			err = number(&n)
			config.MaxScore = int64(n)
		case "default_limit":
			err = number(&config.DefaultLimit)
		case "max_limit":
			err = number(&config.MaxLimit)
		case "rate_limit":
			err = number(&config.RateLimit)
		case "rate_burst":
			err = number(&config.RateBurst)
		case "amqp_url":
			config.AMQPURL = val
		case "amqp_exchange":
			config.AMQPExchange = val
		case "api_url":
			config.APIURL = val
		case "discord_token":
			config.DiscordToken = val
		case "discord_channel":
			config.DiscordChannel = val
		case "cors_origins":
			config.CORSOrigins = strings.Split(val, ",")
		case "trusted_proxies":
			config.TrustedProxies = strings.Split(val, ",")
		default:
			err = ErrUnknownKey{
				Key:  key,
				Line: lineNumber,
			}
		}
		if err != nil {
			return Config{}, err
		}
	}

	return config, scanner.Err()
}

// LoadFromFile is a convenience function for reading a Config from a file.
func LoadFromFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	return Load(f)
}

// ApplyEnv overrides c with any RUNNERBOARD_* variables found in environ.
// Variables that are not set leave the field alone.
func ApplyEnv(c *Config, environ map[string]string) error {
	if err := env.ParseWithOptions(c, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FromEnvironment loads path when it is not empty, then applies the process
// environment and validates the result.
func FromEnvironment(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		cfg, err = LoadFromFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := ApplyEnv(&cfg, env.ToMap(os.Environ())); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// SetupLogging points the standard logrus logger at the configured level and
// format.
func SetupLogging(c Config) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
