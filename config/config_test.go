package config

import (
	"errors"
	"net/netip"
	"reflect"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("it loads a well-defined config", func(t *testing.T) {
		config := `
		listen :9000
		store sqlite
		database /var/lib/runnerboard/scores.db
		capacity 50
		cors_origins https://a.example,https://b.example`

		got, err := Load(strings.NewReader(config))
		if err != nil {
			t.Errorf("unexpected err: %v", err)
		}

		want := Default()
		want.Listen = ":9000"
		want.Store = StoreSQLite
		want.Database = "/var/lib/runnerboard/scores.db"
		want.Capacity = 50
		want.CORSOrigins = []string{"https://a.example", "https://b.example"}

		if !reflect.DeepEqual(got, want) {
			t.Errorf("want %+v, got %+v", want, got)
		}
	})

	t.Run("it returns ErrUnknownKey when the config contains an unknown key", func(t *testing.T) {
		config := `
		listen :80
		potato-pirate poe
		`

		_, err := Load(strings.NewReader(config))

		want := ErrUnknownKey{Line: 2, Key: "potato-pirate"}
		if got := err.(ErrUnknownKey); got != want {
			t.Errorf("want %#v, got %#v", want, got)
		}
	})

	t.Run("it returns ErrMissingValue when the config key does not have a value", func(t *testing.T) {
		config := `
		database hjkl
		store
		`

		_, err := Load(strings.NewReader(config))

		want := ErrMissingValue{Line: 2, ForKey: "store"}
		if got := err.(ErrMissingValue); got != want {
			t.Errorf("want %#v, got %#v", want, got)
		}
	})

	t.Run("it returns ErrInvalidValue when a number is not a number", func(t *testing.T) {
		_, err := Load(strings.NewReader("capacity lots"))

		want := ErrInvalidValue{Line: 0, ForKey: "capacity", Value: "lots"}
		if got := err.(ErrInvalidValue); got != want {
			t.Errorf("want %#v, got %#v", want, got)
		}
	})

	t.Run("it ignores lines starting with a #", func(t *testing.T) {
		config := `
		store leveldb
		# this will be ignored
		# database also-ignored
		leveldb potato
		`

		got, err := Load(strings.NewReader(config))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		want := Default()
		want.Store = StoreLevelDB
		want.LevelDB = "potato"
		if !reflect.DeepEqual(got, want) {
			t.Errorf("want %#v, got %#v", want, got)
		}
	})
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.Database = "from-file.db"

	err := ApplyEnv(&cfg, map[string]string{
		"RUNNERBOARD_STORE":        "sqlite",
		"RUNNERBOARD_RATE_LIMIT":   "30",
		"RUNNERBOARD_CORS_ORIGINS": "https://a.example,https://b.example",
		"RUNNERBOARD_ENVIRONMENT":  "development",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if cfg.Store != StoreSQLite {
		t.Errorf("want store %q, got %q", StoreSQLite, cfg.Store)
	}
	if cfg.Database != "from-file.db" {
		t.Errorf("unset variable overwrote database: %q", cfg.Database)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("unset variable overwrote listen: %q", cfg.Listen)
	}
	if cfg.RateLimit != 30 {
		t.Errorf("want rate limit 30, got %d", cfg.RateLimit)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("want origins %v, got %v", want, cfg.CORSOrigins)
	}
	if !cfg.Debug() {
		t.Error("development should expose error details")
	}
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, map[string]string{"RUNNERBOARD_CAPACITY": "many"})
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{name: "defaults", modify: func(*Config) {}, ok: true},
		{name: "sqlite without database", modify: func(c *Config) { c.Store = StoreSQLite }},
		{name: "sqlite with database", modify: func(c *Config) { c.Store = StoreSQLite; c.Database = "x.db" }, ok: true},
		{name: "leveldb without path", modify: func(c *Config) { c.Store = StoreLevelDB }},
		{name: "unknown store", modify: func(c *Config) { c.Store = "redis" }},
		{name: "unknown log format", modify: func(c *Config) { c.LogFormat = "xml" }},
		{name: "unknown log level", modify: func(c *Config) { c.LogLevel = "loud" }},
		{name: "negative rate", modify: func(c *Config) { c.RateLimit = -1 }},
		{name: "trusted proxy range", modify: func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/8", "127.0.0.1"} }, ok: true},
		{name: "malformed trusted proxy", modify: func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/33"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected err: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("want ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestProxyPrefixes(t *testing.T) {
	cfg := Default()
	cfg.TrustedProxies = []string{" 10.1.2.3/8", "127.0.0.1", "::1", ""}

	got, err := cfg.ProxyPrefixes()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	want := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("127.0.0.1/32"),
		netip.MustParsePrefix("::1/128"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("want %v, got %v", want, got)
	}
}
