// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package appconfig parses the gateway's process environment into a single
// root Config, composed of per-component env-prefixed sub-structs, mirroring
// the teacher's own appconfig.Config shape. This is distinct from
// internal/config's Config Store: that package owns the *persisted*
// connection list (a JSON file); this package owns process-lifetime
// settings that never change without a restart.
package appconfig

import (
	"time"

	"github.com/caarlos0/env/v11"

	ratelimitmw "dbc/internal/httpmw/ratelimit"
	"dbc/internal/pgpool"
	"dbc/internal/telemetry"
)

// RedisConfig mirrors dbredis.RedisConfig's URL/tuning fields but adds an
// explicit Enabled flag: dbredis.RedisConfig's own URL default is a valid
// connection string, so an unset-but-present env var can't by itself mean
// "redis is not configured" (spec §9 / SPEC_FULL.md DOMAIN STACK: "falls
// back to the in-process sliding-window limiter when REDIS_URL is unset").
type RedisConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	URL     string `env:"URL" envDefault:"redis://:redis@localhost:6379/0"`
}

// Config is the gateway's process-wide environment configuration.
type Config struct {
	// Addr is the listen address (spec §6: "reads its listen address from
	// ADDR").
	Addr string `env:"ADDR" envDefault:"127.0.0.1:0"`

	// ConfigPath is the Config Store's persisted connection list (spec §6:
	// "its config path from DBC_CONFIG").
	ConfigPath string `env:"DBC_CONFIG" envDefault:"dbc.config.json"`

	// LogLevel is an slog level name: debug, info, warn, error (spec §6:
	// "optionally DBC_LOG for log verbosity").
	LogLevel string `env:"DBC_LOG" envDefault:"info"`

	// RequestBudget bounds a /query call end to end (spec §5).
	RequestBudget time.Duration `env:"DBC_REQUEST_BUDGET" envDefault:"30s"`

	// Cache tunes the Response Cache (spec §4.J). The envDefault values match
	// gateway.DefaultConfig(); main copies these fields over that default
	// as-is, so an explicit zero is passed through, not replaced.
	CacheMaxEntries int           `env:"DBC_CACHE_MAX_ENTRIES" envDefault:"1024"`
	CacheMaxBytes   int64         `env:"DBC_CACHE_MAX_BYTES" envDefault:"67108864"`
	CacheDefaultTTL time.Duration `env:"DBC_CACHE_DEFAULT_TTL" envDefault:"5m"`
	CacheMaxTTL     time.Duration `env:"DBC_CACHE_MAX_TTL" envDefault:"5m"`
	CatalogCacheSize int          `env:"DBC_CATALOG_CACHE_SIZE" envDefault:"32"`

	Pool      pgpool.Config            `envPrefix:"DBC_POOL_"`
	RateLimit ratelimitmw.RestHTTPConfig `envPrefix:"DBC_RATE_LIMIT_"`
	Redis     RedisConfig              `envPrefix:"DBC_REDIS_"`

	// Otel has no prefix, matching the teacher's own convention (it reads
	// the standard OTEL_* variable names directly).
	Otel telemetry.Config
}

// Load parses the process environment into a Config.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
