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

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/rueidislock"

	"dbc/internal/appconfig"
	"dbc/internal/clock"
	"dbc/internal/config"
	redisclient "dbc/internal/dbredis"
	"dbc/internal/dbredis/locking"
	"dbc/internal/gateway"
	"dbc/internal/httpapi"
	ratelimitmw "dbc/internal/httpmw/ratelimit"
	server "dbc/internal/httpsrv"
	"dbc/internal/pgpool"
	"dbc/internal/ratelimit"
	"dbc/internal/registry"
	"dbc/internal/telemetry"
	"dbc/oapi"
)

func main() {
	// cancel the context when these signals occur
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	// manual dependency injection, no DI framework: everything below is
	// wired by hand, in dependency order.
	cfg, err := appconfig.Load()
	if err != nil {
		slog.ErrorContext(ctx, "config error", slog.Any("error", err))
		os.Exit(1)
	}
	configureLogLevel(cfg.LogLevel)

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Otel)
	if err != nil {
		slog.ErrorContext(ctx, "telemetry init error", slog.Any("error", err))
		os.Exit(1)
	}
	defer shutdownTelemetry(context.Background())

	metrics, err := telemetry.NewHTTPMetrics(cfg.Otel.ServiceName)
	if err != nil {
		slog.ErrorContext(ctx, "telemetry metrics error", slog.Any("error", err))
		os.Exit(1)
	}

	// --- infrastructure ---

	store := config.New(cfg.ConfigPath)
	reg := registry.New(ctx, store)

	pools := pgpool.New(cfg.Pool, reg)
	pools.WatchRegistry(ctx, reg.Subscribe())

	if cfg.Redis.Enabled {
		gate, closeRedis, err := newDistributedDialGate(ctx, cfg.Redis.URL)
		if err != nil {
			slog.ErrorContext(ctx, "redis dial gate error", slog.Any("error", err))
			os.Exit(1)
		}
		defer closeRedis()
		pools.SetDialGate(gate)
	}

	gwCfg := gateway.DefaultConfig()
	gwCfg.RequestBudget = cfg.RequestBudget
	gwCfg.DefaultCacheTTL = cfg.CacheDefaultTTL
	gwCfg.MaxCacheTTL = cfg.CacheMaxTTL
	gwCfg.CacheMaxEntries = cfg.CacheMaxEntries
	gwCfg.CacheMaxBytes = cfg.CacheMaxBytes
	gwCfg.CatalogCacheSize = cfg.CatalogCacheSize

	gw, err := gateway.New(gwCfg, reg, pools)
	if err != nil {
		slog.ErrorContext(ctx, "gateway init error", slog.Any("error", err))
		os.Exit(1)
	}

	rateLimits, err := buildRateLimitPolicy(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "rate limit policy error", slog.Any("error", err))
		os.Exit(1)
	}

	// --- application layer ---

	surface := httpapi.New(
		gw, store, reg, cfg.RequestBudget,
		oapi.FS, oapi.SpecPath, 8,
		httpapi.WithMetrics(metrics),
		httpapi.WithRateLimits(rateLimits),
	)
	go surface.Hub().Run(ctx)
	teeLogsToHub(surface.Hub())

	host, port, err := splitAddr(cfg.Addr)
	if err != nil {
		slog.ErrorContext(ctx, "bad ADDR", slog.Any("error", err))
		os.Exit(1)
	}

	srv, err := server.New(
		host, port,
		server.WithWriteTimeout(10*time.Second),
		server.WithServices(surface),
	)
	if err != nil {
		slog.ErrorContext(ctx, "init server error", slog.Any("error", err))
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		slog.ErrorContext(ctx, "running server error", slog.Any("error", err))
		os.Exit(1)
	}
	os.Exit(0)
}

func configureLogLevel(name string) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetLogLoggerLevel(level)
}

// teeLogsToHub routes the process logger's output through the /ws/logs Hub
// in addition to stderr, so the gateway can observe its own logs live
// without a sidecar log shipper.
func teeLogsToHub(hub *httpapi.Hub) {
	w := io.MultiWriter(os.Stderr, hub)
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, nil)))
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("bad port %q: %w", portStr, err)
	}
	return host, port, nil
}

// dialGateAdapter satisfies pgpool.DialGate over a
// dbredis/locking.LockingTaskExecutor, translating its bare (key string) ->
// (name, timeouts) shape into the LockConfiguration the executor expects.
type dialGateAdapter struct {
	exec *locking.LockingTaskExecutor
}

func (a *dialGateAdapter) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return a.exec.Execute(ctx, locking.LockConfiguration{
		Name:           key,
		LockAtMostFor:  10 * time.Second,
		LockAtLeastFor: 0,
	}, locking.TaskFunc(fn))
}

// newDistributedDialGate builds the rueidislock-backed pgpool.DialGate
// SPEC_FULL.md's DOMAIN STACK describes ("the same gate is additionally
// taken as a distributed lock via rueidis when Redis is configured").
func newDistributedDialGate(ctx context.Context, redisURL string) (pgpool.DialGate, func(), error) {
	clientOpt, err := rueidis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("rueidislock: parse url: %w", err)
	}

	locker, err := rueidislock.NewLocker(rueidislock.LockerOption{
		ClientOption:   clientOpt,
		KeyMajority:    1,
		NoLoopTracking: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("rueidislock: %w", err)
	}

	exec := locking.NewLockingTaskExecutor(
		locker,
		locking.WithNamePrefix("dbc:pool-dial:"),
		locking.WithWaitForLock(true),
		locking.WithAcquireTimeout(10*time.Second),
	)

	return &dialGateAdapter{exec: exec}, locker.Close, nil
}

// buildRateLimitPolicy compiles appconfig's declarative rate-limit routes
// into a RuntimePolicy, backed by Redis counters when configured and an
// in-process sliding window otherwise (spec §9 / SPEC_FULL.md DOMAIN
// STACK).
func buildRateLimitPolicy(ctx context.Context, cfg *appconfig.Config) (*ratelimitmw.RuntimePolicy, error) {
	if len(cfg.RateLimit.Routes) == 0 && cfg.RateLimit.DefaultPolicy.Window == 0 {
		return nil, nil
	}

	var counter ratelimit.CounterStore
	if cfg.Redis.Enabled {
		client, err := redisclient.NewRueidisClient(ctx, redisclient.RedisConfig{URL: cfg.Redis.URL})
		if err != nil {
			return nil, fmt.Errorf("rate limit redis client: %w", err)
		}
		counter = redisclient.NewRedisCounterStore(client, "dbc:ratelimit")
	} else {
		counter = ratelimit.NewMemoryCounter()
	}

	factory := ratelimit.SlidingWindowFactory(clock.RealClock{}, counter, "dbc:ratelimit")
	keyStrategies := map[ratelimitmw.KeyStrategyId]ratelimitmw.KeyFunc{
		ratelimitmw.RemoteIpKeyStrategy: ratelimitmw.RemoteIpKeyFunc,
	}
	return ratelimitmw.ParsePolicy(factory, &cfg.RateLimit, httpapi.RouteInfo, keyStrategies)
}
