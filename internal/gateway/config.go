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

package gateway

import "time"

// Config tunes the gateway's own behavior, distinct from the Pool
// Manager's dial/capacity settings (pgpool.Config) and the process-wide
// appconfig.Config this is built from.
type Config struct {
	// RequestBudget bounds a /query call end to end (spec §5: "Default
	// request budget 30 seconds for /query").
	RequestBudget time.Duration
	// DefaultCacheTTL is used when a request does not specify one.
	DefaultCacheTTL time.Duration
	// MaxCacheTTL caps whatever TTL a request asks for (spec §9: "TTL
	// client-requested with server maximum").
	MaxCacheTTL time.Duration
	// CacheMaxEntries/CacheMaxBytes bound the response cache (spec §4.J).
	CacheMaxEntries int
	CacheMaxBytes   int64
	// CatalogCacheSize bounds the Column Annotator's per-pool catalog
	// cache (spec §4.I, reusing the same LRU shape as the response cache).
	CatalogCacheSize int
}

// DefaultConfig matches the literal numbers spec §4/§5 give as examples.
func DefaultConfig() Config {
	return Config{
		RequestBudget:    30 * time.Second,
		DefaultCacheTTL:  5 * time.Minute,
		MaxCacheTTL:      5 * time.Minute,
		CacheMaxEntries:  1024,
		CacheMaxBytes:    64 << 20,
		CatalogCacheSize: 32,
	}
}
