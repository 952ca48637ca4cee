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

package pgpool

import "time"

// Config tunes the pool manager's defaults; it is not per-connection state
// (connection credentials live in the registry's Connection records).
type Config struct {
	// MaxConnsPerPool bounds sessions per (connection, database) pool.
	MaxConnsPerPool int32 `env:"MAX_CONNS_PER_POOL" envDefault:"4"`

	// AcquireTimeout is the default wait budget for Acquire when the
	// caller's context carries no deadline of its own.
	AcquireTimeout time.Duration `env:"ACQUIRE_TIMEOUT" envDefault:"30s"`

	// RedialInterval bounds how often a failed pool may retry dialing,
	// regardless of how many callers are waiting on it.
	RedialInterval time.Duration `env:"REDIAL_INTERVAL" envDefault:"1s"`
}
