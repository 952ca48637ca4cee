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

// Package respcache is the Response Cache: a process-local, bounded cache
// of select/explain ResultPages keyed by a fingerprint of the request that
// produced them, with a read-through-with-single-flight discipline so
// concurrent identical requests share one database round trip.
package respcache

import (
	"time"

	"dbc/internal/exec"
)

// Key identifies one cached response. Fingerprint is produced by
// Fingerprint and folds in everything that distinguishes two requests,
// Connection and Database included.
type Key struct {
	Connection  string
	Database    string
	Fingerprint string
}

// record is the cache's internal value: the cached page, the lowercased
// table names it references (for modify-data invalidation), its expiry,
// and its marshaled size in bytes (for the aggregate byte budget).
type record struct {
	page      exec.Page
	relations map[string]struct{}
	expiresAt time.Time
	size      int64
}
