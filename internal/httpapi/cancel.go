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

package httpapi

import (
	"context"
	"sync"
)

// cancelRegistry tracks one context.CancelFunc per in-flight /query call,
// keyed by that call's request id, so DELETE /query/{request_id} can ask
// the gateway to abandon it (spec §6: "best-effort cancellation"). The
// gateway itself never sees request ids; cancellation is entirely a
// Surface-layer concern derived from wrapping r.Context().
type cancelRegistry struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func newCancelRegistry() *cancelRegistry {
	return &cancelRegistry{cancels: make(map[string]context.CancelFunc)}
}

// register records cancel under id. A second call that reuses a request
// id replaces the first call's entry, and the first release of that id
// removes the entry for both.
func (c *cancelRegistry) register(id string, cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancels[id] = cancel
}

// release removes id's entry.
func (c *cancelRegistry) release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cancels, id)
}

// cancel requests cancellation of the in-flight call registered under id.
// Reports whether an entry was found.
func (c *cancelRegistry) cancel(id string) bool {
	c.mu.Lock()
	cancel, ok := c.cancels[id]
	c.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}
