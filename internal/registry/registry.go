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

// Package registry owns the gateway's view of each configured connection:
// its definition, a resolved-and-cached password, the server version last
// observed, and per-database status. It sits between the Config Store and
// the Pool Manager, and never calls back into either.
package registry

import (
	"context"
	"fmt"
	"sync"

	"dbc/internal/config"
	"dbc/internal/secret"
)

// Status is the lifecycle state of one (connection, database) pair.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusFailed  Status = "failed"
)

// ConnectionStatus is the per (connection, database) record the registry
// hands back to callers inspecting gateway health.
type ConnectionStatus struct {
	Status        Status
	Message       string
	ServerVersion string
}

// ChangeKind mirrors config.EventKind but is registry-scoped, so pool
// manager subscribers don't need to import the config package directly.
type ChangeKind int

const (
	ChangeUpserted ChangeKind = iota
	ChangeRemoved
)

// Change is published whenever a connection definition is added, replaced,
// or removed. The Pool Manager subscribes to tear down affected pools.
type Change struct {
	Kind ChangeKind
	Name string
}

type entry struct {
	conn           config.Connection
	cachedPassword *string
	serverVersion  string
	statusByDB     map[string]ConnectionStatus
}

// Registry is the Connection Registry.
type Registry struct {
	store *config.Store

	mu   sync.RWMutex
	byID map[string]*entry

	subsMu sync.Mutex
	subs   []chan Change
}

// New returns a Registry that mirrors connections from store and listens
// for its change events for the lifetime of ctx.
func New(ctx context.Context, store *config.Store) *Registry {
	r := &Registry{
		store: store,
		byID:  make(map[string]*entry),
	}
	go r.watch(ctx, store.Subscribe())
	return r
}

func (r *Registry) watch(ctx context.Context, events <-chan config.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.applyStoreEvent(ev)
		}
	}
}

func (r *Registry) applyStoreEvent(ev config.Event) {
	r.mu.Lock()
	delete(r.byID, ev.Name)
	r.mu.Unlock()

	switch ev.Kind {
	case config.EventUpserted:
		r.publish(Change{Kind: ChangeUpserted, Name: ev.Name})
	case config.EventRemoved:
		r.publish(Change{Kind: ChangeRemoved, Name: ev.Name})
	}
}

// Subscribe returns a channel of Change events for the Pool Manager to
// evict pools on. Buffered and best-effort, like config.Store.Subscribe.
func (r *Registry) Subscribe() <-chan Change {
	ch := make(chan Change, 16)
	r.subsMu.Lock()
	r.subs = append(r.subs, ch)
	r.subsMu.Unlock()
	return ch
}

func (r *Registry) publish(c Change) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- c:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- c:
			default:
			}
		}
	}
}

// Resolve returns the named connection's definition and its password,
// resolving and caching the password on first use. The cached password is
// erased whenever the underlying connection definition changes.
func (r *Registry) Resolve(ctx context.Context, name string) (config.Connection, string, error) {
	r.mu.Lock()
	e, ok := r.byID[name]
	r.mu.Unlock()

	if !ok {
		conn, err := r.store.Get(name)
		if err != nil {
			return config.Connection{}, "", err
		}
		e = &entry{conn: conn, statusByDB: make(map[string]ConnectionStatus)}
		r.mu.Lock()
		if existing, ok := r.byID[name]; ok {
			e = existing
		} else {
			r.byID[name] = e
		}
		r.mu.Unlock()
	}

	r.mu.Lock()
	cached := e.cachedPassword
	conn := e.conn
	r.mu.Unlock()
	if cached != nil {
		return conn, *cached, nil
	}

	src, err := conn.Source()
	if err != nil {
		return config.Connection{}, "", err
	}

	var password string
	if src.Command != "" {
		password, err = secret.Resolve(ctx, src.Command)
		if err != nil {
			return config.Connection{}, "", fmt.Errorf("resolving password for connection %q: %w", name, err)
		}
	} else {
		password = src.Literal
	}

	r.mu.Lock()
	e.cachedPassword = &password
	r.mu.Unlock()

	return conn, password, nil
}

// NoteStatus records the observed status of a (connection, database) pair,
// along with the server version string once known.
func (r *Registry) NoteStatus(name, database string, status Status, message, serverVersion string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[name]
	if !ok {
		e = &entry{statusByDB: make(map[string]ConnectionStatus)}
		r.byID[name] = e
	}
	if serverVersion != "" {
		e.serverVersion = serverVersion
	}
	e.statusByDB[database] = ConnectionStatus{
		Status:        status,
		Message:       message,
		ServerVersion: e.serverVersion,
	}
}

// Status returns the last-observed status of a (connection, database) pair.
func (r *Registry) Status(name, database string) (ConnectionStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[name]
	if !ok {
		return ConnectionStatus{}, false
	}
	s, ok := e.statusByDB[database]
	return s, ok
}

// StatusesFor returns a copy of every (database -> status) pair observed so
// far for name, for the GET /config response. An unknown or never-acquired
// connection returns an empty map, not an error: a connection with no
// observed status yet is simply reported with no per-database entries.
func (r *Registry) StatusesFor(name string) map[string]ConnectionStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[name]
	if !ok {
		return map[string]ConnectionStatus{}
	}
	out := make(map[string]ConnectionStatus, len(e.statusByDB))
	for db, s := range e.statusByDB {
		out[db] = s
	}
	return out
}
