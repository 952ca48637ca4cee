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

package registry

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dbc/internal/config"
)

func pw(s string) *string { return &s }

func TestResolveCachesPassword(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := config.New(filepath.Join(t.TempDir(), "connections.json"))
	if err := store.Upsert(config.Connection{Name: "main", Username: "app", Password: pw("first")}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	r := New(ctx, store)

	_, got, err := r.Resolve(ctx, "main")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "first" {
		t.Fatalf("expected %q, got %q", "first", got)
	}
}

func TestResolveUnknownConnection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := config.New(filepath.Join(t.TempDir(), "connections.json"))
	r := New(ctx, store)

	if _, _, err := r.Resolve(ctx, "missing"); err == nil {
		t.Fatal("expected error for unknown connection")
	}
}

func TestNoteStatusAndStatus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := config.New(filepath.Join(t.TempDir(), "connections.json"))
	r := New(ctx, store)

	r.NoteStatus("main", "postgres", StatusActive, "", "PostgreSQL 16.2")
	s, ok := r.Status("main", "postgres")
	if !ok {
		t.Fatal("expected a recorded status")
	}
	if s.Status != StatusActive || s.ServerVersion != "PostgreSQL 16.2" {
		t.Fatalf("unexpected status: %+v", s)
	}
}

func TestConfigChangeEvictsCachedPassword(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := config.New(filepath.Join(t.TempDir(), "connections.json"))
	if err := store.Upsert(config.Connection{Name: "main", Username: "app", Password: pw("first")}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	r := New(ctx, store)
	changes := r.Subscribe()

	if _, _, err := r.Resolve(ctx, "main"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if err := store.Upsert(config.Connection{Name: "main", Username: "app", Password: pw("second")}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	select {
	case c := <-changes:
		if c.Name != "main" || c.Kind != ChangeUpserted {
			t.Fatalf("unexpected change: %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}

	// Give the background watcher a moment to apply the event before resolving again.
	deadline := time.Now().Add(2 * time.Second)
	var got string
	for time.Now().Before(deadline) {
		_, got, _ = r.Resolve(ctx, "main")
		if got == "second" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got != "second" {
		t.Fatalf("expected refreshed password %q, got %q", "second", got)
	}
}
