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

package respcache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"dbc/internal/exec"
)

func TestGetOrLoadCachesSelectResponses(t *testing.T) {
	c, err := New(10, 1<<20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	key := Key{Connection: "c1", Database: "db1", Fingerprint: "fp1"}

	var calls atomic.Int32
	load := func(ctx context.Context) (exec.Page, error) {
		calls.Add(1)
		return exec.Page{Type: "select", TotalCount: 1}, nil
	}

	for i := 0; i < 3; i++ {
		page, err := c.GetOrLoad(context.Background(), key, time.Minute, []string{"orders"}, load)
		if err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
		if page.Type != "select" {
			t.Fatalf("unexpected page: %+v", page)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 load call, got %d", calls.Load())
	}
}

func TestGetOrLoadDoesNotCacheModifyData(t *testing.T) {
	c, err := New(10, 1<<20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	key := Key{Connection: "c1", Database: "db1", Fingerprint: "fp2"}

	var calls atomic.Int32
	load := func(ctx context.Context) (exec.Page, error) {
		calls.Add(1)
		return exec.Page{Type: "modify-data", AffectedRows: 1}, nil
	}

	for i := 0; i < 2; i++ {
		if _, err := c.GetOrLoad(context.Background(), key, time.Minute, nil, load); err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("expected every call to miss the cache, got %d loads", calls.Load())
	}
}

func TestGetExpiresAfterTTL(t *testing.T) {
	c, err := New(10, 1<<20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	key := Key{Connection: "c1", Database: "db1", Fingerprint: "fp3"}
	c.Put(key, exec.Page{Type: "select"}, nil, -time.Second)

	if _, ok := c.Get(key); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestInvalidateDatabaseDropsMatchingEntries(t *testing.T) {
	c, err := New(10, 1<<20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	k1 := Key{Connection: "c1", Database: "db1", Fingerprint: "a"}
	k2 := Key{Connection: "c1", Database: "db2", Fingerprint: "b"}
	c.Put(k1, exec.Page{Type: "select"}, nil, time.Minute)
	c.Put(k2, exec.Page{Type: "select"}, nil, time.Minute)

	c.InvalidateDatabase("c1", "db1")

	if _, ok := c.Get(k1); ok {
		t.Error("expected k1 to be invalidated")
	}
	if _, ok := c.Get(k2); !ok {
		t.Error("expected k2 (different database) to survive")
	}
}

func TestInvalidateRelationDropsOnlyReferencingEntries(t *testing.T) {
	c, err := New(10, 1<<20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	k1 := Key{Connection: "c1", Database: "db1", Fingerprint: "a"}
	k2 := Key{Connection: "c1", Database: "db1", Fingerprint: "b"}
	c.Put(k1, exec.Page{Type: "select"}, []string{"orders"}, time.Minute)
	c.Put(k2, exec.Page{Type: "select"}, []string{"customers"}, time.Minute)

	c.InvalidateRelation("c1", "db1", "Orders")

	if _, ok := c.Get(k1); ok {
		t.Error("expected k1 (references orders) to be invalidated")
	}
	if _, ok := c.Get(k2); !ok {
		t.Error("expected k2 (references customers) to survive")
	}
}

func TestPutEvictsToStayWithinByteBudget(t *testing.T) {
	c, err := New(100, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	k1 := Key{Connection: "c1", Database: "db1", Fingerprint: "a"}
	k2 := Key{Connection: "c1", Database: "db1", Fingerprint: "b"}

	c.Put(k1, exec.Page{Type: "select", Query: "select 1"}, nil, time.Minute)
	c.Put(k2, exec.Page{Type: "select", Query: "select 2"}, nil, time.Minute)

	if _, ok := c.Get(k1); ok {
		t.Error("expected k1 to be evicted to respect the byte budget")
	}
	if _, ok := c.Get(k2); !ok {
		t.Error("expected k2 to remain cached")
	}
}
