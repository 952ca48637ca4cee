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
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"dbc/internal/exec"
)

// Cache is a bounded, process-local store of select/explain ResultPages.
// It is safe for concurrent use.
type Cache struct {
	lru      *lru.Cache[Key, *record]
	maxBytes int64
	curBytes atomic.Int64
	sf       singleflight.Group
}

// New builds a Cache holding at most maxEntries records and maxBytes of
// aggregate marshaled response size, evicting least-recently-used entries
// first when either bound would be exceeded.
func New(maxEntries int, maxBytes int64) (*Cache, error) {
	c := &Cache{maxBytes: maxBytes}
	l, err := lru.NewWithEvict(maxEntries, func(_ Key, rec *record) {
		c.curBytes.Add(-rec.size)
	})
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

// Get returns the cached page for key if present and not expired.
func (c *Cache) Get(key Key) (exec.Page, bool) {
	rec, ok := c.lru.Get(key)
	if !ok {
		return exec.Page{}, false
	}
	if time.Now().After(rec.expiresAt) {
		c.lru.Remove(key)
		return exec.Page{}, false
	}
	return rec.page, true
}

// Put stores page under key with the given TTL, tagged with the
// lowercased relation names the statement referenced (used later for
// targeted modify-data invalidation). It evicts least-recently-used
// entries first if needed to stay within the byte budget.
func (c *Cache) Put(key Key, page exec.Page, relations []string, ttl time.Duration) {
	b, err := json.Marshal(page)
	size := int64(len(b))
	if err != nil {
		size = 0
	}

	rel := make(map[string]struct{}, len(relations))
	for _, r := range relations {
		rel[strings.ToLower(r)] = struct{}{}
	}

	c.evictToFit(size)
	c.lru.Add(key, &record{
		page:      page,
		relations: rel,
		expiresAt: time.Now().Add(ttl),
		size:      size,
	})
	c.curBytes.Add(size)
}

func (c *Cache) evictToFit(incoming int64) {
	for c.maxBytes > 0 && c.curBytes.Load()+incoming > c.maxBytes && c.lru.Len() > 0 {
		c.lru.RemoveOldest()
	}
}

// Loader produces a fresh page for a cache miss.
type Loader func(ctx context.Context) (exec.Page, error)

// GetOrLoad implements the read-through-with-single-flight discipline:
// a cache hit returns immediately, and concurrent misses for the same
// key collapse into one call to load. Only non-error select/explain
// pages are stored; relations tags the statement's referenced tables for
// later InvalidateRelation calls.
func (c *Cache) GetOrLoad(ctx context.Context, key Key, ttl time.Duration, relations []string, load Loader) (exec.Page, error) {
	if page, ok := c.Get(key); ok {
		return page, nil
	}

	sfKey := key.Connection + "\x00" + key.Database + "\x00" + key.Fingerprint
	v, err, _ := c.sf.Do(sfKey, func() (any, error) {
		if page, ok := c.Get(key); ok {
			return page, nil
		}
		page, err := load(ctx)
		if err != nil {
			return exec.Page{}, err
		}
		if page.Type == "select" || page.Type == "explain" {
			c.Put(key, page, relations, ttl)
		}
		return page, nil
	})
	if err != nil {
		return exec.Page{}, err
	}
	return v.(exec.Page), nil
}

// InvalidateDatabase drops every cached entry for (connection, database).
// Called after a successful modify-structure statement.
func (c *Cache) InvalidateDatabase(connection, database string) {
	for _, k := range c.lru.Keys() {
		if k.Connection == connection && k.Database == database {
			c.lru.Remove(k)
		}
	}
}

// InvalidateRelation drops cached entries for (connection, database) that
// reference relation. Called after a successful modify-data statement
// whose affected relation could be determined; callers fall back to
// InvalidateDatabase when it could not.
func (c *Cache) InvalidateRelation(connection, database, relation string) {
	relation = strings.ToLower(relation)
	for _, k := range c.lru.Keys() {
		if k.Connection != connection || k.Database != database {
			continue
		}
		rec, ok := c.lru.Peek(k)
		if !ok {
			continue
		}
		if _, hit := rec.relations[relation]; hit {
			c.lru.Remove(k)
		}
	}
}
