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

package annotate

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5"

	"dbc/internal/exec"
)

// Annotator caches one catalog snapshot per (connection, database) and
// uses it to attach source-table/foreign-key provenance to result
// columns after execution.
type Annotator struct {
	cache *lru.Cache[Key, *catalogEntry]
}

// New builds an Annotator whose catalog cache holds up to size entries
// (one per distinct connection/database pair in active use).
func New(size int) (*Annotator, error) {
	if size <= 0 {
		size = 32
	}
	cache, err := lru.New[Key, *catalogEntry](size)
	if err != nil {
		return nil, fmt.Errorf("annotate: building catalog cache: %w", err)
	}
	return &Annotator{cache: cache}, nil
}

// Annotate fills in SourceTable/SourceColumn/FKConstraint/FKTable/FKColumn
// on cols in place, resolving each column's (TableOID,
// TableAttributeNumber) against the cached catalog for key, loading it on
// first use. Columns with no single owning table (TableOID == 0, e.g.
// computed expressions) are left unannotated.
func (a *Annotator) Annotate(ctx context.Context, conn *pgx.Conn, key Key, cols []exec.Column) error {
	entry, err := a.entryFor(ctx, conn, key)
	if err != nil {
		return err
	}
	applyCatalog(entry, cols)
	return nil
}

// Invalidate drops the cached catalog for key, forcing the next Annotate
// call to reload it. Called together with response-cache invalidation on
// a modify-structure statement (spec: catalog cache "is invalidated
// together with the response cache on modify-structure").
func (a *Annotator) Invalidate(key Key) {
	a.cache.Remove(key)
}

func (a *Annotator) entryFor(ctx context.Context, conn *pgx.Conn, key Key) (*catalogEntry, error) {
	if e, ok := a.cache.Get(key); ok {
		return e, nil
	}
	e, err := loadCatalog(ctx, conn)
	if err != nil {
		return nil, err
	}
	a.cache.Add(key, e)
	return e, nil
}

// applyCatalog is the pure lookup/merge step, split out from Annotate so
// it can be exercised without a live catalog load.
func applyCatalog(entry *catalogEntry, cols []exec.Column) {
	for i := range cols {
		c := &cols[i]
		if c.TableOID == 0 {
			continue
		}
		ref := columnRef{RelID: c.TableOID, AttNum: c.TableAttributeNumber}

		if name, ok := entry.columns[ref]; ok {
			c.SourceColumn = name
			c.SourceTable = entry.tableNames[c.TableOID]
		}
		if fk, ok := entry.fks[ref]; ok {
			c.FKConstraint = fk.Constraint
			c.FKTable = fk.Table
			c.FKColumn = fk.Column
		}
	}
}
