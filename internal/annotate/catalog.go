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

	"github.com/jackc/pgx/v5"
)

// columnsQuery lists every live column of every table, view, materialized
// view, foreign table, and partitioned table, keyed by (relid, attnum).
const columnsQuery = `
select a.attrelid, a.attnum, c.relname, a.attname
from pg_attribute a
join pg_class c on c.oid = a.attrelid
where a.attnum > 0
  and not a.attisdropped
  and c.relkind in ('r', 'v', 'm', 'f', 'p')
`

// foreignKeysQuery lists every foreign key constraint. conkey/confkey are
// parallel arrays: conkey[i] in conrelid references confkey[i] in confrelid.
const foreignKeysQuery = `
select conname, conrelid, confrelid, conkey, confkey
from pg_constraint
where contype = 'f'
`

// loadCatalog builds a full catalog snapshot for the database conn is
// connected to. It is O(size of catalog), intended to be called once per
// cache miss and reused across requests until invalidated.
func loadCatalog(ctx context.Context, conn *pgx.Conn) (*catalogEntry, error) {
	entry := &catalogEntry{
		tableNames: make(map[uint32]string),
		columns:    make(map[columnRef]string),
		fks:        make(map[columnRef]fkEdge),
	}

	rows, err := conn.Query(ctx, columnsQuery)
	if err != nil {
		return nil, fmt.Errorf("annotate: loading columns: %w", err)
	}
	for rows.Next() {
		var relID uint32
		var attNum int16
		var relName, attName string
		if err := rows.Scan(&relID, &attNum, &relName, &attName); err != nil {
			rows.Close()
			return nil, fmt.Errorf("annotate: scanning column row: %w", err)
		}
		entry.tableNames[relID] = relName
		entry.columns[columnRef{RelID: relID, AttNum: attNum}] = attName
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("annotate: reading columns: %w", err)
	}

	fkRows, err := conn.Query(ctx, foreignKeysQuery)
	if err != nil {
		return nil, fmt.Errorf("annotate: loading foreign keys: %w", err)
	}
	defer fkRows.Close()
	for fkRows.Next() {
		var conname string
		var conrelid, confrelid uint32
		var conkey, confkey []int16
		if err := fkRows.Scan(&conname, &conrelid, &confrelid, &conkey, &confkey); err != nil {
			return nil, fmt.Errorf("annotate: scanning foreign key row: %w", err)
		}
		for i := 0; i < len(conkey) && i < len(confkey); i++ {
			ref := columnRef{RelID: conrelid, AttNum: conkey[i]}
			entry.fks[ref] = fkEdge{
				Constraint: conname,
				Table:      entry.tableNames[confrelid],
				Column:     entry.columns[columnRef{RelID: confrelid, AttNum: confkey[i]}],
			}
		}
	}
	if err := fkRows.Err(); err != nil {
		return nil, fmt.Errorf("annotate: reading foreign keys: %w", err)
	}

	return entry, nil
}
