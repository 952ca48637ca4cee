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

// Package catalog answers the /db/* routes: a small set of predefined
// introspection queries run on the routed session, never arbitrary SQL.
// Listing queries go through bob/psql the way the teacher's persistence
// adapters do; the single DDL-text routes call Postgres's own
// pg_get_*def() builtins directly, since those return one opaque string
// per object rather than a row set worth a query builder.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"dbc/internal/gwerr"
)

// Table describes one relation inside a schema.
type Table struct {
	Name string `db:"name"`
	Kind string `db:"kind"`
}

// Column describes one column of a table, ordered as Postgres stores it.
type Column struct {
	Ordinal  int    `db:"ordinal"`
	Name     string `db:"name"`
	Type     string `db:"type"`
	Nullable bool   `db:"nullable"`
	Default  string `db:"default"`
}

// Databases lists every non-template database visible on the server.
func Databases(ctx context.Context, db bob.DB) ([]string, error) {
	q := psql.Select(
		sm.Columns("datname"),
		sm.From("pg_catalog.pg_database"),
		sm.Where(psql.Quote("datistemplate").EQ(psql.Arg(false))),
		sm.OrderBy("datname"),
	)
	names, err := bob.Allx[string](ctx, db, q, scan.SingleColumnMapper[string])
	if err != nil {
		return nil, classify(err)
	}
	return names, nil
}

// Schemas lists every user-visible schema, excluding the system ones.
func Schemas(ctx context.Context, db bob.DB) ([]string, error) {
	q := psql.Select(
		sm.Columns("schema_name"),
		sm.From("information_schema.schemata"),
		sm.Where(psql.Quote("schema_name").NotIn(
			psql.Arg("pg_catalog"), psql.Arg("information_schema"), psql.Arg("pg_toast"),
		)),
		sm.OrderBy("schema_name"),
	)
	names, err := bob.Allx[string](ctx, db, q, scan.SingleColumnMapper[string])
	if err != nil {
		return nil, classify(err)
	}
	return names, nil
}

// Tables lists every table and view inside schema.
func Tables(ctx context.Context, db bob.DB, schema string) ([]Table, error) {
	q := psql.Select(
		sm.Columns("table_name AS name", "table_type AS kind"),
		sm.From("information_schema.tables"),
		sm.Where(psql.Quote("table_schema").EQ(psql.Arg(schema))),
		sm.OrderBy("table_name"),
	)
	rows, err := bob.Allx[Table](ctx, db, q, scan.StructMapper[Table]())
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

// Columns lists schema.table's columns, in declared order.
func Columns(ctx context.Context, db bob.DB, schema, table string) ([]Column, error) {
	q := psql.Select(
		sm.Columns(
			"ordinal_position AS ordinal",
			"column_name AS name",
			"data_type AS type",
			"(is_nullable = 'YES') AS nullable",
			"COALESCE(column_default, '') AS default",
		),
		sm.From("information_schema.columns"),
		sm.Where(psql.Quote("table_schema").EQ(psql.Arg(schema))),
		sm.Where(psql.Quote("table_name").EQ(psql.Arg(table))),
		sm.OrderBy("ordinal_position"),
	)
	rows, err := bob.Allx[Column](ctx, db, q, scan.StructMapper[Column]())
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

// Kind is the object kind a DDL request names.
type Kind string

const (
	KindTable    Kind = "table"
	KindView     Kind = "view"
	KindFunction Kind = "function"
	KindIndex    Kind = "index"
	KindSequence Kind = "sequence"
)

// DDL reconstructs the approximate source text for one catalog object.
// Views, functions, and indexes use Postgres's own pg_get_*def() builtins,
// which reproduce the object verbatim; tables have no single builtin
// (CREATE TABLE is not stored anywhere server-side), so the text is
// synthesized from information_schema.columns and is a best-effort
// rendering, not a byte-exact replay of the original DDL.
func DDL(ctx context.Context, conn *pgx.Conn, db bob.DB, schema string, kind Kind, name string) (string, error) {
	qualified := fmt.Sprintf("%s.%s", schema, name)

	switch kind {
	case KindView:
		return regprocDef(ctx, conn, "pg_get_viewdef($1::regclass, true)", qualified)
	case KindIndex:
		return regprocDef(ctx, conn, "pg_get_indexdef($1::regclass)", qualified)
	case KindSequence:
		return regprocDef(ctx, conn, "pg_get_serial_sequence($1, NULL)", qualified)
	case KindFunction:
		return regprocDef(ctx, conn, "pg_get_functiondef($1::regproc)", qualified)
	case KindTable:
		return tableDDL(ctx, db, schema, name)
	default:
		return "", &gwerr.BadRequest{Message: fmt.Sprintf("unknown ddl kind %q", kind), Field: "kind"}
	}
}

func regprocDef(ctx context.Context, conn *pgx.Conn, expr string, arg string) (string, error) {
	var def string
	err := conn.QueryRow(ctx, "SELECT "+expr, arg).Scan(&def)
	if err != nil {
		return "", classify(err)
	}
	return def, nil
}

func tableDDL(ctx context.Context, db bob.DB, schema, table string) (string, error) {
	cols, err := Columns(ctx, db, schema, table)
	if err != nil {
		return "", err
	}
	if len(cols) == 0 {
		return "", &gwerr.BadRequest{Message: fmt.Sprintf("no such table %s.%s", schema, table), Field: "name"}
	}

	def := fmt.Sprintf("CREATE TABLE %s.%s (\n", schema, table)
	for i, c := range cols {
		def += fmt.Sprintf("  %s %s", c.Name, c.Type)
		if !c.Nullable {
			def += " NOT NULL"
		}
		if c.Default != "" {
			def += " DEFAULT " + c.Default
		}
		if i < len(cols)-1 {
			def += ","
		}
		def += "\n"
	}
	def += ");"
	return def, nil
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	return gwerr.Internalf("catalog query: %v", err)
}
