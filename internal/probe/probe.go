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

// Package probe is the Prepare Probe: it asks the driver to describe a
// statement's parameters and result columns without executing it.
package probe

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Param is one positional placeholder's driver-reported type.
type Param struct {
	Ordinal  int
	OID      uint32
	TypeName string
}

// Column is one result column's driver-reported shape, prior to any
// source-table/foreign-key annotation.
type Column struct {
	Ordinal              int
	Name                 string
	OID                  uint32
	TypeName             string
	TableOID             uint32
	TableAttributeNumber int16
}

// Result is what the driver reports back for a described statement.
type Result struct {
	Params  []Param
	Columns []Column
}

// Describe prepares sql on conn under the unnamed statement name and reads
// back its parameter and result shape without ever executing it. Using the
// unnamed statement means the describe never creates a catalog object that
// outlives this call: the next Parse on the same connection (named or not)
// silently replaces it.
func Describe(ctx context.Context, conn *pgx.Conn, sql string) (Result, error) {
	desc, err := conn.PgConn().Prepare(ctx, "", sql, nil)
	if err != nil {
		return Result{}, err
	}

	params := make([]Param, len(desc.ParamOIDs))
	for i, oid := range desc.ParamOIDs {
		params[i] = Param{Ordinal: i + 1, OID: oid, TypeName: OIDName(oid)}
	}

	columns := make([]Column, len(desc.Fields))
	for i, f := range desc.Fields {
		columns[i] = Column{
			Ordinal:              i,
			Name:                 f.Name,
			OID:                  f.DataTypeOID,
			TypeName:             OIDName(f.DataTypeOID),
			TableOID:             f.TableOID,
			TableAttributeNumber: int16(f.TableAttributeNumber),
		}
	}

	return Result{Params: params, Columns: columns}, nil
}
