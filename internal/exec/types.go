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

// Package exec is the Executor: it runs a classified, rewritten statement
// against a pool-managed session, decodes rows to the gateway's JSON cell
// model, and normalizes driver errors into the gwerr taxonomy.
package exec

import "dbc/internal/rewrite"

// Column describes one output column in a ResultPage, including any
// source-table/foreign-key provenance the Column Annotator attached.
type Column struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Ordinal      int    `json:"ordinal"`
	SourceTable  string `json:"source_table,omitempty"`
	SourceColumn string `json:"source_column,omitempty"`
	FKConstraint string `json:"fk_constraint,omitempty"`
	FKTable      string `json:"fk_table,omitempty"`
	FKColumn     string `json:"fk_column,omitempty"`

	// TableOID/TableAttributeNumber are the driver-reported provenance of
	// this column (relation oid, attribute number), carried only long
	// enough for the Column Annotator to resolve SourceTable/SourceColumn
	// and any foreign key; never sent over the wire.
	TableOID             uint32 `json:"-"`
	TableAttributeNumber int16  `json:"-"`
}

// Page is a tagged ResultPage variant. Type selects which of the other
// fields are populated: "select", "modify-data", "modify-structure", or
// "explain".
type Page struct {
	Type string `json:"type"`

	// select
	Page       int           `json:"page,omitempty"`
	PageSize   int           `json:"page_size,omitempty"`
	TotalCount int64         `json:"total_count,omitempty"`
	TotalPages int64         `json:"total_pages,omitempty"`
	Sort       *rewrite.Sort `json:"sort,omitempty"`
	Columns    []Column      `json:"columns,omitempty"`
	Rows       [][]any       `json:"rows,omitempty"`

	// modify-data
	AffectedRows int64 `json:"affected_rows,omitempty"`

	// explain
	Plan  any    `json:"plan,omitempty"`
	Query string `json:"query,omitempty"`
}
