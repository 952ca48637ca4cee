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

// Package gateway wires the Connection Registry, Pool Manager, SQL
// Classifier, Query Rewriter, Prepare Probe, Executor, Column Annotator,
// and Response Cache into the single request pipeline the HTTP/WS surface
// calls into: K -> C -> D -> E -> F -> G -> H -> I -> J -> K.
package gateway

import (
	"time"

	"dbc/internal/rewrite"
)

// QueryRequest is the decoded body of a /query call.
type QueryRequest struct {
	Query    string
	Params   []any
	Sort     *rewrite.Sort
	Filters  []rewrite.Filter
	Page     rewrite.Page
	UseCache bool
	// TTL is the client-requested cache lifetime; zero means "use the
	// gateway default". It is always capped at the configured server
	// maximum regardless of what the client asks for.
	TTL time.Duration
}

// PrepareResult is the decoded response of a /prepare call.
type PrepareResult struct {
	Params  []ParamInfo  `json:"params"`
	Columns []ColumnInfo `json:"columns"`
}

// ParamInfo describes one positional placeholder's driver-reported type.
type ParamInfo struct {
	Ordinal      int    `json:"ordinal"`
	DeclaredName string `json:"declared_name"`
	OID          uint32 `json:"oid"`
	TypeName     string `json:"type_name"`
}

// ColumnInfo describes one result column's driver-reported shape, as
// returned by /prepare (before any post-execution annotation, which only
// applies to /query results).
type ColumnInfo struct {
	Ordinal  int    `json:"ordinal"`
	Name     string `json:"name"`
	OID      uint32 `json:"oid"`
	TypeName string `json:"type_name"`
}
