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

// Package rewrite is the Query Rewriter: it wraps a SELECT statement to add
// pagination, ordering, filtering, and a total row count in one round
// trip, and wraps EXPLAIN requests in a JSON-producing form.
package rewrite

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Sort orders the wrapper's output by the statement's Nth output column
// (zero-based). A nil *Sort in Request means no ORDER BY is added
// (driver-native order).
type Sort struct {
	ColumnIdx int       `json:"column_idx"`
	Direction Direction `json:"direction"`
}

// Operator is a filter comparison.
type Operator string

const (
	OpEq      Operator = "eq"
	OpNeq     Operator = "neq"
	OpLike    Operator = "like"
	OpNotLike Operator = "not_like"
	OpNull    Operator = "null"
	OpNotNull Operator = "not_null"
	OpGt      Operator = "gt"
	OpGte     Operator = "gte"
	OpLt      Operator = "lt"
	OpLte     Operator = "lte"
)

// ValueType determines how a filter's Value is coerced before binding.
type ValueType string

const (
	TypeBoolean   ValueType = "boolean"
	TypeInteger   ValueType = "integer"
	TypeNumeric   ValueType = "numeric"
	TypeText      ValueType = "text"
	TypeTimestamp ValueType = "timestamp"
)

// Filter restricts the wrapper's output to rows matching a condition on one
// column. Column names the target by its output name rather than by
// position; a request's wire-level "index" field (an alternative way to
// name the same column by ordinal) is accepted by the decoder and ignored,
// since every filter here resolves against the probed column list by name.
type Filter struct {
	Type     ValueType `json:"type"`
	Column   string    `json:"column"`
	Operator Operator  `json:"operator"`
	Value    any       `json:"value"`
}

// Page describes pagination. PageSize of -1 means "download all": the
// wrapper omits LIMIT/OFFSET entirely.
type Page struct {
	Page     int
	PageSize int
}

// Request bundles everything the rewriter needs to build a wrapped query.
type Request struct {
	Sort    *Sort
	Filters []Filter
	Page    Page
}

// Result is a rewritten query ready for execution: Text uses the same
// placeholder numbering scheme pgx expects, and Args holds the
// wrapper-introduced bind values in placeholder order (appended after any
// placeholders already present in the source statement).
type Result struct {
	Text string
	Args []any
}
