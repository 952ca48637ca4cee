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

package rewrite

import (
	"strings"
	"testing"

	"dbc/internal/sqlstmt"
)

func TestPaginateRefusesNonSelect(t *testing.T) {
	res, err := Paginate(sqlstmt.TagModifyData, "update t set a = 1", 1, Request{Page: Page{Page: 1, PageSize: 20}})
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if res.Text != "update t set a = 1" || len(res.Args) != 0 {
		t.Fatalf("expected unchanged passthrough, got %+v", res)
	}
}

func TestPaginateBasic(t *testing.T) {
	res, err := Paginate(sqlstmt.TagSelect, "select id, name from users", 1, Request{
		Page: Page{Page: 2, PageSize: 10},
	})
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if !strings.Contains(res.Text, "WITH base AS (select id, name from users)") {
		t.Fatalf("expected CTE wrapper, got %q", res.Text)
	}
	if !strings.Contains(res.Text, "LIMIT $1 OFFSET $2") {
		t.Fatalf("expected limit/offset placeholders, got %q", res.Text)
	}
	if len(res.Args) != 2 || res.Args[0] != 10 || res.Args[1] != 10 {
		t.Fatalf("expected page_size=10 offset=10, got %+v", res.Args)
	}
}

func TestPaginateOmitsLimitForDownloadAll(t *testing.T) {
	res, err := Paginate(sqlstmt.TagSelect, "select 1", 1, Request{Page: Page{Page: 1, PageSize: -1}})
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if strings.Contains(res.Text, "LIMIT") {
		t.Fatalf("expected no LIMIT for page_size=-1, got %q", res.Text)
	}
}

func TestPaginateWithFilters(t *testing.T) {
	res, err := Paginate(sqlstmt.TagSelect, "select id, status from orders", 1, Request{
		Filters: []Filter{
			{Type: TypeText, Column: "status", Operator: OpEq, Value: "open"},
			{Type: TypeText, Column: "notes", Operator: OpNull},
		},
		Page: Page{Page: 1, PageSize: 20},
	})
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if !strings.Contains(res.Text, `"status" = $1`) {
		t.Fatalf("expected equality filter, got %q", res.Text)
	}
	if !strings.Contains(res.Text, `"notes" IS NULL`) {
		t.Fatalf("expected null filter, got %q", res.Text)
	}
	if !strings.Contains(res.Text, "LIMIT $2 OFFSET $3") {
		t.Fatalf("expected limit/offset after filter placeholder, got %q", res.Text)
	}
	if len(res.Args) != 3 || res.Args[0] != "open" {
		t.Fatalf("unexpected args %+v", res.Args)
	}
}

func TestPaginateSortUsesOrdinalPastTotal(t *testing.T) {
	res, err := Paginate(sqlstmt.TagSelect, "select id, name from users", 1, Request{
		Sort: &Sort{ColumnIdx: 1, Direction: Desc},
		Page: Page{Page: 1, PageSize: 20},
	})
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if !strings.Contains(res.Text, "ORDER BY 3 DESC") {
		t.Fatalf("expected ORDER BY 3 DESC, got %q", res.Text)
	}
}

func TestExplainWrapsUnlessAnalyze(t *testing.T) {
	wrapped := Explain("select 1")
	if !strings.HasPrefix(wrapped, "EXPLAIN (FORMAT JSON, ANALYZE false)") {
		t.Fatalf("expected wrapped explain, got %q", wrapped)
	}

	verbatim := Explain("EXPLAIN ANALYZE select 1")
	if verbatim != "EXPLAIN ANALYZE select 1" {
		t.Fatalf("expected verbatim passthrough, got %q", verbatim)
	}
}
