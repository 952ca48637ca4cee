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
	"testing"

	"dbc/internal/rewrite"
)

func TestFingerprintStableForEquivalentInput(t *testing.T) {
	a := FingerprintInput{
		Connection: "c1",
		Database:   "db1",
		Statement:  "select * from orders where id = $1",
		Params:     []any{float64(1)},
		Page:       rewrite.Page{Page: 1, PageSize: 20},
	}
	b := a

	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint(a): %v", err)
	}
	fb, err := Fingerprint(b)
	if err != nil {
		t.Fatalf("Fingerprint(b): %v", err)
	}
	if fa != fb {
		t.Errorf("expected identical fingerprints, got %s vs %s", fa, fb)
	}
}

func TestFingerprintDiffersOnParams(t *testing.T) {
	base := FingerprintInput{
		Connection: "c1",
		Database:   "db1",
		Statement:  "select * from orders where id = $1",
		Page:       rewrite.Page{Page: 1, PageSize: 20},
	}
	a := base
	a.Params = []any{float64(1)}
	b := base
	b.Params = []any{float64(2)}

	fa, _ := Fingerprint(a)
	fb, _ := Fingerprint(b)
	if fa == fb {
		t.Error("expected different params to produce different fingerprints")
	}
}

func TestFingerprintDiffersOnSort(t *testing.T) {
	base := FingerprintInput{
		Connection: "c1",
		Database:   "db1",
		Statement:  "select * from orders",
		Page:       rewrite.Page{Page: 1, PageSize: 20},
	}
	a := base
	a.Sort = &rewrite.Sort{ColumnIdx: 0, Direction: rewrite.Asc}
	b := base
	b.Sort = &rewrite.Sort{ColumnIdx: 1, Direction: rewrite.Asc}

	fa, _ := Fingerprint(a)
	fb, _ := Fingerprint(b)
	if fa == fb {
		t.Error("expected different sort to produce different fingerprints")
	}
}
