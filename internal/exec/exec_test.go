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

package exec

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"dbc/internal/gwerr"
	"dbc/internal/probe"
)

func TestCoerceParamsKnownTypes(t *testing.T) {
	params := []probe.Param{
		{Ordinal: 1, TypeName: "int4"},
		{Ordinal: 2, TypeName: "bool"},
		{Ordinal: 3, TypeName: "numeric"},
		{Ordinal: 4, TypeName: "text"},
	}
	values := []any{float64(42), true, float64(3.14), "hello"}

	out, err := CoerceParams(params, values)
	if err != nil {
		t.Fatalf("CoerceParams: %v", err)
	}
	if out[0] != int64(42) {
		t.Errorf("int4: got %v (%T)", out[0], out[0])
	}
	if out[1] != true {
		t.Errorf("bool: got %v", out[1])
	}
	if out[2] != "3.14" {
		t.Errorf("numeric: got %v", out[2])
	}
	if out[3] != "hello" {
		t.Errorf("text: got %v", out[3])
	}
}

func TestCoerceParamsNullPassesThrough(t *testing.T) {
	params := []probe.Param{{Ordinal: 1, TypeName: "int4"}}
	out, err := CoerceParams(params, []any{nil})
	if err != nil {
		t.Fatalf("CoerceParams: %v", err)
	}
	if out[0] != nil {
		t.Errorf("expected nil, got %v", out[0])
	}
}

func TestCoerceParamsUnknownTypeUsesText(t *testing.T) {
	params := []probe.Param{{Ordinal: 1, TypeName: "interval"}}
	out, err := CoerceParams(params, []any{"1 day"})
	if err != nil {
		t.Fatalf("CoerceParams: %v", err)
	}
	if out[0] != "1 day" {
		t.Errorf("expected text passthrough, got %v", out[0])
	}
}

func TestToJSONCellTimestamp(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got := toJSONCell(ts)
	want := "2026-01-02T03:04:05Z"
	if got != want {
		t.Errorf("toJSONCell(time) = %v, want %v", got, want)
	}
}

func TestToJSONCellBinary(t *testing.T) {
	got := toJSONCell([]byte{0x01, 0x02})
	if got != "AQI=" {
		t.Errorf("toJSONCell(bytes) = %v", got)
	}
}

func TestToJSONCellNestedJSON(t *testing.T) {
	v := map[string]any{"a": float64(1)}
	got := toJSONCell(v)
	m, ok := got.(map[string]any)
	if !ok || m["a"] != float64(1) {
		t.Errorf("expected jsonb passthrough, got %v", got)
	}
}

func TestClassifyErrCanceled(t *testing.T) {
	err := classifyErr(context.Canceled)
	var canceled *gwerr.Canceled
	if !errors.As(err, &canceled) {
		t.Fatalf("expected *gwerr.Canceled, got %v", err)
	}
}

func TestClassifyErrPgError(t *testing.T) {
	pos := int32(14)
	err := classifyErr(&pgconn.PgError{Severity: "ERROR", Code: "42601", Message: "syntax error", Position: pos})

	var pgErr *gwerr.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("expected *gwerr.PgError, got %v", err)
	}
	if pgErr.Code != "42601" || pgErr.Position == nil || *pgErr.Position != 14 {
		t.Errorf("unexpected PgError: %+v", pgErr)
	}
}
