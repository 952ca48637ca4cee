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

package gateway

import (
	"errors"
	"testing"

	"dbc/internal/gwerr"
	"dbc/internal/sqlstmt"
)

func TestSplitSelectsLastStatementAsTarget(t *testing.T) {
	script := "set local statement_timeout = 1000; select * from orders"
	stmts := sqlstmt.Split(script)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	target := stmts[len(stmts)-1]
	if target.Tag != sqlstmt.TagSelect {
		t.Errorf("expected target statement to be a select, got %s", target.Tag)
	}
	if stmts[0].Text != "set local statement_timeout = 1000" {
		t.Errorf("unexpected first statement: %q", stmts[0].Text)
	}
}

func TestSplitEmptyScriptYieldsNoStatements(t *testing.T) {
	stmts := sqlstmt.Split("   ;  ; ")
	if len(stmts) != 0 {
		t.Fatalf("expected no statements, got %d", len(stmts))
	}
}

func TestAcquireRejectsMissingRoutingHeaders(t *testing.T) {
	g := &Gateway{}
	_, err := g.acquire(nil, "", "")
	var bad *gwerr.BadRequest
	if !errors.As(err, &bad) {
		t.Fatalf("expected *gwerr.BadRequest, got %v", err)
	}
	if bad.Field != "x-conn-name" {
		t.Errorf("expected field x-conn-name, got %q", bad.Field)
	}
}

func TestDefaultConfigMatchesSpecLiterals(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RequestBudget.Seconds() != 30 {
		t.Errorf("RequestBudget = %v, want 30s", cfg.RequestBudget)
	}
	if cfg.DefaultCacheTTL != cfg.MaxCacheTTL {
		t.Errorf("DefaultCacheTTL (%v) should equal MaxCacheTTL (%v) out of the box", cfg.DefaultCacheTTL, cfg.MaxCacheTTL)
	}
	if cfg.CacheMaxBytes != 64<<20 {
		t.Errorf("CacheMaxBytes = %d, want %d", cfg.CacheMaxBytes, 64<<20)
	}
}
