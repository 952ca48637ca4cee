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

package pgpool

import (
	"strings"
	"testing"

	"dbc/internal/config"
)

func TestConnStringEscapesCredentials(t *testing.T) {
	conn := config.Connection{Host: "db.internal", Port: 5432, Username: "app user", SSL: true}
	dsn := connString(conn, "p@ss/word?", "sales")

	if !strings.Contains(dsn, "app%20user") && !strings.Contains(dsn, "app+user") {
		t.Fatalf("expected escaped username in %q", dsn)
	}
	if strings.Contains(dsn, "p@ss/word?:") || strings.Contains(dsn, "word?@") {
		t.Fatalf("password appears unescaped in %q", dsn)
	}
	if !strings.Contains(dsn, "sslmode=require") {
		t.Fatalf("expected sslmode=require in %q", dsn)
	}
	if !strings.HasSuffix(dsn, "/sales?sslmode=require") {
		t.Fatalf("expected database path /sales, got %q", dsn)
	}
}

func TestConnStringDisablesSSLByDefault(t *testing.T) {
	conn := config.Connection{Host: "localhost", Port: 5432, Username: "app"}
	dsn := connString(conn, "secret", "postgres")

	if !strings.Contains(dsn, "sslmode=disable") {
		t.Fatalf("expected sslmode=disable in %q", dsn)
	}
}

func TestKeyDistinguishesDatabase(t *testing.T) {
	a := Key{Connection: "main", Database: "sales"}
	b := Key{Connection: "main", Database: "reporting"}
	if a == b {
		t.Fatal("expected distinct keys for distinct databases")
	}
}
