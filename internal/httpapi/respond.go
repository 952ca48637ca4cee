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

package httpapi

import (
	"encoding/json"
	"net/http"

	"dbc/internal/gwerr"
	"dbc/internal/problem"
)

// writeJSON encodes v as the response body with status code status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps err into dbc's RFC7807-shaped Problem body (spec §7). err is
// expected to satisfy gwerr.Typed; anything else is reported as an opaque
// Internal, per problem.FromError's own contract.
func writeErr(w http.ResponseWriter, err error) {
	problem.Write(w, problem.FromError(err))
}

// connName and database read the routing headers every catalog/query route
// requires (spec §6: "x-conn-name", "x-database").
func connName(r *http.Request) string {
	return r.Header.Get("x-conn-name")
}

func database(r *http.Request) string {
	return r.Header.Get("x-database")
}

// requireConnName returns a BadRequest if x-conn-name is missing, since
// several routes (GET /db/databases, GET /connections/{name} via its path
// parameter) don't also require x-database.
func requireConnName(r *http.Request) (string, error) {
	name := connName(r)
	if name == "" {
		return "", &gwerr.BadRequest{Message: "x-conn-name header is required", Field: "x-conn-name"}
	}
	return name, nil
}
