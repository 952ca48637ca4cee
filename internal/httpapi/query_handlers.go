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
	"context"
	"encoding/json"
	"net/http"
	"time"

	"dbc/internal/gateway"
	"dbc/internal/gwerr"
	"dbc/internal/rewrite"
)

// prepareRequestWire is POST /prepare's body (spec §6).
type prepareRequestWire struct {
	Query string `json:"query"`
}

// handlePrepare describes a statement's declared parameters and result
// columns without executing it (spec §6: "POST /prepare").
func (s *Surface) handlePrepare(w http.ResponseWriter, r *http.Request) {
	name, db, err := requireRouting(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	var body prepareRequestWire
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, &gwerr.BadRequest{Message: "malformed request body: " + err.Error(), Field: "query"})
		return
	}

	result, err := s.gw.Prepare(r.Context(), name, db, body.Query)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// queryRequestWire is POST /query's body (spec §6/§8): the wire shapes of
// rewrite.Sort/rewrite.Filter carry their own json tags, so only the
// envelope (query text, params, pagination, caching) needs translating into
// gateway.QueryRequest.
type queryRequestWire struct {
	Query      string           `json:"query"`
	Params     []any            `json:"params"`
	Sort       *rewrite.Sort    `json:"sort"`
	Filters    []rewrite.Filter `json:"filters"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	// UseCache is a pointer so an omitted field is distinguishable from an
	// explicit false: caching is opt-out, not opt-in (spec §4.J: "reads
	// bypass when the request opts out (use_cache=false)"), so a request
	// that never mentions use_cache still hits the Response Cache.
	UseCache   *bool `json:"use_cache"`
	TTLSeconds int   `json:"ttl_seconds"`
}

func (w queryRequestWire) useCache() bool {
	return w.UseCache == nil || *w.UseCache
}

// handleQuery runs a statement or script and returns its ResultPage (spec
// §6: "POST /query"). The call is bound to the server's request budget and
// registered under its request id so a concurrent DELETE
// /query/{request_id} can cancel it.
func (s *Surface) handleQuery(w http.ResponseWriter, r *http.Request) {
	name, db, err := requireRouting(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	var body queryRequestWire
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, &gwerr.BadRequest{Message: "malformed request body: " + err.Error(), Field: "query"})
		return
	}

	req := gateway.QueryRequest{
		Query:    body.Query,
		Params:   body.Params,
		Sort:     body.Sort,
		Filters:  body.Filters,
		Page:     rewrite.Page{Page: body.Page, PageSize: body.PageSize},
		UseCache: body.useCache(),
		TTL:      time.Duration(body.TTLSeconds) * time.Second,
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestBudget)
	defer cancel()

	id := requestIDFromContext(ctx)
	s.cancels.register(id, cancel)
	defer s.cancels.release(id)

	page, err := s.gw.Query(ctx, name, db, req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleCancelQuery best-effort cancels an in-flight /query call (spec §6:
// "DELETE /query/{request_id}").
func (s *Surface) handleCancelQuery(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("request_id")
	if !s.cancels.cancel(id) {
		writeErr(w, &gwerr.BadRequest{Message: "no in-flight query with that request id", Field: "request_id"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireRouting reads the x-conn-name/x-database headers /prepare and
// /query both require.
func requireRouting(r *http.Request) (string, string, error) {
	name := connName(r)
	db := database(r)
	if name == "" || db == "" {
		return "", "", &gwerr.BadRequest{Message: "x-conn-name and x-database headers are required", Field: "x-conn-name"}
	}
	return name, db, nil
}
