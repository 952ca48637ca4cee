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

// Package httpapi is the HTTP/WS Surface: it mounts every gateway route on
// a stdlib ServeMux and translates between the wire shapes spec §6 defines
// and the gateway.Gateway/config.Store/registry.Registry calls that back
// them. It owns no business logic of its own beyond request parsing,
// response shaping, and the cross-cutting concerns (request IDs,
// cancellation, validation, rate limiting, telemetry) that apply uniformly
// to every route.
package httpapi

import (
	"io/fs"
	"net/http"
	"time"

	"dbc/internal/config"
	"dbc/internal/gateway"
	ratelimitmw "dbc/internal/httpmw/ratelimit"
	"dbc/internal/registry"
	"dbc/internal/telemetry"
)

var _ interface {
	Register(*http.ServeMux)
	Middlewares() []func(http.Handler) http.Handler
} = (*Surface)(nil)

// Surface is the RegistrableService the gateway mounts on its Server.
type Surface struct {
	gw       *gateway.Gateway
	store    *config.Store
	registry *registry.Registry
	hub      *Hub

	requestBudget time.Duration

	specFS   fs.FS
	specPath string

	metrics    *telemetry.HTTPMetrics
	rateLimits *ratelimitmw.RuntimePolicy

	cancels *cancelRegistry
}

// Option configures a Surface at construction time.
type Option func(*Surface)

// WithMetrics wires OTel HTTP metrics into the Telemetry middleware. Nil
// metrics (the default) makes Telemetry a no-op, matching the teacher's own
// "skip metrics if not configured" convention.
func WithMetrics(m *telemetry.HTTPMetrics) Option {
	return func(s *Surface) { s.metrics = m }
}

// WithRateLimits installs a compiled rate-limit policy. A nil policy (the
// default) means no rate limiting is enforced.
func WithRateLimits(p *ratelimitmw.RuntimePolicy) Option {
	return func(s *Surface) { s.rateLimits = p }
}

// New returns a Surface. specFS/specPath locate the embedded OpenAPI
// document (oapi.FS, oapi.SpecPath) used for request validation.
func New(gw *gateway.Gateway, store *config.Store, reg *registry.Registry, requestBudget time.Duration, specFS fs.FS, specPath string, hubWorkers int, opts ...Option) *Surface {
	s := &Surface{
		gw:            gw,
		store:         store,
		registry:      reg,
		hub:           NewHub(hubWorkers),
		requestBudget: requestBudget,
		specFS:        specFS,
		specPath:      specPath,
		cancels:       newCancelRegistry(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Hub returns the log broadcaster, so cmd/dbc/main.go can tee process logs
// into it (e.g. via io.MultiWriter on the slog handler's writer).
func (s *Surface) Hub() *Hub { return s.hub }

// Register mounts every route spec §6 and SPEC_FULL.md's ambient additions
// define.
func (s *Surface) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /config", s.handleListConfig)
	mux.HandleFunc("PUT /config", s.handleReplaceConfig)

	mux.HandleFunc("GET /connections/{name}", s.handleConnectionInfo)

	mux.HandleFunc("GET /db/databases", s.handleListDatabases)
	mux.HandleFunc("GET /db/schemas", s.handleListSchemas)
	mux.HandleFunc("GET /db/schemas/{schema}/tables", s.handleListTables)
	mux.HandleFunc("GET /db/schemas/{schema}/tables/{table}/columns", s.handleListColumns)
	mux.HandleFunc("GET /db/ddl/schemas/{schema}/{kind}/{name}", s.handleDDL)

	mux.HandleFunc("POST /prepare", s.handlePrepare)
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("DELETE /query/{request_id}", s.handleCancelQuery)

	mux.HandleFunc("GET /ws/logs", s.handleWSLogs)
}

// Middlewares returns the global middleware chain, outermost first: panic
// recovery wraps everything, then request telemetry, then request-id
// propagation, then OpenAPI validation, then rate limiting closest to the
// handlers it protects.
func (s *Surface) Middlewares() []func(http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{
		recoveryMiddleware(),
		telemetryMiddleware(s.metrics),
		requestIDMiddleware(),
		validationMiddleware(s.specFS, s.specPath),
	}
	if s.rateLimits != nil {
		chain = append(chain, ratelimitmw.NewRateLimitMiddleware(s.rateLimits))
	}
	return chain
}
