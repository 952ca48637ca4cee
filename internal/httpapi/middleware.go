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
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gofrs/uuid/v5"

	"dbc/internal/httpmw"
	"dbc/internal/problem"
	"dbc/internal/telemetry"
)

// recoveryMiddleware adapts httpmw.Recovery to write a Problem body instead
// of the teacher's own panic response, since dbc's error surface is
// RFC7807-shaped end to end (spec §7).
func recoveryMiddleware() func(http.Handler) http.Handler {
	return httpmw.Recovery(func(w http.ResponseWriter, r *http.Request, recovered any) {
		problem.Write(w, problem.Internal("internal error"))
	})
}

func telemetryMiddleware(metrics *telemetry.HTTPMetrics) func(http.Handler) http.Handler {
	return httpmw.Telemetry(metrics)
}

type requestIDCtxKey struct{}

// requestIDMiddleware propagates or mints the x-request-id correlating a
// client's /query call with its later DELETE /query/{request_id} cancel
// call (spec §6). An incoming id is trusted as-is; dbc only needs it to be
// unique enough to key the cancellation table, not cryptographically
// meaningful.
func requestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("x-request-id")
			if id == "" {
				generated, err := uuid.NewV4()
				if err != nil {
					problem.Write(w, problem.Internal("generating request id"))
					return
				}
				id = generated.String()
			}
			w.Header().Set("x-request-id", id)
			ctx := context.WithValue(r.Context(), requestIDCtxKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

// validationMiddleware adapts the teacher's generic middleware.OpenAPIValidation
// (middleware/validation.go + validation_helpers.go), rewired to emit dbc's
// own Problem body shape instead of the profile service's.
func validationMiddleware(specFS fs.FS, specPath string) func(http.Handler) http.Handler {
	return openAPIValidation(specFS, specPath,
		func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, statusCode int) {
			errs := extractValidationErrors(err)
			p := problem.New(
				problem.WithTitle(http.StatusText(statusCode)),
				problem.WithStatus(statusCode),
				problem.WithDetail("request failed schema validation"),
				problem.WithType("BadRequest"),
			)
			for _, e := range errs {
				p = applyInvalidParam(p, e.Field, e.Reason)
			}
			problem.Write(w, p)
		},
		func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Error("failed to load OpenAPI spec", slog.Any("error", err))
			problem.Write(w, problem.Internal("server misconfigured"))
		},
	)
}

func applyInvalidParam(p *problem.Problem, field, reason string) *problem.Problem {
	opt := problem.WithInvalidParam(field, reason)
	opt(p)
	return p
}
