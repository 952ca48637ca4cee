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
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"
)

// validationErrorHandler and specLoadErrorHandler mirror the teacher's
// middleware.ValidationErrorHandler / SpecLoadErrorHandler, kept local so
// this package never imports the app's own middleware package.
type validationErrorHandler func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, statusCode int)
type specLoadErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

var (
	specCacheMu sync.RWMutex
	specCache   = make(map[string]*specCacheEntry)
)

type specCacheEntry struct {
	doc *openapi3.T
	err error
}

func loadSpec(fsys fs.FS, specPath string) (*openapi3.T, error) {
	specCacheMu.RLock()
	if entry, ok := specCache[specPath]; ok {
		specCacheMu.RUnlock()
		return entry.doc, entry.err
	}
	specCacheMu.RUnlock()

	specCacheMu.Lock()
	defer specCacheMu.Unlock()
	if entry, ok := specCache[specPath]; ok {
		return entry.doc, entry.err
	}

	data, err := fs.ReadFile(fsys, specPath)
	if err != nil {
		specCache[specPath] = &specCacheEntry{err: err}
		return nil, err
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	specCache[specPath] = &specCacheEntry{doc: doc, err: err}
	return doc, err
}

// openAPIValidation mirrors the teacher's middleware.OpenAPIValidation,
// validating every request against the gateway's own embedded spec
// (oapi.FS/oapi.SpecPath) instead of the profile service's.
func openAPIValidation(specFS fs.FS, specPath string, errorHandler validationErrorHandler, loadErrorHandler specLoadErrorHandler) func(http.Handler) http.Handler {
	spec, err := loadSpec(specFS, specPath)
	if err != nil {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				loadErrorHandler(w, r, err)
			})
		}
	}

	opts := &nethttpmiddleware.Options{
		Options:               openapi3filter.Options{MultiError: true},
		DoNotValidateServers:  true,
		SilenceServersWarning: true,
		ErrorHandlerWithOpts: func(ctx context.Context, err error, w http.ResponseWriter, r *http.Request, eopts nethttpmiddleware.ErrorHandlerOpts) {
			status := eopts.StatusCode
			if status == 0 {
				status = http.StatusBadRequest
			}
			if hint := inferBodyValidationStatus(err); hint == http.StatusUnprocessableEntity {
				status = http.StatusUnprocessableEntity
			}
			errorHandler(ctx, err, w, r, status)
		},
	}

	return nethttpmiddleware.OapiRequestValidatorWithOptions(spec, opts)
}

// validationError mirrors the teacher's middleware.ValidationError.
type validationError struct {
	Field  string
	Reason string
}

// extractValidationErrors mirrors the teacher's ExtractValidationErrors.
func extractValidationErrors(err error) []validationError {
	var errs []validationError
	switch v := err.(type) {
	case openapi3.MultiError:
		for _, item := range v {
			errs = append(errs, extractValidationErrors(item)...)
		}
	default:
		errs = append(errs, extractSingleError(v))
	}
	return errs
}

func extractSingleError(err error) validationError {
	if re, ok := err.(*openapi3filter.RequestError); ok {
		if se, ok := re.Err.(*openapi3.SchemaError); ok {
			ptr := "/" + strings.Join(se.JSONPointer(), "/")
			if re.Parameter != nil {
				return validationError{Field: re.Parameter.Name, Reason: se.Reason}
			}
			return validationError{Field: extractFieldFromPointer(ptr), Reason: se.Reason}
		}
		if re.Parameter != nil {
			return validationError{Field: re.Parameter.Name, Reason: safeReason(re.Reason)}
		}
		return validationError{Field: "body", Reason: safeReason(re.Reason)}
	}

	if se, ok := err.(*openapi3.SchemaError); ok {
		ptr := "/" + strings.Join(se.JSONPointer(), "/")
		return validationError{Field: extractFieldFromPointer(ptr), Reason: se.Reason}
	}

	if _, ok := err.(*openapi3filter.SecurityRequirementsError); ok {
		return validationError{Field: "authorization", Reason: "missing or invalid credentials"}
	}

	return validationError{Field: "request", Reason: "invalid value"}
}

func extractFieldFromPointer(ptr string) string {
	field := strings.TrimPrefix(ptr, "/")
	if idx := strings.Index(field, "/"); idx >= 0 {
		field = field[:idx]
	}
	if field == "" || field == "0" {
		field = "body"
	}
	return field
}

// inferBodyValidationStatus mirrors the teacher's InferBodyValidationStatus.
func inferBodyValidationStatus(err error) int {
	switch v := err.(type) {
	case *openapi3filter.RequestError:
		if v.RequestBody != nil {
			return http.StatusUnprocessableEntity
		}
		if _, ok := v.Err.(*openapi3.SchemaError); ok {
			return http.StatusUnprocessableEntity
		}
	case openapi3.MultiError:
		for _, item := range v {
			if inferBodyValidationStatus(item) == http.StatusUnprocessableEntity {
				return http.StatusUnprocessableEntity
			}
		}
	case *openapi3.SchemaError:
		return http.StatusUnprocessableEntity
	}
	return 0
}

// safeReason mirrors the teacher's SafeReason: reduce verbose reasons rather
// than reflecting request data back to the client.
func safeReason(reason string) string {
	if reason == "" {
		return "invalid value"
	}
	lower := strings.ToLower(reason)
	if strings.Contains(lower, "doesn't match schema") {
		return "doesn't match schema"
	}
	if strings.Contains(lower, "must be one of") {
		return reason
	}
	return "invalid value"
}
