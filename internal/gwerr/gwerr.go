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

// Package gwerr is the gateway's error taxonomy: every error that reaches
// the HTTP surface is one of these kinds, carried as the `type` field of
// the JSON error body.
package gwerr

import "fmt"

// PgError is a driver-returned SQL error. Position is a 1-based character
// offset within the statement text, when the driver reports one.
type PgError struct {
	Severity string
	Code     string
	Message  string
	Position *int
}

func (e *PgError) Error() string { return e.Message }
func (*PgError) Type() string    { return "PgError" }

// Unavailable reports a pool exhausted or dial failure.
type Unavailable struct {
	Message string
}

func (e *Unavailable) Error() string { return e.Message }
func (*Unavailable) Type() string    { return "Unavailable" }

// AuthFailure reports a password-resolution or handshake failure.
type AuthFailure struct {
	Message string
}

func (e *AuthFailure) Error() string { return e.Message }
func (*AuthFailure) Type() string    { return "AuthFailure" }

// BadRequest reports a malformed body, missing header, or invalid
// pagination/filter shape. Field names the offending field, when known.
type BadRequest struct {
	Message string
	Field   string
}

func (e *BadRequest) Error() string { return e.Message }
func (*BadRequest) Type() string    { return "BadRequest" }

// Canceled reports that the client cancelled the request.
type Canceled struct{}

func (*Canceled) Error() string { return "request canceled" }
func (*Canceled) Type() string  { return "Canceled" }

// InvalidConfig reports a rejected config mutation.
type InvalidConfig struct {
	Message string
}

func (e *InvalidConfig) Error() string { return e.Message }
func (*InvalidConfig) Type() string    { return "InvalidConfig" }

// Internal reports anything else.
type Internal struct {
	Message string
}

func (e *Internal) Error() string { return e.Message }
func (*Internal) Type() string    { return "Internal" }

// Typed is satisfied by every error kind in this package; the HTTP surface
// uses it to pick the `type` discriminator without a type switch per kind.
type Typed interface {
	error
	Type() string
}

var (
	_ Typed = (*PgError)(nil)
	_ Typed = (*Unavailable)(nil)
	_ Typed = (*AuthFailure)(nil)
	_ Typed = (*BadRequest)(nil)
	_ Typed = (*Canceled)(nil)
	_ Typed = (*InvalidConfig)(nil)
	_ Typed = (*Internal)(nil)
)

// Internalf is a convenience constructor mirroring fmt.Errorf.
func Internalf(format string, args ...any) *Internal {
	return &Internal{Message: fmt.Sprintf(format, args...)}
}
