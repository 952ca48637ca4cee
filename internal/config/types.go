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

// Package config is the Config Store: it loads, validates, and persists the
// list of connection definitions the gateway knows about.
package config

import "fmt"

// Connection is a named, persisted database target. It is immutable once a
// pool is active for it; changing it requires the pool manager to tear down
// any pools keyed by its name first.
type Connection struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`

	// Exactly one of Password / PasswordFile must be set.
	Password     *string `json:"password,omitempty"`
	PasswordFile *string `json:"password_file,omitempty"`

	Database string `json:"database"`
	SSL      bool   `json:"ssl"`
}

// PasswordSource describes how to obtain the password for a Connection,
// independent of the JSON wire shape.
type PasswordSource struct {
	// Literal holds the password verbatim when Command is empty.
	Literal string
	// Command is a password-resolver command line, run on demand.
	Command string
}

// validate checks the fields spec §4.A requires regardless of how a
// Connection arrived (Upsert or ReplaceAll): "validation rejects empty
// name, empty username, and a connection that provides neither a literal
// password nor a password command." The password check is left to Source,
// since it also classifies which kind of source was given.
func (c Connection) validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: connection name is required", ErrInvalidConfig)
	}
	if c.Username == "" {
		return fmt.Errorf("%w: connection %q has an empty username", ErrInvalidConfig, c.Name)
	}
	return nil
}

// Source classifies and returns this connection's password source.
func (c Connection) Source() (PasswordSource, error) {
	switch {
	case c.Password != nil && c.PasswordFile != nil:
		return PasswordSource{}, fmt.Errorf("%w: connection %q has both password and password_file", ErrInvalidConfig, c.Name)
	case c.Password != nil:
		return PasswordSource{Literal: *c.Password}, nil
	case c.PasswordFile != nil:
		return PasswordSource{Command: *c.PasswordFile}, nil
	default:
		return PasswordSource{}, fmt.Errorf("%w: connection %q has neither password nor password_file", ErrInvalidConfig, c.Name)
	}
}

// withDefaults fills in the zero-value defaults spec §4.A specifies.
func (c Connection) withDefaults() Connection {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.Database == "" {
		c.Database = "postgres"
	}
	return c
}
