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
	"net/http"

	"dbc/internal/catalog"
	"dbc/internal/gwerr"
	"dbc/internal/pgpool"
)

// handleListDatabases lists every non-template database on the connection's
// server (spec §6: "GET /db/databases uses the connection's default
// database").
func (s *Surface) handleListDatabases(w http.ResponseWriter, r *http.Request) {
	name, err := requireConnName(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	defaultDB, err := s.gw.DefaultDatabase(r.Context(), name)
	if err != nil {
		writeErr(w, err)
		return
	}

	session, err := s.gw.AcquireCatalog(r.Context(), name, defaultDB)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer session.Release()

	names, err := catalog.Databases(r.Context(), session.DB)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// acquireRouted resolves the x-conn-name/x-database headers every
// schema-scoped catalog route requires and acquires a session for them.
func (s *Surface) acquireRouted(r *http.Request) (string, string, *pgpool.Session, error) {
	name := connName(r)
	db := database(r)
	if name == "" || db == "" {
		return "", "", nil, &gwerr.BadRequest{Message: "x-conn-name and x-database headers are required", Field: "x-conn-name"}
	}
	session, err := s.gw.AcquireCatalog(r.Context(), name, db)
	if err != nil {
		return "", "", nil, err
	}
	return name, db, session, nil
}

func (s *Surface) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	_, _, session, err := s.acquireRouted(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer session.Release()

	names, err := catalog.Schemas(r.Context(), session.DB)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Surface) handleListTables(w http.ResponseWriter, r *http.Request) {
	_, _, session, err := s.acquireRouted(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer session.Release()

	tables, err := catalog.Tables(r.Context(), session.DB, r.PathValue("schema"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

func (s *Surface) handleListColumns(w http.ResponseWriter, r *http.Request) {
	_, _, session, err := s.acquireRouted(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer session.Release()

	cols, err := catalog.Columns(r.Context(), session.DB, r.PathValue("schema"), r.PathValue("table"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

func (s *Surface) handleDDL(w http.ResponseWriter, r *http.Request) {
	_, _, session, err := s.acquireRouted(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer session.Release()

	kind := catalog.Kind(r.PathValue("kind"))
	ddl, err := catalog.DDL(r.Context(), session.Conn.Conn(), session.DB, r.PathValue("schema"), kind, r.PathValue("name"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"ddl": ddl})
}
