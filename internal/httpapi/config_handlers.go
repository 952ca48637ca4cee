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

	"dbc/internal/config"
	"dbc/internal/gwerr"
	"dbc/internal/registry"
)

// connectionStatusEntry is GET /config's per-connection wire shape: the
// connection's definition (password omitted) plus every per-database
// status the registry has observed for it.
type connectionStatusEntry struct {
	Name     string                                `json:"name"`
	Host     string                                `json:"host"`
	Port     int                                   `json:"port"`
	Username string                                `json:"username"`
	Database string                                `json:"database"`
	SSL      bool                                  `json:"ssl"`
	Statuses map[string]registry.ConnectionStatus `json:"statuses"`
}

// handleListConfig lists every known connection and its per-database
// status (spec §6: "GET /config").
func (s *Surface) handleListConfig(w http.ResponseWriter, r *http.Request) {
	conns, err := s.store.List()
	if err != nil {
		writeErr(w, err)
		return
	}

	out := make([]connectionStatusEntry, len(conns))
	for i, c := range conns {
		out[i] = connectionStatusEntry{
			Name:     c.Name,
			Host:     c.Host,
			Port:     c.Port,
			Username: c.Username,
			Database: c.Database,
			SSL:      c.SSL,
			Statuses: s.gw.Statuses(c.Name),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleReplaceConfig replaces the entire connection list (spec §6: "PUT
// /config replaces the connection list").
func (s *Surface) handleReplaceConfig(w http.ResponseWriter, r *http.Request) {
	var conns []config.Connection
	if err := json.NewDecoder(r.Body).Decode(&conns); err != nil {
		writeErr(w, &gwerr.BadRequest{Message: "malformed connection list: " + err.Error()})
		return
	}

	if err := s.store.ReplaceAll(conns); err != nil {
		writeErr(w, &gwerr.InvalidConfig{Message: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
