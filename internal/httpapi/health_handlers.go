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

	"dbc/internal/registry"
)

// handleHealthz is a liveness probe: the process is up and answering HTTP.
func (s *Surface) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// handleReadyz is a readiness probe: ready once at least one configured
// pool has reached active, or the registry has zero configured connections
// (spec §6: "GET /readyz"). A connection being unreachable does not by
// itself fail readiness — only every connection being unreachable does.
func (s *Surface) handleReadyz(w http.ResponseWriter, r *http.Request) {
	conns, err := s.store.List()
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if len(conns) == 0 {
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, c := range conns {
		for _, status := range s.gw.Statuses(c.Name) {
			if status.Status == registry.StatusActive {
				w.WriteHeader(http.StatusOK)
				return
			}
		}
	}
	w.WriteHeader(http.StatusServiceUnavailable)
}
