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

import "net/http"

// handleConnectionInfo probes a connection's default database lazily and
// reports its server product/version (spec §6: "GET /connections/{name}").
func (s *Surface) handleConnectionInfo(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	info, err := s.gw.ConnectionInfo(r.Context(), name)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"info": info})
}
