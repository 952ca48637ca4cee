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

	ratelimitmw "dbc/internal/httpmw/ratelimit"
)

// RouteInfo reports the ServeMux pattern stdlib routing matched for r
// (e.g. "GET /db/schemas/{schema}/tables"), which is exactly the Pattern
// the rate-limit policy's Routes are keyed on in appconfig.
func RouteInfo(r *http.Request) ratelimitmw.RouteInfo {
	return ratelimitmw.RouteInfo{
		ID:     ratelimitmw.Pattern(r.Pattern),
		Method: r.Method,
		Path:   r.URL.Path,
	}
}
