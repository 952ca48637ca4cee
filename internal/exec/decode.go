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

package exec

import (
	"encoding/base64"
	"fmt"
	"time"
)

// toJSONCell converts one value from pgx's default row decoding into the
// gateway's JSON cell model: booleans and numbers pass through as-is
// (arbitrary-precision numerics arrive as a decimal string via their
// Stringer, never as float64), timestamps render as ISO-8601, bytea
// becomes base64 text, jsonb/arrays are already generic Go values that
// encoding/json renders as nested JSON, and anything else falls back to
// its driver-provided textual form.
func toJSONCell(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool, int16, int32, int64, int, float32, float64, string:
		return x
	case []byte:
		return base64.StdEncoding.EncodeToString(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case []any, map[string]any:
		return x
	default:
		if s, ok := v.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("%v", v)
	}
}

// decodeRow converts one driver row (as returned by pgx.Rows.Values) to a
// JSON cell row.
func decodeRow(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = toJSONCell(v)
	}
	return out
}
