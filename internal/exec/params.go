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
	"encoding/json"
	"fmt"
	"strconv"

	"dbc/internal/probe"
)

// CoerceParams converts JSON-decoded request values to the Go types pgx
// binds against the probed parameter types. Values is positional,
// 1-indexed by Ordinal in params.
func CoerceParams(params []probe.Param, values []any) ([]any, error) {
	out := make([]any, len(params))
	for i, p := range params {
		var v any
		if i < len(values) {
			v = values[i]
		}
		coerced, err := coerceParam(p.TypeName, v)
		if err != nil {
			return nil, fmt.Errorf("param $%d (%s): %w", p.Ordinal, p.TypeName, err)
		}
		out[i] = coerced
	}
	return out, nil
}

// coerceParam converts v according to typeName, the probed Postgres type
// name. Types this gateway does not special-case fall through to their
// text representation, matching Postgres's own "unknown parameter type"
// behavior of inferring the type from context.
func coerceParam(typeName string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch typeName {
	case "bool":
		return asBool(v)
	case "int2", "int4", "int8", "oid":
		return asInt64(v)
	case "float4", "float8":
		return asFloat64(v)
	case "numeric":
		return asText(v), nil
	case "json", "jsonb":
		return asJSONBytes(v)
	case "bytea":
		return asBytes(v)
	default:
		return asText(v), nil
	}
}

func asBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(x)
	default:
		return false, fmt.Errorf("cannot coerce %T to bool", v)
	}
}

func asInt64(v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		return int64(x), nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("cannot coerce %T to integer", v)
	}
}

func asFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(x, 64)
	default:
		return 0, fmt.Errorf("cannot coerce %T to float", v)
	}
}

// asText renders v as its text form; this is also how numeric values are
// bound, since arbitrary-precision decimals are never turned into float64.
func asText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func asJSONBytes(v any) ([]byte, error) {
	if s, ok := v.(string); ok {
		// Already a JSON-encoded string from the client; pass through
		// verbatim rather than double-encoding it.
		if json.Valid([]byte(s)) {
			return []byte(s), nil
		}
	}
	return json.Marshal(v)
}

func asBytes(v any) ([]byte, error) {
	if b, ok := v.([]byte); ok {
		return b, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %T to bytea", v)
	}
	return base64.StdEncoding.DecodeString(s)
}
