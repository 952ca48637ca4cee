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

package probe

import "strconv"

// builtinOIDNames maps the Postgres builtin type OIDs the gateway is
// expected to meet in practice to their textual type names. It is not
// exhaustive; an unrecognized OID degrades to its numeric string, which the
// Executor's decoder treats the same as any other textual type.
var builtinOIDNames = map[uint32]string{
	16:   "bool",
	17:   "bytea",
	18:   "char",
	19:   "name",
	20:   "int8",
	21:   "int2",
	23:   "int4",
	25:   "text",
	26:   "oid",
	114:  "json",
	142:  "xml",
	700:  "float4",
	701:  "float8",
	790:  "money",
	829:  "macaddr",
	869:  "inet",
	1000: "_bool",
	1001: "_bytea",
	1005: "_int2",
	1007: "_int4",
	1009: "_text",
	1015: "_varchar",
	1016: "_int8",
	1021: "_float4",
	1022: "_float8",
	1042: "bpchar",
	1043: "varchar",
	1082: "date",
	1083: "time",
	1114: "timestamp",
	1184: "timestamptz",
	1186: "interval",
	1231: "_numeric",
	1266: "timetz",
	1700: "numeric",
	2249: "record",
	2950: "uuid",
	3802: "jsonb",
	3807: "_jsonb",
}

// OIDName returns the textual type name for a Postgres type OID, falling
// back to its decimal string when the OID is not one this gateway knows by
// name.
func OIDName(oid uint32) string {
	if name, ok := builtinOIDNames[oid]; ok {
		return name
	}
	return strconv.FormatUint(uint64(oid), 10)
}
