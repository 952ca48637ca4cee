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

package respcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"dbc/internal/rewrite"
)

// FingerprintInput is everything about a request that affects its
// result, including the connection/database that Key also carries
// separately (spec: "hash of canonicalised JSON of (connection name, database,
// statement text, params, sort, filters, page, page_size)").
type FingerprintInput struct {
	Connection string          `json:"connection"`
	Database   string          `json:"database"`
	Statement  string          `json:"statement"`
	Params     []any           `json:"params"`
	Sort       *rewrite.Sort   `json:"sort,omitempty"`
	Filters    []rewrite.Filter `json:"filters,omitempty"`
	Page       rewrite.Page    `json:"page"`
}

// Fingerprint hashes the canonical JSON encoding of in. encoding/json
// marshals struct fields in fixed declaration order and map keys sorted,
// so two semantically identical inputs always produce the same digest.
func Fingerprint(in FingerprintInput) (string, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
