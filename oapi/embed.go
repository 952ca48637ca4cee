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

// Package oapi embeds the gateway's own OpenAPI document so the binary
// carries its request-validation schema without a runtime file dependency.
package oapi

import "embed"

//go:embed dbc-api-spec.yaml
var FS embed.FS

// SpecPath is the embedded document's path, passed with FS to
// httpapi.New(..., oapi.FS, oapi.SpecPath, ...).
const SpecPath = "dbc-api-spec.yaml"
