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

// Package sqlstmt is the SQL Classifier: it splits a submitted script into
// statements on top-level semicolons, classifies each by its leading
// keyword, and extracts enough structure (parameters, CTEs, table
// references) to drive the Query Rewriter and editor-side completion
// without a full SQL parser.
package sqlstmt

// Tag is the coarse statement classification used to route a Statement to
// the right downstream handling.
type Tag string

const (
	TagSelect          Tag = "select"
	TagExplain         Tag = "explain"
	TagModifyData      Tag = "modify-data"
	TagModifyStructure Tag = "modify-structure"
	TagUtility         Tag = "utility"
	TagUnknown         Tag = "unknown"
)

// Statement is one classifier output.
type Statement struct {
	// Text is the statement as submitted, trimmed of surrounding whitespace
	// and the trailing semicolon.
	Text string
	// Start and End are inclusive byte offsets of Text within the script
	// that was split.
	Start, End int
	Tag        Tag

	Params  []Parameter
	CTEs    []string
	Tables  []string
	Aliases map[string]string
}

// Parameter is one positional placeholder reference found in a statement.
// It carries no type; the Prepare Probe reports parameter types separately
// from the driver's parameter-description response.
type Parameter struct {
	Ordinal      int
	DeclaredName string
}
