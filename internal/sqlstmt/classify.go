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

package sqlstmt

import "strings"

var keywordTags = map[string]Tag{
	"select": TagSelect,
	"with":   TagSelect,
	"values": TagSelect,
	"table":  TagSelect,
	"show":   TagSelect,

	"explain": TagExplain,

	"insert": TagModifyData,
	"update": TagModifyData,
	"delete": TagModifyData,
	"merge":  TagModifyData,
	"copy":   TagModifyData,

	"create":  TagModifyStructure,
	"alter":   TagModifyStructure,
	"drop":    TagModifyStructure,
	"truncate": TagModifyStructure,
	"rename":  TagModifyStructure,
	"comment": TagModifyStructure,
	"grant":   TagModifyStructure,
	"revoke":  TagModifyStructure,
	"reindex": TagModifyStructure,
	"vacuum":  TagModifyStructure,
	"cluster": TagModifyStructure,
	"refresh": TagModifyStructure,

	"begin":     TagUtility,
	"commit":    TagUtility,
	"rollback":  TagUtility,
	"set":       TagUtility,
	"reset":     TagUtility,
	"listen":    TagUtility,
	"notify":    TagUtility,
	"deallocate": TagUtility,
	"prepare":   TagUtility,
	"execute":   TagUtility,
	"call":      TagUtility,
}

// Classify returns the Tag for a single statement's text, based on its
// leading keyword once comments and whitespace are skipped.
func Classify(stmt string) Tag {
	kw := leadingKeyword(stmt)
	if tag, ok := keywordTags[kw]; ok {
		return tag
	}
	return TagUnknown
}

// leadingKeyword returns the lowercased first identifier in stmt, skipping
// leading whitespace and comments.
func leadingKeyword(stmt string) string {
	s := newScanner(stmt)
	for s.pos < len(s.src) {
		switch s.state {
		case lexCode:
			c := s.src[s.pos]
			if isSpace(c) {
				s.step()
				continue
			}
			if c == '-' && s.peek(1) == '-' || c == '/' && s.peek(1) == '*' {
				s.step()
				continue
			}
			return scanIdentifier(s.src, s.pos)
		default:
			s.step()
		}
	}
	return ""
}

// scanIdentifier reads a run of letters starting at pos and returns it
// lowercased.
func scanIdentifier(src string, pos int) string {
	i := pos
	for i < len(src) && (isAlpha(src[i]) || src[i] == '_') {
		i++
	}
	return strings.ToLower(src[pos:i])
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
