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

import (
	"sort"
	"strconv"
)

// ExtractParams scans stmt for positional placeholders ($1, $2, ...)
// outside of string and comment context. A placeholder immediately
// followed by a block comment (optionally after whitespace) picks up that
// comment's contents as its declared name, e.g. `$1 /*user_id*/`; absent
// that convention the name defaults to the ordinal.
func ExtractParams(stmt string) []Parameter {
	seen := make(map[int]string)

	s := newScanner(stmt)
	for s.pos < len(s.src) {
		if s.state == lexCode && s.src[s.pos] == '$' {
			if _, isQuote := dollarQuoteTag(s.src, s.pos); !isQuote {
				digitsStart := s.pos + 1
				i := digitsStart
				for i < len(s.src) && s.src[i] >= '0' && s.src[i] <= '9' {
					i++
				}
				if i > digitsStart {
					ordinal, _ := strconv.Atoi(s.src[digitsStart:i])
					if _, ok := seen[ordinal]; !ok {
						seen[ordinal] = declaredNameAfter(s.src, i)
					}
					s.pos = i
					continue
				}
			}
		}
		s.step()
	}

	ordinals := make([]int, 0, len(seen))
	for o := range seen {
		ordinals = append(ordinals, o)
	}
	sort.Ints(ordinals)

	out := make([]Parameter, 0, len(ordinals))
	for _, o := range ordinals {
		name := seen[o]
		if name == "" {
			name = strconv.Itoa(o)
		}
		out = append(out, Parameter{Ordinal: o, DeclaredName: name})
	}
	return out
}

// declaredNameAfter looks for `/* name */` starting at pos, skipping
// intervening whitespace, and returns the trimmed name if found.
func declaredNameAfter(src string, pos int) string {
	i := pos
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	if i+1 >= len(src) || src[i] != '/' || src[i+1] != '*' {
		return ""
	}
	start := i + 2
	end := start
	for end < len(src) && !(src[end] == '*' && end+1 < len(src) && src[end+1] == '/') {
		end++
	}
	if end >= len(src) {
		return ""
	}
	name := src[start:end]
	for len(name) > 0 && isSpace(name[0]) {
		name = name[1:]
	}
	for len(name) > 0 && isSpace(name[len(name)-1]) {
		name = name[:len(name)-1]
	}
	return name
}
