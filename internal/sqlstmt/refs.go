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

var refKeywords = map[string]bool{
	"select": true, "from": true, "join": true, "where": true, "on": true,
	"as": true, "with": true, "and": true, "or": true, "inner": true,
	"left": true, "right": true, "full": true, "outer": true, "cross": true,
	"lateral": true, "group": true, "order": true, "by": true, "having": true,
	"limit": true, "offset": true, "returning": true, "set": true, "values": true,
	"into": true, "using": true, "union": true, "all": true, "distinct": true,
}

// ExtractRefs walks the top-level tokens of stmt and returns the names
// bound by a leading WITH clause, the tables referenced by FROM/JOIN, and a
// map from alias to the table (or CTE) it names. This is a token-level
// heuristic, not a parser: it is good enough to drive editor completion,
// not to validate the statement.
func ExtractRefs(stmt string) (ctes []string, tables []string, aliases map[string]string) {
	toks := tokenize(stmt)
	aliases = make(map[string]string)

	for i := 0; i < len(toks); i++ {
		word := strings.ToLower(toks[i].text)

		switch word {
		case "with":
			i = consumeCTEList(toks, i+1, &ctes, &tables, aliases)
		case "from", "join":
			if i+1 < len(toks) {
				name, alias, next := consumeTableRef(toks, i+1)
				if name != "" {
					tables = append(tables, name)
					if alias != "" {
						aliases[alias] = name
					}
				}
				i = next - 1
			}
		}
	}
	return ctes, tables, aliases
}

type token struct {
	text string
	pos  int
}

// tokenize returns identifier and punctuation tokens found at top level
// (outside strings/comments), dropping whitespace and comments entirely.
func tokenize(src string) []token {
	var toks []token
	s := newScanner(src)
	for s.pos < len(s.src) {
		if s.state != lexCode {
			s.step()
			continue
		}
		c := s.src[s.pos]
		switch {
		case isSpace(c):
			s.pos++
		case isAlpha(c) || c == '_':
			start := s.pos
			for s.pos < len(s.src) && (isAlpha(s.src[s.pos]) || s.src[s.pos] == '_' || (s.src[s.pos] >= '0' && s.src[s.pos] <= '9')) {
				s.pos++
			}
			toks = append(toks, token{text: s.src[start:s.pos], pos: start})
		case c == '.' || c == ',' || c == '(' || c == ')':
			toks = append(toks, token{text: string(c), pos: s.pos})
			s.pos++
		default:
			s.pos++
		}
	}
	return toks
}

// consumeCTEList reads `name [(cols)] AS ( ... ), name2 AS ( ... )` starting
// at idx and returns the index just past the CTE list. Table references
// found inside a CTE body are folded into tables/aliases too.
func consumeCTEList(toks []token, idx int, ctes, tables *[]string, aliases map[string]string) int {
	for idx < len(toks) {
		if isKeyword(toks[idx].text) {
			break
		}
		name := toks[idx]
		*ctes = append(*ctes, name.text)
		idx++

		for idx < len(toks) && toks[idx].text != "as" {
			idx++
		}
		if idx < len(toks) {
			idx++ // past "as"
		}
		if idx < len(toks) && toks[idx].text == "(" {
			bodyStart := idx + 1
			depth := 1
			idx++
			for idx < len(toks) && depth > 0 {
				switch toks[idx].text {
				case "(":
					depth++
				case ")":
					depth--
				}
				idx++
			}
			bodyEnd := idx - 1 // exclude the closing ")"
			scanNestedRefs(toks[bodyStart:bodyEnd], tables, aliases)
		}
		if idx < len(toks) && toks[idx].text == "," {
			idx++
			continue
		}
		break
	}
	return idx
}

// consumeTableRef reads `schema.table [AS] alias` starting at idx and
// returns the qualified table name, the alias (if any), and the index just
// past what it consumed.
func consumeTableRef(toks []token, idx int) (name, alias string, next int) {
	if idx >= len(toks) || isKeyword(toks[idx].text) || toks[idx].text == "(" {
		return "", "", idx
	}
	parts := []string{toks[idx].text}
	idx++
	for idx+1 < len(toks) && toks[idx].text == "." {
		parts = append(parts, toks[idx+1].text)
		idx += 2
	}
	name = strings.Join(parts, ".")

	if idx < len(toks) && strings.ToLower(toks[idx].text) == "as" {
		idx++
	}
	if idx < len(toks) && !isKeyword(toks[idx].text) && toks[idx].text != "," && toks[idx].text != "(" {
		alias = toks[idx].text
		idx++
	}
	return name, alias, idx
}

func isKeyword(word string) bool {
	return refKeywords[strings.ToLower(word)]
}

// scanNestedRefs finds FROM/JOIN table references within a token range (a
// CTE body, typically) without recursing into further WITH clauses.
func scanNestedRefs(toks []token, tables *[]string, aliases map[string]string) {
	for i := 0; i < len(toks); i++ {
		word := strings.ToLower(toks[i].text)
		if word != "from" && word != "join" {
			continue
		}
		name, alias, next := consumeTableRef(toks, i+1)
		if name != "" {
			*tables = append(*tables, name)
			if alias != "" {
				aliases[alias] = name
			}
		}
		i = next - 1
	}
}
