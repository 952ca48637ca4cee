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

// ActiveRange returns the inclusive byte range of the statement the cursor
// sits in: the span between the two top-level semicolons (or script ends)
// bracketing cursor, with any whole lines at either end that are blank or
// entirely comment trimmed away.
func ActiveRange(script string, cursor int) (start, end int) {
	bounds := topLevelSemicolons(script)

	segStart, segEnd := 0, len(script)
	for _, semi := range bounds {
		if cursor <= semi {
			segEnd = semi
			break
		}
		segStart = semi + 1
		segEnd = len(script)
	}

	return trimCommentLines(script, segStart, segEnd)
}

// trimCommentLines drops leading and trailing lines of script[from:to) that
// are blank or consist solely of comment, tracking block-comment state
// across line boundaries so a line in the middle of a /* ... */ run is not
// mistaken for code.
func trimCommentLines(script string, from, to int) (start, end int) {
	seg := script[from:to]
	lines := strings.SplitAfter(seg, "\n")

	offsets := make([]int, len(lines))
	pos := from
	for i, l := range lines {
		offsets[i] = pos
		pos += len(l)
	}

	inBlock := false
	meaningful := make([]bool, len(lines))
	for i, l := range lines {
		meaningful[i], inBlock = lineHasCode(l, inBlock)
	}

	firstMeaningful, lastMeaningful := -1, -1
	for i, m := range meaningful {
		if m {
			if firstMeaningful == -1 {
				firstMeaningful = i
			}
			lastMeaningful = i
		}
	}
	if firstMeaningful == -1 {
		return from, from
	}

	lineStart := offsets[firstMeaningful]
	lineEnd := offsets[lastMeaningful] + len(lines[lastMeaningful])

	s, e, ok := trimRange(script, lineStart, min(lineEnd, to))
	if !ok {
		return from, from
	}
	return s, e
}

// lineHasCode reports whether line contains any code outside of comments,
// and returns the block-comment state carried into the next line.
func lineHasCode(line string, inBlock bool) (hasCode bool, stillInBlock bool) {
	i := 0
	for i < len(line) {
		c := line[i]
		if inBlock {
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				inBlock = false
				i += 2
				continue
			}
			i++
			continue
		}
		if isSpace(c) {
			i++
			continue
		}
		if c == '-' && i+1 < len(line) && line[i+1] == '-' {
			break // rest of line is a line comment
		}
		if c == '/' && i+1 < len(line) && line[i+1] == '*' {
			inBlock = true
			i += 2
			continue
		}
		hasCode = true
		i++
	}
	return hasCode, inBlock
}
