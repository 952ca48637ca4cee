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

package rewrite

import (
	"fmt"
	"strconv"
	"strings"

	"dbc/internal/sqlstmt"
)

// Paginate wraps text (a select-tagged statement) in a CTE that projects
// both the page of rows and a total count, applying req's sort, filters,
// and page bounds to the wrapper rather than the user's text. Placeholders
// introduced by the wrapper continue numbering from firstArgOrdinal, which
// callers set to one past the highest $N already used in text.
//
// Non-select statements are refused: Paginate returns text unchanged and a
// nil Args, matching the "wrapper is a no-op outside select" contract.
func Paginate(tag sqlstmt.Tag, text string, firstArgOrdinal int, req Request) (Result, error) {
	if tag != sqlstmt.TagSelect {
		return Result{Text: text}, nil
	}

	var b strings.Builder
	var args []any
	next := firstArgOrdinal

	fmt.Fprintf(&b, "WITH base AS (%s)\n", text)
	b.WriteString("SELECT (SELECT count(*) FROM base) AS __total, base.*\n")
	b.WriteString("FROM base\n")

	if len(req.Filters) > 0 {
		clauses := make([]string, 0, len(req.Filters))
		for _, f := range req.Filters {
			clause, boundArgs, err := renderFilter(f, &next)
			if err != nil {
				return Result{}, err
			}
			clauses = append(clauses, clause)
			args = append(args, boundArgs...)
		}
		b.WriteString("WHERE ")
		b.WriteString(strings.Join(clauses, " AND "))
		b.WriteString("\n")
	}

	if req.Sort != nil {
		dir := req.Sort.Direction
		if dir != Asc && dir != Desc {
			dir = Asc
		}
		fmt.Fprintf(&b, "ORDER BY %s %s\n", quoteOrdinalColumn(req.Sort.ColumnIdx), dir)
	}

	if req.Page.PageSize != -1 {
		pageSize := req.Page.PageSize
		if pageSize < 1 {
			pageSize = 1
		}
		page := req.Page.Page
		if page < 1 {
			page = 1
		}
		fmt.Fprintf(&b, "LIMIT $%d OFFSET $%d\n", next, next+1)
		args = append(args, pageSize, (page-1)*pageSize)
		next += 2
	}

	return Result{Text: b.String(), Args: args}, nil
}

// quoteOrdinalColumn renders an ORDER BY position matching idx, a zero-based
// output-column index from the request. The wrapper's own SELECT list
// prepends __total, so the source statement's column 0 lands at position 2.
func quoteOrdinalColumn(idx int) string {
	return strconv.Itoa(idx + 2)
}

// renderFilter produces the SQL fragment and bind args for one filter,
// allocating placeholder numbers starting at *next and advancing it.
func renderFilter(f Filter, next *int) (string, []any, error) {
	col := quoteIdent(f.Column)

	switch f.Operator {
	case OpNull:
		return col + " IS NULL", nil, nil
	case OpNotNull:
		return col + " IS NOT NULL", nil, nil
	}

	value, err := coerce(f.Type, f.Value)
	if err != nil {
		return "", nil, err
	}

	placeholder := fmt.Sprintf("$%d", *next)
	*next++

	switch f.Operator {
	case OpEq:
		return fmt.Sprintf("%s = %s", col, placeholder), []any{value}, nil
	case OpNeq:
		return fmt.Sprintf("%s != %s", col, placeholder), []any{value}, nil
	case OpGt:
		return fmt.Sprintf("%s > %s", col, placeholder), []any{value}, nil
	case OpGte:
		return fmt.Sprintf("%s >= %s", col, placeholder), []any{value}, nil
	case OpLt:
		return fmt.Sprintf("%s < %s", col, placeholder), []any{value}, nil
	case OpLte:
		return fmt.Sprintf("%s <= %s", col, placeholder), []any{value}, nil
	case OpLike:
		return fmt.Sprintf("%s LIKE %s", col, placeholder), []any{likePattern(value)}, nil
	case OpNotLike:
		return fmt.Sprintf("%s NOT LIKE %s", col, placeholder), []any{likePattern(value)}, nil
	default:
		return "", nil, fmt.Errorf("rewrite: unknown filter operator %q", f.Operator)
	}
}

func likePattern(value any) string {
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprintf("%v", value)
	}
	return "%" + s + "%"
}

// coerce converts a JSON-decoded filter value to the Go type matching t,
// so the driver binds it with the expected wire format.
func coerce(t ValueType, v any) (any, error) {
	switch t {
	case TypeBoolean:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			return strconv.ParseBool(x)
		default:
			return nil, fmt.Errorf("rewrite: cannot coerce %v to boolean", v)
		}
	case TypeInteger:
		switch x := v.(type) {
		case float64:
			return int64(x), nil
		case string:
			return strconv.ParseInt(x, 10, 64)
		default:
			return nil, fmt.Errorf("rewrite: cannot coerce %v to integer", v)
		}
	case TypeNumeric:
		switch x := v.(type) {
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64), nil
		case string:
			return x, nil
		default:
			return nil, fmt.Errorf("rewrite: cannot coerce %v to numeric", v)
		}
	case TypeTimestamp:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("rewrite: timestamp filter value must be a string, got %T", v)
		}
		return s, nil
	default: // TypeText and anything unrecognized
		return fmt.Sprintf("%v", v), nil
	}
}

// quoteIdent renders name as a double-quoted Postgres identifier, doubling
// any embedded double quotes. Column names reach the rewriter from the
// probed result columns, not raw user input, but the wrapper still never
// interpolates a filter value this way.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Explain wraps text in a JSON-producing EXPLAIN, unless it already begins
// with EXPLAIN ANALYZE, which is preserved verbatim so a user's own ANALYZE
// run is never silently turned into the zero-cost dry-run form.
func Explain(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) >= 7 && strings.EqualFold(trimmed[:7], "explain") {
		rest := strings.TrimSpace(trimmed[7:])
		if len(rest) >= 7 && strings.EqualFold(rest[:7], "analyze") {
			return text
		}
	}
	inner := stripLeadingExplain(trimmed)
	return fmt.Sprintf("EXPLAIN (FORMAT JSON, ANALYZE false) %s", inner)
}

func stripLeadingExplain(trimmed string) string {
	if len(trimmed) >= 7 && strings.EqualFold(trimmed[:7], "explain") {
		return strings.TrimSpace(trimmed[7:])
	}
	return trimmed
}
