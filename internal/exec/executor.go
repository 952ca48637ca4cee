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
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"dbc/internal/gwerr"
	"dbc/internal/probe"
	"dbc/internal/rewrite"
	"dbc/internal/sqlstmt"
)

// Request is everything the Executor needs to run one statement: the
// already-rewritten SQL text and args, the statement's classification, and
// the pagination/sort context needed to shape a select response.
type Request struct {
	Tag  sqlstmt.Tag
	SQL  string
	Args []any

	// Page and Sort echo the request back into a select response;
	// InnerQuery is the original (unwrapped) statement text for explain.
	Page       rewrite.Page
	Sort       *rewrite.Sort
	InnerQuery string
}

// Execute runs req against conn and returns the matching ResultPage
// variant, or a gwerr-taxonomy error.
func Execute(ctx context.Context, conn *pgx.Conn, req Request) (Page, error) {
	switch req.Tag {
	case sqlstmt.TagSelect, sqlstmt.TagExplain:
		return executeQuery(ctx, conn, req)
	case sqlstmt.TagModifyData:
		return executeModifyData(ctx, conn, req)
	case sqlstmt.TagModifyStructure, sqlstmt.TagUtility:
		return executeModifyStructure(ctx, conn, req)
	default:
		return Page{}, &gwerr.BadRequest{Message: "cannot execute a statement of unknown kind"}
	}
}

func executeQuery(ctx context.Context, conn *pgx.Conn, req Request) (Page, error) {
	rows, err := conn.Query(ctx, req.SQL, req.Args...)
	if err != nil {
		return Page{}, classifyErr(err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()

	var rawRows [][]any
	var total int64
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return Page{}, classifyErr(err)
		}
		if req.Tag == sqlstmt.TagSelect && len(vals) > 0 {
			if t, ok := vals[0].(int64); ok {
				total = t
			}
			vals = vals[1:]
		}
		rawRows = append(rawRows, vals)
	}
	if err := rows.Err(); err != nil {
		return Page{}, classifyErr(err)
	}

	if req.Tag == sqlstmt.TagExplain {
		var plan any
		if len(rawRows) > 0 && len(rawRows[0]) > 0 {
			plan = toJSONCell(rawRows[0][0])
		}
		return Page{Type: "explain", Plan: plan, Query: req.InnerQuery}, nil
	}

	cols := buildColumns(fds, 1) // skip the synthetic __total column
	decoded := make([][]any, len(rawRows))
	for i, r := range rawRows {
		decoded[i] = decodeRow(r)
	}

	pageSize := req.Page.PageSize
	page := req.Page.Page
	totalPages := int64(1)
	if pageSize > 0 {
		totalPages = (total + int64(pageSize) - 1) / int64(pageSize)
		if totalPages < 1 {
			totalPages = 1
		}
	}

	return Page{
		Type:       "select",
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
		Sort:       req.Sort,
		Columns:    cols,
		Rows:       decoded,
	}, nil
}

func executeModifyData(ctx context.Context, conn *pgx.Conn, req Request) (Page, error) {
	ct, err := conn.Exec(ctx, req.SQL, req.Args...)
	if err != nil {
		return Page{}, classifyErr(err)
	}
	return Page{Type: "modify-data", AffectedRows: ct.RowsAffected()}, nil
}

func executeModifyStructure(ctx context.Context, conn *pgx.Conn, req Request) (Page, error) {
	_, err := conn.Exec(ctx, req.SQL, req.Args...)
	if err != nil {
		return Page{}, classifyErr(err)
	}
	return Page{Type: "modify-structure"}, nil
}

// buildColumns turns field descriptions into output Columns, skipping the
// first skip fields (the rewriter's synthetic __total) and renumbering
// ordinals from zero.
func buildColumns(fds []pgconn.FieldDescription, skip int) []Column {
	if skip > len(fds) {
		skip = len(fds)
	}
	fds = fds[skip:]

	cols := make([]Column, len(fds))
	for i, fd := range fds {
		cols[i] = Column{
			Name:                 fd.Name,
			Type:                 probe.OIDName(fd.DataTypeOID),
			Ordinal:              i,
			TableOID:             fd.TableOID,
			TableAttributeNumber: int16(fd.TableAttributeNumber),
		}
	}
	return cols
}

// ClassifyErr normalizes a driver/context error into the gwerr taxonomy.
// Exported for callers outside this package (the gateway's probe and
// plain-statement execution paths) that need the same mapping Execute
// itself uses.
func ClassifyErr(err error) error {
	return classifyErr(err)
}

// classifyErr normalizes a driver/context error into the gwerr taxonomy.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return &gwerr.Canceled{}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &gwerr.Canceled{}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		out := &gwerr.PgError{
			Severity: pgErr.Severity,
			Code:     pgErr.Code,
			Message:  pgErr.Message,
		}
		if pgErr.Position > 0 {
			pos := int(pgErr.Position)
			out.Position = &pos
		}
		return out
	}

	return gwerr.Internalf("%v", err)
}
