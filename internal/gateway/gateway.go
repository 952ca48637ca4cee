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

package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dbc/internal/annotate"
	"dbc/internal/config"
	"dbc/internal/exec"
	"dbc/internal/gwerr"
	"dbc/internal/pgpool"
	"dbc/internal/probe"
	"dbc/internal/registry"
	"dbc/internal/respcache"
	"dbc/internal/rewrite"
	"dbc/internal/secret"
	"dbc/internal/sqlstmt"
)

// Gateway is the assembled request pipeline. It holds no per-request
// state; every method takes the (connection, database) pair the caller's
// routing headers resolved.
type Gateway struct {
	cfg Config

	registry  *registry.Registry
	pools     *pgpool.Manager
	annotator *annotate.Annotator
	cache     *respcache.Cache
}

// New assembles a Gateway from its already-constructed components.
func New(cfg Config, reg *registry.Registry, pools *pgpool.Manager) (*Gateway, error) {
	annotator, err := annotate.New(cfg.CatalogCacheSize)
	if err != nil {
		return nil, fmt.Errorf("gateway: building column annotator: %w", err)
	}
	cache, err := respcache.New(cfg.CacheMaxEntries, cfg.CacheMaxBytes)
	if err != nil {
		return nil, fmt.Errorf("gateway: building response cache: %w", err)
	}
	return &Gateway{cfg: cfg, registry: reg, pools: pools, annotator: annotator, cache: cache}, nil
}

// acquire resolves connName's credentials and acquires a pool session for
// (connName, database), mapping every failure into the gwerr taxonomy per
// spec §7's propagation rules ("pool and dial errors are Unavailable or
// AuthFailure").
func (g *Gateway) acquire(ctx context.Context, connName, database string) (*pgpool.Session, error) {
	if connName == "" || database == "" {
		return nil, &gwerr.BadRequest{Message: "x-conn-name and x-database are required", Field: "x-conn-name"}
	}

	conn, password, err := g.resolve(ctx, connName)
	if err != nil {
		return nil, err
	}

	session, err := g.pools.Acquire(ctx, connName, conn, password, database)
	if err != nil {
		if errors.Is(err, pgpool.ErrUnavailable) {
			return nil, &gwerr.Unavailable{Message: err.Error()}
		}
		return nil, gwerr.Internalf("acquiring session for %q/%q: %v", connName, database, err)
	}
	return session, nil
}

// resolve wraps registry.Resolve, mapping its plain/sentinel errors into the
// gwerr taxonomy the same way acquire does for pool errors.
func (g *Gateway) resolve(ctx context.Context, connName string) (config.Connection, string, error) {
	conn, password, err := g.registry.Resolve(ctx, connName)
	if err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			return config.Connection{}, "", &gwerr.BadRequest{Message: fmt.Sprintf("unknown connection %q", connName), Field: "x-conn-name"}
		}
		var failed *secret.Failed
		if errors.As(err, &failed) {
			return config.Connection{}, "", &gwerr.AuthFailure{Message: err.Error()}
		}
		return config.Connection{}, "", gwerr.Internalf("resolving connection %q: %v", connName, err)
	}
	return conn, password, nil
}

// AcquireCatalog acquires a pool session for (connName, database) on behalf
// of the `/db/*` catalog routes, which dispatch predefined introspection
// queries directly (spec §4.K) rather than going through the SQL
// Classifier/Rewriter pipeline Query uses. Callers must Release the
// returned session.
func (g *Gateway) AcquireCatalog(ctx context.Context, connName, database string) (*pgpool.Session, error) {
	return g.acquire(ctx, connName, database)
}

// DefaultDatabase returns connName's configured default database, for
// `GET /db/databases` (spec §6: "uses the connection's default database").
func (g *Gateway) DefaultDatabase(ctx context.Context, connName string) (string, error) {
	conn, _, err := g.resolve(ctx, connName)
	if err != nil {
		return "", err
	}
	return conn.Database, nil
}

// ConnectionInfo lazily probes connName's default database and returns the
// server's reported product/version string, for `GET /connections/{name}`
// (spec §6: "{info: "<product> <version>"} probed lazily").
func (g *Gateway) ConnectionInfo(ctx context.Context, connName string) (string, error) {
	conn, _, err := g.resolve(ctx, connName)
	if err != nil {
		return "", err
	}

	session, err := g.acquire(ctx, connName, conn.Database)
	if err != nil {
		return "", err
	}
	defer session.Release()

	st, _ := g.registry.Status(connName, conn.Database)
	version := st.ServerVersion
	if version == "" {
		return "PostgreSQL", nil
	}
	return "PostgreSQL " + version, nil
}

// Statuses returns every (database -> status) pair observed so far for
// connName, for `GET /config`'s per-connection status listing.
func (g *Gateway) Statuses(connName string) map[string]registry.ConnectionStatus {
	return g.registry.StatusesFor(connName)
}

// Query runs req.Query against (connName, database) and returns the
// matching ResultPage, per the K -> C -> D -> E -> F -> G -> H -> I -> J
// pipeline. A script with more than one statement executes every
// statement in order inside one exclusive session (spec §5: "the gateway
// holds the session exclusively from first statement to last in the
// script"); only the final statement is rewritten, probed, annotated, and
// cached — the preceding ones run for their side effects (a session SET,
// a scratch temp table) with the same budget and error handling.
func (g *Gateway) Query(ctx context.Context, connName, database string, req QueryRequest) (exec.Page, error) {
	session, err := g.acquire(ctx, connName, database)
	if err != nil {
		return exec.Page{}, err
	}
	defer session.Release()

	stmts := sqlstmt.Split(req.Query)
	if len(stmts) == 0 {
		return exec.Page{}, &gwerr.BadRequest{Message: "query contains no statements", Field: "query"}
	}

	conn := session.Conn.Conn()

	for _, st := range stmts[:len(stmts)-1] {
		if _, err := conn.Exec(ctx, st.Text); err != nil {
			return exec.Page{}, classifyDriverErr(err)
		}
	}

	target := stmts[len(stmts)-1]
	page, err := g.runTarget(ctx, conn, connName, database, target, req)
	if err != nil {
		return exec.Page{}, err
	}
	return page, nil
}

// runTarget executes the final statement of a script: F/G applied when
// pageable or parameterised, H to execute, I to annotate, J to read
// through and store.
func (g *Gateway) runTarget(ctx context.Context, conn *pgx.Conn, connName, database string, stmt sqlstmt.Statement, req QueryRequest) (exec.Page, error) {
	text := stmt.Text
	innerQuery := stmt.Text
	firstArgOrdinal := len(stmt.Params) + 1

	rewriteResult := rewrite.Result{Text: text}
	if stmt.Tag == sqlstmt.TagSelect {
		var err error
		rewriteResult, err = rewrite.Paginate(stmt.Tag, text, firstArgOrdinal, rewrite.Request{
			Sort:    req.Sort,
			Filters: req.Filters,
			Page:    req.Page,
		})
		if err != nil {
			return exec.Page{}, &gwerr.BadRequest{Message: err.Error(), Field: "filters"}
		}
		text = rewriteResult.Text
	} else if stmt.Tag == sqlstmt.TagExplain {
		text = rewrite.Explain(text)
	}

	probed, err := probe.Describe(ctx, conn, text)
	if err != nil {
		return exec.Page{}, classifyDriverErr(err)
	}

	userArgs, err := exec.CoerceParams(probed.Params[:min(len(probed.Params), len(stmt.Params))], req.Params)
	if err != nil {
		return exec.Page{}, &gwerr.BadRequest{Message: err.Error(), Field: "params"}
	}
	args := append(userArgs, rewriteResult.Args...)

	execReq := exec.Request{
		Tag:        stmt.Tag,
		SQL:        text,
		Args:       args,
		Page:       req.Page,
		Sort:       req.Sort,
		InnerQuery: innerQuery,
	}

	cacheable := stmt.Tag == sqlstmt.TagSelect || stmt.Tag == sqlstmt.TagExplain
	if !cacheable || !req.UseCache {
		return g.executeAndFollowUp(ctx, conn, connName, database, stmt, execReq)
	}

	fp, err := respcache.Fingerprint(respcache.FingerprintInput{
		Connection: connName,
		Database:   database,
		Statement:  stmt.Text,
		Params:     req.Params,
		Sort:       req.Sort,
		Filters:    req.Filters,
		Page:       req.Page,
	})
	if err != nil {
		return exec.Page{}, gwerr.Internalf("fingerprinting request: %v", err)
	}
	key := respcache.Key{Connection: connName, Database: database, Fingerprint: fp}

	ttl := req.TTL
	if ttl <= 0 {
		ttl = g.cfg.DefaultCacheTTL
	}
	if ttl > g.cfg.MaxCacheTTL {
		ttl = g.cfg.MaxCacheTTL
	}

	return g.cache.GetOrLoad(ctx, key, ttl, stmt.Tables, func(ctx context.Context) (exec.Page, error) {
		return g.executeAndFollowUp(ctx, conn, connName, database, stmt, execReq)
	})
}

// executeAndFollowUp runs H, then I, then applies J's write-side
// invalidation rules for non-select statements.
func (g *Gateway) executeAndFollowUp(ctx context.Context, conn *pgx.Conn, connName, database string, stmt sqlstmt.Statement, req exec.Request) (exec.Page, error) {
	page, err := exec.Execute(ctx, conn, req)
	if err != nil {
		return exec.Page{}, err
	}

	if page.Type == "select" && len(page.Columns) > 0 {
		annotateKey := annotate.Key{Connection: connName, Database: database}
		// Annotation failure degrades to unannotated columns rather than
		// failing a successful query.
		_ = g.annotator.Annotate(ctx, conn, annotateKey, page.Columns)
	}

	switch page.Type {
	case "modify-structure":
		g.cache.InvalidateDatabase(connName, database)
		g.annotator.Invalidate(annotate.Key{Connection: connName, Database: database})
	case "modify-data":
		if len(stmt.Tables) == 1 {
			g.cache.InvalidateRelation(connName, database, stmt.Tables[0])
		} else {
			g.cache.InvalidateDatabase(connName, database)
		}
	}

	return page, nil
}

// Prepare runs the Prepare Probe (G) directly, for the /prepare endpoint:
// describe the statement's own declared parameters and result columns
// without rewriting or executing it.
func (g *Gateway) Prepare(ctx context.Context, connName, database, query string) (PrepareResult, error) {
	session, err := g.acquire(ctx, connName, database)
	if err != nil {
		return PrepareResult{}, err
	}
	defer session.Release()

	stmts := sqlstmt.Split(query)
	if len(stmts) == 0 {
		return PrepareResult{}, &gwerr.BadRequest{Message: "query contains no statements", Field: "query"}
	}
	stmt := stmts[len(stmts)-1]

	probed, err := probe.Describe(ctx, session.Conn.Conn(), stmt.Text)
	if err != nil {
		return PrepareResult{}, classifyDriverErr(err)
	}

	params := make([]ParamInfo, len(probed.Params))
	for i, p := range probed.Params {
		declared := ""
		if i < len(stmt.Params) {
			declared = stmt.Params[i].DeclaredName
		}
		params[i] = ParamInfo{Ordinal: p.Ordinal, DeclaredName: declared, OID: p.OID, TypeName: p.TypeName}
	}

	cols := make([]ColumnInfo, len(probed.Columns))
	for i, c := range probed.Columns {
		cols[i] = ColumnInfo{Ordinal: c.Ordinal, Name: c.Name, OID: c.OID, TypeName: c.TypeName}
	}

	return PrepareResult{Params: params, Columns: cols}, nil
}

// classifyDriverErr normalizes an execution/probe-time error from the
// driver, reusing the Executor's own error taxonomy mapping (spec §7:
// "driver errors are PgError").
func classifyDriverErr(err error) error {
	return exec.ClassifyErr(err)
}
