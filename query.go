package dbhandler

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
)

// QueryStmt represents a custom SQL statement written as a template with
// ":name" placeholders
type QueryStmt struct {
	*Statement
	Template string
	Params   Params
}

// Result is the outcome of a custom query. Statements that return rows
// fill Rows; other statements fill RowsAffected and LastInsertID. OK is
// false if the statement failed.
type Result struct {
	OK           bool
	Rows         []Row
	RowsAffected int64
	LastInsertID int64
}

var (
	rowsKeywords = map[string]struct{}{
		"SELECT": {}, "SHOW": {}, "WITH": {}, "DESCRIBE": {}, "DESC": {},
		"EXPLAIN": {}, "PRAGMA": {}, "VALUES": {},
	}
	returningRegexp = regexp.MustCompile(`(?i)\bRETURNING\b`)
	commentRegexp   = regexp.MustCompile(`(?s)^(\s+|--[^\n]*\n?|/\*.*?\*/|\()`)
)

func newQuery(ext sqlx.ExtContext, opts *options, template string, params Params) *QueryStmt {
	return &QueryStmt{
		Statement: newStatement(ext, opts),
		Template:  template,
		Params:    params,
	}
}

// Query creates a new QueryStmt object for the provided template and
// parameters
func (h *Handler) Query(template string, params Params) *QueryStmt {
	return newQuery(h.ext(), h.opts, template, params)
}

// Query creates a new QueryStmt object for the provided template and
// parameters
func (tx *Tx) Query(template string, params Params) *QueryStmt {
	return newQuery(tx.Tx, tx.opts, template, params)
}

func (stmt *QueryStmt) builder() *builder {
	b := &builder{}
	buildTemplate(b, stmt.Template, stmt.Params)
	return b
}

// ToSQL generates the statement's SQL and returns a list of bindings.
func (stmt *QueryStmt) ToSQL(rebind bool) (asSQL string, bindings []interface{}, err error) {
	return stmt.toSQL(stmt.builder(), rebind)
}

// Literal generates the statement's SQL with all parameters rendered
// inline.
func (stmt *QueryStmt) Literal() (string, error) {
	return stmt.builder().literal(stmt.opts)
}

// ReturnsRows reports whether the statement produces a result set: its
// leading keyword is one of SELECT, SHOW, WITH, DESCRIBE, DESC, EXPLAIN,
// PRAGMA or VALUES, or it has a RETURNING clause.
func (stmt *QueryStmt) ReturnsRows() bool {
	return returnsRows(stmt.Template)
}

// Exec executes the statement, returning the standard sql.Result struct
// and an error if the query failed.
func (stmt *QueryStmt) Exec(ctx context.Context) (sql.Result, error) {
	return stmt.exec(ctx, "query", stmt.builder())
}

// GetAll executes the statement and returns all the resulting rows.
func (stmt *QueryStmt) GetAll(ctx context.Context) ([]Row, error) {
	return stmt.getAll(ctx, "query", stmt.builder())
}

// Run executes the statement either as a query or as a command,
// depending on ReturnsRows.
func (stmt *QueryStmt) Run(ctx context.Context) (*Result, error) {
	if stmt.ReturnsRows() {
		rows, err := stmt.GetAll(ctx)
		if err != nil {
			return &Result{}, err
		}
		return &Result{OK: true, Rows: rows}, nil
	}

	res, err := stmt.Exec(ctx)
	if err != nil {
		return &Result{}, err
	}

	result := &Result{OK: true}
	// not every driver supports both
	if n, err := res.RowsAffected(); err == nil {
		result.RowsAffected = n
	}
	if id, err := res.LastInsertId(); err == nil {
		result.LastInsertID = id
	}
	return result, nil
}

func returnsRows(template string) bool {
	for _, seg := range segments(template) {
		if !seg.quoted && returningRegexp.MatchString(seg.text) {
			return true
		}
	}

	rest := template
	for {
		loc := commentRegexp.FindStringIndex(rest)
		if loc == nil {
			break
		}
		rest = rest[loc[1]:]
	}

	end := 0
	for end < len(rest) && isIdentChar(rest[end]) {
		end++
	}
	_, ok := rowsKeywords[strings.ToUpper(rest[:end])]
	return ok
}
