package dbhandler

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DeleteStmt represents a DELETE statement
type DeleteStmt struct {
	*Statement
	Table      string
	Conditions []WhereCondition
}

func newDelete(ext sqlx.ExtContext, opts *options, table string) *DeleteStmt {
	return &DeleteStmt{
		Statement: newStatement(ext, opts),
		Table:     table,
	}
}

// DeleteFrom creates a new DeleteStmt object for the
// provided table
func (h *Handler) DeleteFrom(table string) *DeleteStmt {
	return newDelete(h.ext(), h.opts, table)
}

// DeleteFrom creates a new DeleteStmt object for the
// provided table
func (tx *Tx) DeleteFrom(table string) *DeleteStmt {
	return newDelete(tx.Tx, tx.opts, table)
}

// Where creates one or more WHERE conditions for the DELETE statement.
// If multiple conditions are passed, they are considered AND conditions.
// A DELETE statement without conditions is refused.
func (stmt *DeleteStmt) Where(conds ...WhereCondition) *DeleteStmt {
	stmt.Conditions = append(stmt.Conditions, conds...)
	return stmt
}

func (stmt *DeleteStmt) builder() *builder {
	b := &builder{}

	table, err := stmt.opts.quoteTable(stmt.Table)
	if err != nil {
		b.fail(err)
		return b
	}
	if !hasConditions(stmt.Conditions) {
		b.fail(ErrNoConditions)
		return b
	}

	b.write("DELETE FROM ", table, " WHERE (1 = 1)")
	buildConditions(b, stmt.opts, stmt.Table, stmt.Conditions)
	return b
}

// ToSQL generates the DELETE statement's SQL and returns a list of
// bindings. It is used internally by Exec, but is exported if you
// wish to use it directly.
func (stmt *DeleteStmt) ToSQL(rebind bool) (asSQL string, bindings []interface{}, err error) {
	return stmt.toSQL(stmt.builder(), rebind)
}

// Literal generates the DELETE statement's SQL with all values rendered
// inline.
func (stmt *DeleteStmt) Literal() (string, error) {
	return stmt.builder().literal(stmt.opts)
}

// Exec executes the DELETE statement, returning the standard
// sql.Result struct and an error if the query failed.
func (stmt *DeleteStmt) Exec(ctx context.Context) (res sql.Result, err error) {
	return stmt.exec(ctx, "delete", stmt.builder())
}
