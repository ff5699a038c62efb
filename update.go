package dbhandler

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UpdateStmt represents an UPDATE statement on a single table
type UpdateStmt struct {
	*Statement
	Table      string
	Updates    Fields
	Conditions []WhereCondition
}

func newUpdate(ext sqlx.ExtContext, opts *options, table string) *UpdateStmt {
	return &UpdateStmt{
		Statement: newStatement(ext, opts),
		Table:     table,
	}
}

// Update creates a new UpdateStmt object for
// the specified table
func (h *Handler) Update(table string) *UpdateStmt {
	return newUpdate(h.ext(), h.opts, table)
}

// Update creates a new UpdateStmt object for
// the specified table
func (tx *Tx) Update(table string) *UpdateStmt {
	return newUpdate(tx.Tx, tx.opts, table)
}

// Set receives the name of a column and a new value. Multiple calls to Set
// can be chained together to modify multiple columns. Set can also be chained
// with calls to SetMap
func (stmt *UpdateStmt) Set(col string, value interface{}) *UpdateStmt {
	stmt.Updates = append(stmt.Updates, F(col, value))
	return stmt
}

// SetMap receives a map of columns and values. Multiple calls to both Set and
// SetMap can be chained to modify multiple columns.
func (stmt *UpdateStmt) SetMap(updates map[string]interface{}) *UpdateStmt {
	stmt.Updates = append(stmt.Updates, FieldsFromMap(updates)...)
	return stmt
}

// Where creates one or more WHERE conditions for the UPDATE statement.
// If multiple conditions are passed, they are considered AND conditions.
// An UPDATE statement without conditions is refused.
func (stmt *UpdateStmt) Where(conditions ...WhereCondition) *UpdateStmt {
	stmt.Conditions = append(stmt.Conditions, conditions...)
	return stmt
}

func (stmt *UpdateStmt) builder() *builder {
	b := &builder{}

	table, err := stmt.opts.quoteTable(stmt.Table)
	if err != nil {
		b.fail(err)
		return b
	}
	if len(stmt.Updates) == 0 {
		b.fail(ErrNoFields)
		return b
	}
	if !hasConditions(stmt.Conditions) {
		b.fail(ErrNoConditions)
		return b
	}

	b.write("UPDATE ", table, " SET ")
	for i, field := range stmt.Updates {
		col, err := stmt.opts.quoteColumn(field.Column)
		if err != nil {
			b.fail(err)
			return b
		}
		if _, isList := listElems(resolveValuer(field.Value)); isList {
			b.fail(fmt.Errorf("%w: column %q", ErrListNotAllowed, field.Column))
			return b
		}
		if i > 0 {
			b.write(", ")
		}
		b.write(col, " = ")
		b.bind(field.Value, stmt.opts.kindFor(stmt.Table, field.Column))
	}

	b.write(" WHERE (1 = 1)")
	buildConditions(b, stmt.opts, stmt.Table, stmt.Conditions)
	return b
}

// ToSQL generates the UPDATE statement's SQL and returns a list of
// bindings. It is used internally by Exec, but is exported if you
// wish to use it directly.
func (stmt *UpdateStmt) ToSQL(rebind bool) (asSQL string, bindings []interface{}, err error) {
	return stmt.toSQL(stmt.builder(), rebind)
}

// Literal generates the UPDATE statement's SQL with all values rendered
// inline.
func (stmt *UpdateStmt) Literal() (string, error) {
	return stmt.builder().literal(stmt.opts)
}

// Exec executes the UPDATE statement, returning the standard
// sql.Result struct and an error if the query failed.
func (stmt *UpdateStmt) Exec(ctx context.Context) (res sql.Result, err error) {
	return stmt.exec(ctx, "update", stmt.builder())
}

// hasConditions reports whether at least one condition will be written
// to the WHERE clause.
func hasConditions(conds []WhereCondition) bool {
	return len(activeConditions(conds)) > 0
}
