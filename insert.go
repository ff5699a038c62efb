package dbhandler

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// InsertStmt represents an INSERT statement of a single row
type InsertStmt struct {
	*Statement
	Table  string
	Values Fields
	Return []string
}

func newInsert(ext sqlx.ExtContext, opts *options, table string) *InsertStmt {
	return &InsertStmt{
		Statement: newStatement(ext, opts),
		Table:     table,
	}
}

// InsertInto creates a new InsertStmt object for the
// provided table
func (h *Handler) InsertInto(table string) *InsertStmt {
	return newInsert(h.ext(), h.opts, table)
}

// InsertInto creates a new InsertStmt object for the
// provided table
func (tx *Tx) InsertInto(table string) *InsertStmt {
	return newInsert(tx.Tx, tx.opts, table)
}

// Set adds a column and the value to insert into it. Columns are
// inserted in the order they were added.
func (stmt *InsertStmt) Set(col string, value interface{}) *InsertStmt {
	stmt.Values = append(stmt.Values, F(col, value))
	return stmt
}

// SetFields adds an ordered list of columns and values
func (stmt *InsertStmt) SetFields(fields Fields) *InsertStmt {
	stmt.Values = append(stmt.Values, fields...)
	return stmt
}

// ValueMap receives a map of columns and values to insert. Columns are
// added in lexical order.
func (stmt *InsertStmt) ValueMap(vals map[string]interface{}) *InsertStmt {
	return stmt.SetFields(FieldsFromMap(vals))
}

// Returning sets a RETURNING clause to receive values back from the
// database once executing the INSERT statement.
func (stmt *InsertStmt) Returning(cols ...string) *InsertStmt {
	stmt.Return = append(stmt.Return, cols...)
	return stmt
}

func (stmt *InsertStmt) builder() *builder {
	b := &builder{}

	table, err := stmt.opts.quoteTable(stmt.Table)
	if err != nil {
		b.fail(err)
		return b
	}
	if len(stmt.Values) == 0 {
		b.fail(ErrNoFields)
		return b
	}

	b.write("INSERT INTO ", table, " (")
	for i, field := range stmt.Values {
		col, err := stmt.opts.quoteColumn(field.Column)
		if err != nil {
			b.fail(err)
			return b
		}
		if i > 0 {
			b.write(", ")
		}
		b.write(col)
	}

	b.write(") VALUES (")
	for i, field := range stmt.Values {
		if _, isList := listElems(resolveValuer(field.Value)); isList {
			b.fail(fmt.Errorf("%w: column %q", ErrListNotAllowed, field.Column))
			return b
		}
		if i > 0 {
			b.write(", ")
		}
		b.bind(field.Value, stmt.opts.kindFor(stmt.Table, field.Column))
	}
	b.write(")")

	for i, name := range stmt.Return {
		col, err := stmt.opts.quoteColumn(name)
		if err != nil {
			b.fail(err)
			return b
		}
		if i == 0 {
			b.write(" RETURNING ")
		} else {
			b.write(", ")
		}
		b.write(col)
	}

	return b
}

// ToSQL generates the INSERT statement's SQL and returns a list of
// bindings. It is used internally by Exec and GetID, but is
// exported if you wish to use it directly.
func (stmt *InsertStmt) ToSQL(rebind bool) (asSQL string, bindings []interface{}, err error) {
	return stmt.toSQL(stmt.builder(), rebind)
}

// Literal generates the INSERT statement's SQL with all values rendered
// inline.
func (stmt *InsertStmt) Literal() (string, error) {
	return stmt.builder().literal(stmt.opts)
}

// Exec executes the INSERT statement, returning the standard
// sql.Result struct and an error if the query failed.
func (stmt *InsertStmt) Exec(ctx context.Context) (res sql.Result, err error) {
	return stmt.exec(ctx, "insert", stmt.builder())
}

// GetAll executes an INSERT statement with a RETURNING clause and
// returns the resulting rows
func (stmt *InsertStmt) GetAll(ctx context.Context) ([]Row, error) {
	return stmt.getAll(ctx, "insert", stmt.builder())
}

// GetID executes the INSERT statement and returns the identifier of the
// inserted row. Dialects that support RETURNING return the handler's
// primary key column; others use the driver's LastInsertId.
func (stmt *InsertStmt) GetID(ctx context.Context) (id int64, err error) {
	if !stmt.opts.dialect.returning {
		res, err := stmt.Exec(ctx)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	withPK := *stmt
	withPK.Return = []string{stmt.opts.primaryKey}
	err = withPK.getRow(ctx, "insert", withPK.builder(), &id)
	return id, err
}
