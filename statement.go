package dbhandler

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SQLStmt is an interface representing a general SQL statement. All
// specific statement types (e.g. SelectStmt, UpdateStmt, etc.) implement
// this interface.
type SQLStmt interface {
	// ToSQL returns the statement's SQL with placeholders and the values
	// to bind to them. With rebind, placeholders use the driver's syntax.
	ToSQL(rebind bool) (asSQL string, bindings []interface{}, err error)

	// Literal returns the statement's SQL with every value rendered
	// inline as an escaped literal.
	Literal() (string, error)
}

// Row is a result row, mapping column names to values. Text columns that
// the driver returns as byte slices are converted to strings.
type Row map[string]interface{}

// Statement is a base struct for all statement types in the library.
type Statement struct {
	// ErrHandlers is a list of error handler functions
	ErrHandlers []func(err error)

	ext  sqlx.ExtContext
	opts *options
}

func newStatement(ext sqlx.ExtContext, opts *options) *Statement {
	return &Statement{
		ErrHandlers: append([]func(err error){}, opts.errHandlers...),
		ext:         ext,
		opts:        opts,
	}
}

// OnError adds an error handler to the statement.
func (stmt *Statement) OnError(handler func(err error)) {
	stmt.ErrHandlers = append(stmt.ErrHandlers, handler)
}

// HandleError receives an error value, and executes all of the statements
// error handlers with it.
func (stmt *Statement) HandleError(err error) {
	if err == nil {
		return
	}
	for _, handler := range stmt.ErrHandlers {
		handler(err)
	}
}

func (stmt *Statement) toSQL(b *builder, rebind bool) (string, []interface{}, error) {
	asSQL, bindings, err := b.bound(stmt.opts)
	if err != nil {
		return "", nil, err
	}
	if rebind {
		asSQL = stmt.rebind(asSQL)
	}
	return asSQL, bindings, nil
}

// rebind converts placeholders to the driver's syntax.
func (stmt *Statement) rebind(asSQL string) string {
	return rebind(sqlx.BindType(stmt.ext.DriverName()), asSQL)
}

func (stmt *Statement) exec(ctx context.Context, op string, b *builder) (sql.Result, error) {
	asSQL, bindings, err := stmt.toSQL(b, true)
	if err != nil {
		stmt.HandleError(err)
		return nil, err
	}
	return stmt.execSQL(ctx, op, asSQL, bindings)
}

func (stmt *Statement) execSQL(ctx context.Context, op, asSQL string, bindings []interface{}) (sql.Result, error) {
	start := time.Now()
	stmt.debug(op, asSQL, bindings)
	res, err := stmt.ext.ExecContext(ctx, asSQL, bindings...)
	stmt.opts.metrics.observe(op, start, err)
	if err != nil {
		err = &QueryError{Err: err, Op: op, Query: asSQL}
		stmt.HandleError(err)
		return nil, err
	}
	return res, nil
}

func (stmt *Statement) getAll(ctx context.Context, op string, b *builder) ([]Row, error) {
	asSQL, bindings, err := stmt.toSQL(b, true)
	if err != nil {
		stmt.HandleError(err)
		return nil, err
	}

	start := time.Now()
	stmt.debug(op, asSQL, bindings)
	result, err := queryRows(ctx, stmt.ext, asSQL, bindings)
	stmt.opts.metrics.observe(op, start, err)
	if err != nil {
		err = &QueryError{Err: err, Op: op, Query: asSQL}
		stmt.HandleError(err)
		return nil, err
	}
	return result, nil
}

func (stmt *Statement) getRow(ctx context.Context, op string, b *builder, dest ...interface{}) error {
	asSQL, bindings, err := stmt.toSQL(b, true)
	if err != nil {
		stmt.HandleError(err)
		return err
	}

	start := time.Now()
	stmt.debug(op, asSQL, bindings)
	err = stmt.ext.QueryRowxContext(ctx, asSQL, bindings...).Scan(dest...)
	stmt.opts.metrics.observe(op, start, err)
	if err != nil {
		err = &QueryError{Err: err, Op: op, Query: asSQL}
		stmt.HandleError(err)
		return err
	}
	return nil
}

func (stmt *Statement) debug(op, asSQL string, bindings []interface{}) {
	stmt.opts.logger.Debug("executing statement",
		zap.String("op", op),
		zap.String("sql", asSQL),
		zap.Int("bindings", len(bindings)))
}

func queryRows(ctx context.Context, q sqlx.QueryerContext, asSQL string, bindings []interface{}) ([]Row, error) {
	rows, err := q.QueryxContext(ctx, asSQL, bindings...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Row{}
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		result = append(result, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func normalizeRow(row map[string]interface{}) Row {
	for col, val := range row {
		if b, isBytes := val.([]byte); isBytes {
			row[col] = string(b)
		}
	}
	return Row(row)
}
