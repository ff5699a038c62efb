package dbhandler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Handler is a wrapper around sqlx.DB (which is a wrapper around sql.DB)
// providing single-table CRUD helpers. While a transaction started with
// BeginTransaction is open, every statement created by the Handler runs
// inside it. A Handler is not safe for concurrent use.
type Handler struct {
	db   *sqlx.DB
	opts *options
	tx   *Tx
}

// Tx is a wrapper around sqlx.Tx (which is a wrapper around sql.Tx)
type Tx struct {
	*sqlx.Tx
	opts *options
}

// New creates a new Handler from an underlying sql.DB object. It requires
// the name of the SQL driver in order to use the correct placeholders and
// dialect when generating SQL.
func New(db *sql.DB, driverName string, opts ...Option) *Handler {
	return Newx(sqlx.NewDb(db, driverName), opts...)
}

// Newx creates a new Handler from an underlying sqlx.DB object
func Newx(db *sqlx.DB, opts ...Option) *Handler {
	o := defaultOptions(db.DriverName())
	for _, opt := range opts {
		opt(o)
	}
	return &Handler{db: db, opts: o}
}

// DB returns the underlying sqlx.DB object
func (h *Handler) DB() *sqlx.DB {
	return h.db
}

// Dialect returns the dialect used to generate SQL
func (h *Handler) Dialect() *Dialect {
	return h.opts.dialect
}

func (h *Handler) ext() sqlx.ExtContext {
	if h.tx != nil {
		return h.tx.Tx
	}
	return h.db
}

// GetTableData returns the rows of a table matching the extra conditions.
// A positive limit adds a LIMIT clause, and a positive offset an OFFSET
// clause along with it. An empty table name, no matching rows and failed
// statements all result in an empty slice.
func (h *Handler) GetTableData(ctx context.Context, table string, limit, offset int64, extra ...WhereCondition) []Row {
	if table == "" {
		return []Row{}
	}

	rows, err := h.Select().
		From(table).
		Where(extra...).
		Limit(limit).
		Offset(offset).
		GetAll(ctx)
	if err != nil {
		h.swallow("get_table_data", table, err)
		return []Row{}
	}
	return rows
}

// GetTableTotal returns the number of rows of a table matching the extra
// conditions, counting the non-null values of countField ("id" if empty).
// An empty table name and failed statements result in 0.
func (h *Handler) GetTableTotal(ctx context.Context, table, countField string, extra ...WhereCondition) int64 {
	if table == "" {
		return 0
	}

	total, err := h.Select().
		From(table).
		Where(extra...).
		GetCount(ctx, countField)
	if err != nil {
		h.swallow("get_table_total", table, err)
		return 0
	}
	return total
}

// InsertData inserts a row into a table and returns its identifier. An
// empty table name, empty data and failed statements result in 0.
func (h *Handler) InsertData(ctx context.Context, table string, data Fields) int64 {
	if table == "" || len(data) == 0 {
		return 0
	}

	id, err := h.InsertInto(table).SetFields(data).GetID(ctx)
	if err != nil {
		h.swallow("insert_data", table, err)
		return 0
	}
	return id
}

// UpdateData updates the rows of a table. Columns of data listed in fields
// are assigned (every column not listed in byFields if fields is empty);
// columns of data listed in byFields select the rows to update, with IN
// for collection values. The statement is refused if no column is
// assigned or no row condition is present. UpdateData returns whether the
// statement succeeded.
func (h *Handler) UpdateData(ctx context.Context, table string, data Fields, fields, byFields []string) bool {
	if table == "" || len(data) == 0 {
		return false
	}

	stmt := h.Update(table)
	for _, field := range data {
		isBy := slices.Contains(byFields, field.Column)
		if slices.Contains(fields, field.Column) || (len(fields) == 0 && !isBy) {
			stmt.Set(field.Column, field.Value)
		}
		if isBy {
			stmt.Where(By(field.Column, field.Value))
		}
	}

	if _, err := stmt.Exec(ctx); err != nil {
		h.swallow("update_data", table, err)
		return false
	}
	return true
}

// DeleteData deletes the rows of a table selected by the columns of data
// listed in byFields, with IN for collection values. The statement is
// refused if no row condition is present. DeleteData returns whether the
// statement succeeded.
func (h *Handler) DeleteData(ctx context.Context, table string, data Fields, byFields []string) bool {
	if table == "" || len(data) == 0 {
		return false
	}

	stmt := h.DeleteFrom(table)
	for _, field := range data {
		if slices.Contains(byFields, field.Column) {
			stmt.Where(By(field.Column, field.Value))
		}
	}

	if _, err := stmt.Exec(ctx); err != nil {
		h.swallow("delete_data", table, err)
		return false
	}
	return true
}

// CustomQuery executes a template with ":name" placeholders, such as
// "SELECT * FROM x WHERE id = :id". Statements returning rows fill the
// result's Rows, others its RowsAffected and LastInsertID. A failed
// statement results in a Result with OK set to false.
func (h *Handler) CustomQuery(ctx context.Context, template string, params Params) *Result {
	res, err := h.Query(template, params).Run(ctx)
	if err != nil {
		h.swallow("custom_query", "", err)
		return &Result{}
	}
	return res
}

// BeginTransaction starts a transaction. Until it is committed or rolled
// back, every statement created by the Handler runs inside it.
func (h *Handler) BeginTransaction(ctx context.Context) error {
	if h.tx != nil {
		return ErrTxInProgress
	}

	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed starting transaction: %w", err)
	}

	h.tx = &Tx{Tx: tx, opts: h.opts}
	return nil
}

// CommitTransaction commits the transaction started with
// BeginTransaction.
func (h *Handler) CommitTransaction() error {
	if h.tx == nil {
		return ErrNoTx
	}

	tx := h.tx
	h.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed committing transaction: %w", err)
	}
	return nil
}

// RollbackTransaction rolls back the transaction started with
// BeginTransaction.
func (h *Handler) RollbackTransaction() error {
	if h.tx == nil {
		return ErrNoTx
	}

	tx := h.tx
	h.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("failed rolling back transaction: %w", err)
	}
	return nil
}

// InTransaction reports whether a transaction started with
// BeginTransaction is open.
func (h *Handler) InTransaction() bool {
	return h.tx != nil
}

// Transactional runs the provided function inside a transaction. The
// function must receive a Tx object, and return an error. If the
// function returns an error, the transaction is automatically rolled
// back. Otherwise, the transaction is committed.
func (h *Handler) Transactional(f func(tx *Tx) error) error {
	return h.TransactionalContext(context.Background(), nil, f)
}

// TransactionalContext runs the provided function inside a transaction. The
// function must receive a Tx object, and return an error. If the
// function returns an error, the transaction is automatically rolled
// back. Otherwise, the transaction is committed.
func (h *Handler) TransactionalContext(ctx context.Context, opts *sql.TxOptions, f func(tx *Tx) error) error {
	tx, err := h.db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed starting transaction: %w", err)
	}

	err = f(&Tx{Tx: tx, opts: h.opts})
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed committing transaction: %w", err)
	}

	return nil
}

// SetSession assigns a session variable (a PRAGMA on SQLite).
func (h *Handler) SetSession(ctx context.Context, name string, value interface{}) error {
	_, err := h.Set(name, value).Exec(ctx)
	return err
}

// Close rolls back an open transaction and closes the database.
func (h *Handler) Close() error {
	if h.tx != nil {
		if err := h.RollbackTransaction(); err != nil {
			h.opts.logger.Warn("rollback on close failed", zap.Error(err))
		}
	}

	if err := h.db.Close(); err != nil {
		return err
	}
	h.opts.logger.Info("database closed", zap.String("driver", h.db.DriverName()))
	return nil
}

// swallow logs a failure that a convenience method reports as a neutral
// result. Bound values are never logged.
func (h *Handler) swallow(op, table string, err error) {
	h.opts.metrics.swallow(op)

	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if table != "" {
		fields = append(fields, zap.String("table", table))
	}

	var queryErr *QueryError
	if errors.As(err, &queryErr) {
		fields = append(fields, zap.String("sql", queryErr.Query))
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		fields = append(fields, zap.Uint16("mysql_code", mysqlErr.Number))
	}

	h.opts.logger.Warn("statement failed", fields...)
}
