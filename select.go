package dbhandler

import (
	"context"
	"strconv"

	"github.com/jmoiron/sqlx"
)

// SelectStmt represents a SELECT statement on a single table
type SelectStmt struct {
	*Statement
	Columns    []string
	Table      string
	Conditions []WhereCondition
	Ordering   []OrderColumn
	LimitTo    int64
	OffsetFrom int64
}

// OrderColumn represents a column in an ORDER BY
// clause (with direction)
type OrderColumn struct {
	Column string
	Desc   bool
}

// Asc creates an OrderColumn for the provided
// column in ascending order
func Asc(col string) OrderColumn {
	return OrderColumn{col, false}
}

// Desc creates an OrderColumn for the provided
// column in descending order
func Desc(col string) OrderColumn {
	return OrderColumn{col, true}
}

func newSelect(ext sqlx.ExtContext, opts *options, cols []string) *SelectStmt {
	return &SelectStmt{
		Statement: newStatement(ext, opts),
		Columns:   append([]string{}, cols...),
	}
}

// Select creates a new SelectStmt object, selecting the provided columns
// (all columns if none are provided). Columns must be plain identifiers.
func (h *Handler) Select(cols ...string) *SelectStmt {
	return newSelect(h.ext(), h.opts, cols)
}

// Select creates a new SelectStmt object, selecting the provided columns
// (all columns if none are provided). Columns must be plain identifiers.
func (tx *Tx) Select(cols ...string) *SelectStmt {
	return newSelect(tx.Tx, tx.opts, cols)
}

// From sets the table to select from
func (stmt *SelectStmt) From(table string) *SelectStmt {
	stmt.Table = table
	return stmt
}

// Where creates one or more WHERE conditions for the SELECT statement.
// If multiple conditions are passed, they are considered AND conditions.
func (stmt *SelectStmt) Where(conditions ...WhereCondition) *SelectStmt {
	stmt.Conditions = append(stmt.Conditions, conditions...)
	return stmt
}

// OrderBy sets an ORDER BY clause for the query. Pass OrderColumn objects
// using the Asc and Desc functions.
func (stmt *SelectStmt) OrderBy(cols ...OrderColumn) *SelectStmt {
	stmt.Ordering = append(stmt.Ordering, cols...)
	return stmt
}

// Limit limits the amount of results returned to the provided value
// (this is a LIMIT clause). Zero or a negative value means no limit.
func (stmt *SelectStmt) Limit(limit int64) *SelectStmt {
	stmt.LimitTo = limit
	return stmt
}

// Offset skips the provided number of results. It only has effect
// together with Limit.
func (stmt *SelectStmt) Offset(start int64) *SelectStmt {
	stmt.OffsetFrom = start
	return stmt
}

func (stmt *SelectStmt) build(columns func(b *builder) error) *builder {
	b := &builder{}

	table, err := stmt.opts.quoteTable(stmt.Table)
	if err != nil {
		b.fail(err)
		return b
	}

	b.write("SELECT ")
	if err := columns(b); err != nil {
		b.fail(err)
		return b
	}
	b.write(" FROM ", table, " WHERE 1 = 1")

	buildConditions(b, stmt.opts, stmt.Table, stmt.Conditions)
	return b
}

func (stmt *SelectStmt) selectColumns(b *builder) error {
	if len(stmt.Columns) == 0 {
		b.write("*")
		return nil
	}
	for i, name := range stmt.Columns {
		col, err := stmt.opts.quoteColumn(name)
		if err != nil {
			return err
		}
		if i > 0 {
			b.write(", ")
		}
		b.write(col)
	}
	return nil
}

func (stmt *SelectStmt) builder() *builder {
	b := stmt.build(stmt.selectColumns)

	for i, order := range stmt.Ordering {
		col, err := stmt.opts.quoteColumn(order.Column)
		if err != nil {
			b.fail(err)
			return b
		}
		if i == 0 {
			b.write(" ORDER BY ")
		} else {
			b.write(", ")
		}
		b.write(col)
		if order.Desc {
			b.write(" DESC")
		} else {
			b.write(" ASC")
		}
	}

	if stmt.LimitTo > 0 {
		b.write(" LIMIT ", strconv.FormatInt(stmt.LimitTo, 10))
		if stmt.OffsetFrom > 0 {
			b.write(" OFFSET ", strconv.FormatInt(stmt.OffsetFrom, 10))
		}
	}

	return b
}

// countBuilder generates the COUNT statement for the same table and
// conditions, disregarding selected columns, ordering and pagination.
func (stmt *SelectStmt) countBuilder(countField string) *builder {
	if countField == "" {
		countField = defaultPrimaryKey
	}
	return stmt.build(func(b *builder) error {
		col, err := stmt.opts.quoteColumn(countField)
		if err != nil {
			return err
		}
		b.write("COUNT(", col, ") AS total")
		return nil
	})
}

// ToSQL generates the SELECT statement's SQL and returns a list of
// bindings. It is used internally by GetAll, but is exported if you
// wish to use it directly.
func (stmt *SelectStmt) ToSQL(rebind bool) (asSQL string, bindings []interface{}, err error) {
	return stmt.toSQL(stmt.builder(), rebind)
}

// Literal generates the SELECT statement's SQL with all values rendered
// inline.
func (stmt *SelectStmt) Literal() (string, error) {
	return stmt.builder().literal(stmt.opts)
}

// GetAll executes the SELECT statement and returns all the resulting
// rows. No matching rows result in an empty slice.
func (stmt *SelectStmt) GetAll(ctx context.Context) ([]Row, error) {
	return stmt.getAll(ctx, "select", stmt.builder())
}

// GetCount executes the SELECT statement disregarding limits, offsets,
// selected columns and ordering; and returns the number of matching rows
// with a non-null countField ("id" if empty). This is useful when
// paginating results.
func (stmt *SelectStmt) GetCount(ctx context.Context, countField string) (count int64, err error) {
	err = stmt.getRow(ctx, "count", stmt.countBuilder(countField), &count)
	return count, err
}
