package dbhandler

import (
	"fmt"
	"strings"
)

// WhereCondition is an interface describing conditions that can be
// appended to a statement's WHERE clause. Every condition is appended
// with a leading AND after the constant "1 = 1" predicate.
type WhereCondition interface {
	build(b *builder, o *options, table string)
}

// SimpleCondition represents the most basic WHERE condition, where a
// column is compared with a value using an operator (e.g. "=", "<>",
// ">="). A nil value with "=" or "<>" becomes IS NULL or IS NOT NULL.
type SimpleCondition struct {
	Left     string
	Right    interface{}
	Operator string
}

// InCondition represents IN and NOT IN conditions
type InCondition struct {
	NotIn bool
	Left  string
	Right interface{}
}

// NullCondition represents IS NULL and IS NOT NULL conditions
type NullCondition struct {
	Left    string
	NotNull bool
}

// AndOrCondition represents a group of AND or OR conditions, written in
// parentheses. Groups without conditions are left out of the statement.
type AndOrCondition struct {
	Or         bool
	Conditions []WhereCondition
}

// SQLCondition represents a condition written directly in SQL. This is
// the trust boundary of the package: Condition is appended to the
// statement as-is and must never contain user input. Values go in Binds,
// one per "?" placeholder in Condition. A Verbatim condition is appended
// without the leading AND, so it may also carry clauses such as ORDER BY.
type SQLCondition struct {
	Condition string
	Binds     []interface{}
	Verbatim  bool
}

var simpleOperators = map[string]struct{}{
	"=": {}, "<>": {}, "!=": {}, ">": {}, ">=": {}, "<": {}, "<=": {},
	"LIKE": {}, "NOT LIKE": {},
}

// And joins multiple where conditions as an AndOrCondition
// (representing AND conditions). You will use this a lot
// less than Or as passing multiple conditions to Where
// are all AND conditions.
func And(conds ...WhereCondition) AndOrCondition {
	return AndOrCondition{false, conds}
}

// Or joins multiple where conditions as an AndOrCondition
// (representing OR conditions).
func Or(conds ...WhereCondition) AndOrCondition {
	return AndOrCondition{true, conds}
}

// Eq represents a simple equality condition ("=" operator)
func Eq(col string, value interface{}) SimpleCondition {
	return SimpleCondition{col, value, "="}
}

// Ne represents a simple non-equality condition ("<>" operator)
func Ne(col string, value interface{}) SimpleCondition {
	return SimpleCondition{col, value, "<>"}
}

// Gt represents a simple greater-than condition (">" operator)
func Gt(col string, value interface{}) SimpleCondition {
	return SimpleCondition{col, value, ">"}
}

// Gte represents a simple greater-than-or-equals condition (">=" operator)
func Gte(col string, value interface{}) SimpleCondition {
	return SimpleCondition{col, value, ">="}
}

// Lt represents a simple less-than condition ("<" operator)
func Lt(col string, value interface{}) SimpleCondition {
	return SimpleCondition{col, value, "<"}
}

// Lte represents a simple less-than-or-equals condition ("<=" operator)
func Lte(col string, value interface{}) SimpleCondition {
	return SimpleCondition{col, value, "<="}
}

// Like represents a wildcard equality condition ("LIKE" operator)
func Like(col string, value interface{}) SimpleCondition {
	return SimpleCondition{col, value, "LIKE"}
}

// NotLike represents a wildcard non-equality condition ("NOT LIKE" operator)
func NotLike(col string, value interface{}) SimpleCondition {
	return SimpleCondition{col, value, "NOT LIKE"}
}

// In creates an IN condition for matching the value of a column against a
// collection of possible values
func In(col string, values interface{}) InCondition {
	return InCondition{false, col, values}
}

// NotIn creates a NOT IN condition for checking that the value of a column
// is not one of the provided values
func NotIn(col string, values interface{}) InCondition {
	return InCondition{true, col, values}
}

// IsNull represents a simple nullity condition ("IS NULL" operator)
func IsNull(col string) NullCondition {
	return NullCondition{col, false}
}

// IsNotNull represents a simple non-nullity condition ("IS NOT NULL" operator)
func IsNotNull(col string) NullCondition {
	return NullCondition{col, true}
}

// SQLCond creates an SQL condition, allowing to use conditions not
// supported by the structured types. Question marks must be used for
// placeholders in the condition regardless of the database driver.
func SQLCond(condition string, binds ...interface{}) SQLCondition {
	return SQLCondition{condition, binds, false}
}

// ExtraSQL creates a verbatim SQL condition, appended to the statement
// right after "WHERE 1 = 1" with no leading AND (e.g. "AND a > ? ORDER
// BY b"). Like SQLCond, it must never contain user input.
func ExtraSQL(sql string, binds ...interface{}) SQLCondition {
	return SQLCondition{sql, binds, true}
}

// By creates the condition used to match rows by a column's value: IN for
// collections, IS NULL for nil and equality otherwise.
func By(col string, value interface{}) WhereCondition {
	if value == nil {
		return IsNull(col)
	}
	if _, isList := listElems(value); isList {
		return In(col, value)
	}
	return Eq(col, value)
}

func (simple SimpleCondition) build(b *builder, o *options, table string) {
	if _, ok := simpleOperators[simple.Operator]; !ok {
		b.fail(fmt.Errorf("%w: %q", ErrInvalidOperator, simple.Operator))
		return
	}

	col, err := o.quoteColumn(simple.Left)
	if err != nil {
		b.fail(err)
		return
	}

	if resolveValuer(simple.Right) == nil {
		switch simple.Operator {
		case "=":
			b.write(col, " IS NULL")
			return
		case "<>", "!=":
			b.write(col, " IS NOT NULL")
			return
		}
	}

	if _, isList := listElems(simple.Right); isList {
		b.fail(fmt.Errorf("%w: condition on %q", ErrListNotAllowed, simple.Left))
		return
	}

	b.write(col, " ", simple.Operator, " ")
	b.bind(simple.Right, o.kindFor(table, simple.Left))
}

func (in InCondition) build(b *builder, o *options, table string) {
	col, err := o.quoteColumn(in.Left)
	if err != nil {
		b.fail(err)
		return
	}

	b.write(col)
	if in.NotIn {
		b.write(" NOT")
	}
	b.write(" IN ")

	if _, isList := listElems(in.Right); !isList {
		b.bindList([]interface{}{in.Right}, o.kindFor(table, in.Left))
		return
	}
	b.bindList(in.Right, o.kindFor(table, in.Left))
}

func (null NullCondition) build(b *builder, o *options, _ string) {
	col, err := o.quoteColumn(null.Left)
	if err != nil {
		b.fail(err)
		return
	}

	b.write(col)
	if null.NotNull {
		b.write(" IS NOT NULL")
	} else {
		b.write(" IS NULL")
	}
}

// build writes the group's conditions joined by AND or OR. Verbatim SQL
// conditions inside a group are joined like any other condition.
func (andOr AndOrCondition) build(b *builder, o *options, table string) {
	op := " AND "
	if andOr.Or {
		op = " OR "
	}

	b.write("(")
	for i, cond := range activeConditions(andOr.Conditions) {
		if i > 0 {
			b.write(op)
		}
		cond.build(b, o, table)
	}
	b.write(")")
}

func (cond SQLCondition) build(b *builder, _ *options, _ string) {
	b.trusted(strings.TrimSpace(cond.Condition), cond.Binds)
}

// buildConditions appends conditions to a WHERE clause that already holds
// the constant predicate.
func buildConditions(b *builder, o *options, table string, conds []WhereCondition) {
	for _, cond := range activeConditions(conds) {
		if sqlCond, isSQL := cond.(SQLCondition); isSQL && sqlCond.Verbatim {
			b.write(" ")
			sqlCond.build(b, o, table)
			continue
		}
		b.write(" AND ")
		cond.build(b, o, table)
	}
}

// activeConditions drops nil conditions, blank SQL conditions and groups
// without active conditions.
func activeConditions(conds []WhereCondition) []WhereCondition {
	active := make([]WhereCondition, 0, len(conds))
	for _, cond := range conds {
		switch c := cond.(type) {
		case nil:
			continue
		case SQLCondition:
			if isBlank(c.Condition) {
				continue
			}
		case AndOrCondition:
			if len(activeConditions(c.Conditions)) == 0 {
				continue
			}
		}
		active = append(active, cond)
	}
	return active
}

func isBlank(sql string) bool {
	return strings.TrimSpace(sql) == ""
}
