package dbhandler

import "errors"

// Sentinel errors for dbhandler. These errors can be checked using
// errors.Is().
var (
	// ErrConnect is returned by Open when the database cannot be reached.
	ErrConnect = errors.New("dbhandler: failed connecting to database")

	// ErrUnsupportedDriver is returned when a configuration names a driver
	// other than mysql, pgx or sqlite3.
	ErrUnsupportedDriver = errors.New("dbhandler: unsupported driver")

	// ErrNoTable is returned when a statement has no table name.
	ErrNoTable = errors.New("dbhandler: no table specified")

	// ErrNoFields is returned when an insert or update has no columns.
	ErrNoFields = errors.New("dbhandler: no fields specified")

	// ErrNoConditions is returned when an update or delete would affect
	// every row of a table.
	ErrNoConditions = errors.New("dbhandler: refusing statement without conditions")

	// ErrInvalidIdentifier is returned when a table or column name is not a
	// plain SQL identifier.
	ErrInvalidIdentifier = errors.New("dbhandler: invalid SQL identifier")

	// ErrIdentifierNotAllowed is returned when an allow-list is configured
	// and an identifier is not on it.
	ErrIdentifierNotAllowed = errors.New("dbhandler: identifier not allowed")

	// ErrNotNumeric is returned under NumericStrict when a value of a
	// numeric column is not a number.
	ErrNotNumeric = errors.New("dbhandler: value is not numeric")

	// ErrInvalidOperator is returned when a condition uses an operator
	// outside the supported comparison set.
	ErrInvalidOperator = errors.New("dbhandler: invalid SQL operator")

	// ErrListNotAllowed is returned when a collection is used where only a
	// scalar fits (INSERT values, UPDATE assignments, SET commands).
	ErrListNotAllowed = errors.New("dbhandler: collection value not allowed here")

	// ErrMissingParam is returned when a template references a :name that
	// has no value.
	ErrMissingParam = errors.New("dbhandler: missing template parameter")

	// ErrPositionalParam is returned when a named template also contains
	// a positional "?" placeholder.
	ErrPositionalParam = errors.New("dbhandler: positional placeholder in named template")

	// ErrBindCount is returned when the number of "?" placeholders in a
	// trusted SQL condition does not match its bindings.
	ErrBindCount = errors.New("dbhandler: placeholder and binding count mismatch")

	// ErrTxInProgress is returned by BeginTransaction when a transaction is
	// already open.
	ErrTxInProgress = errors.New("dbhandler: transaction already in progress")

	// ErrNoTx is returned by CommitTransaction and RollbackTransaction when
	// no transaction is open.
	ErrNoTx = errors.New("dbhandler: no transaction in progress")
)

// QueryError wraps a failed statement with the SQL that was sent to the
// database. Bindings are not kept.
type QueryError struct {
	Err   error
	Op    string
	Query string
}

func (e *QueryError) Error() string {
	return "dbhandler: " + e.Op + " failed: " + e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
