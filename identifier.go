package dbhandler

import (
	"fmt"
	"regexp"
)

var identifierRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidIdentifier reports whether name is a plain SQL identifier, optionally
// qualified (e.g. "users" or "users.email").
func ValidIdentifier(name string) bool {
	return identifierRegexp.MatchString(name)
}

// quoteTable validates a table name against the identifier syntax and the
// table allow-list, and returns it quoted for the dialect.
func (o *options) quoteTable(name string) (string, error) {
	if name == "" {
		return "", ErrNoTable
	}
	if !ValidIdentifier(name) {
		return "", fmt.Errorf("%w: table %q", ErrInvalidIdentifier, name)
	}
	if o.tables != nil {
		if _, ok := o.tables[name]; !ok {
			return "", fmt.Errorf("%w: table %q", ErrIdentifierNotAllowed, name)
		}
	}
	return o.dialect.QuoteIdentifier(name), nil
}

// quoteColumn validates a column name against the identifier syntax and
// the column allow-list, and returns it quoted for the dialect.
func (o *options) quoteColumn(name string) (string, error) {
	if !ValidIdentifier(name) {
		return "", fmt.Errorf("%w: column %q", ErrInvalidIdentifier, name)
	}
	if o.columns != nil {
		if _, ok := o.columns[name]; !ok {
			return "", fmt.Errorf("%w: column %q", ErrIdentifierNotAllowed, name)
		}
	}
	return o.dialect.QuoteIdentifier(name), nil
}
