package dbhandler

import (
	"fmt"
	"strings"
)

// Dialect holds the SQL conventions of a database server: how identifiers
// and string literals are quoted, how strings are escaped, how the last
// inserted id is obtained and how session variables are set.
type Dialect struct {
	// Name is the name of the dialect (e.g. "mysql")
	Name string

	identQuote  string
	stringQuote string
	escaper     *strings.Replacer
	returning   bool
	setCmd      string
}

// MySQL is the dialect of MySQL and MariaDB servers: backtick identifiers,
// double-quoted backslash-escaped strings.
var MySQL = &Dialect{
	Name:        "mysql",
	identQuote:  "`",
	stringQuote: `"`,
	escaper:     mysqlEscaper,
	setCmd:      "SET SESSION %s = %s",
}

// PostgreSQL is the dialect of PostgreSQL servers: double-quoted
// identifiers, single-quoted strings with doubled quotes, and RETURNING
// for inserted ids.
var PostgreSQL = &Dialect{
	Name:        "postgres",
	identQuote:  `"`,
	stringQuote: "'",
	escaper:     strings.NewReplacer("'", "''", "\x00", ""),
	returning:   true,
	setCmd:      "SET SESSION %s TO %s",
}

// SQLite is the dialect of SQLite databases. SQLite accepts backtick
// identifiers for MySQL compatibility; session settings are PRAGMAs.
var SQLite = &Dialect{
	Name:        "sqlite",
	identQuote:  "`",
	stringQuote: "'",
	escaper:     strings.NewReplacer("'", "''", "\x00", ""),
	setCmd:      "PRAGMA %s = %s",
}

// DialectFor returns the dialect matching a database/sql driver name.
// Unknown drivers get the MySQL dialect.
func DialectFor(driverName string) *Dialect {
	switch driverName {
	case "pgx", "pgx/v5", "postgres", "pq", "cloudsqlpostgres":
		return PostgreSQL
	case "sqlite3", "sqlite":
		return SQLite
	default:
		return MySQL
	}
}

// QuoteIdentifier wraps every dot-separated part of an identifier in the
// dialect's identifier quote. The identifier itself is not escaped; it
// must be validated first.
func (d *Dialect) QuoteIdentifier(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = d.identQuote + part + d.identQuote
	}
	return strings.Join(parts, ".")
}

// QuoteString sanitizes and escapes a string and wraps it in the
// dialect's string quote.
func (d *Dialect) QuoteString(s string) string {
	return d.stringQuote + d.escaper.Replace(Sanitize(s)) + d.stringQuote
}

// Render renders a value as an inline SQL literal. Collections render as
// a parenthesized list (see RenderList). nil renders as NULL. With kind
// Infer the value is classified with Classify.
func (d *Dialect) Render(value interface{}, kind Kind, policy NumericPolicy) (string, error) {
	value = resolveValuer(value)
	if value == nil {
		return "NULL", nil
	}

	if _, isList := listElems(value); isList {
		return d.RenderList(value, kind, policy)
	}

	return d.renderScalar(value, kind, policy)
}

// RenderList renders a collection as a parenthesized, comma-joined list of
// literals. With kind Infer, all elements are rendered Numeric if every one
// of them is numeric, and String otherwise. An empty collection renders as
// (NULL), which matches nothing in an IN clause.
func (d *Dialect) RenderList(value interface{}, kind Kind, policy NumericPolicy) (string, error) {
	elems, isList := listElems(value)
	if !isList {
		elems = []interface{}{value}
	}

	if len(elems) == 0 {
		return "(NULL)", nil
	}

	if kind == Infer {
		kind = Classify(elems)
	}

	parts := make([]string, len(elems))
	for i, elem := range elems {
		elem = resolveValuer(elem)
		if _, nested := listElems(elem); nested {
			return "", ErrListNotAllowed
		}
		if elem == nil {
			parts[i] = "NULL"
			continue
		}

		lit, err := d.renderScalar(elem, kind, policy)
		if err != nil {
			return "", err
		}
		parts[i] = lit
	}

	return "(" + strings.Join(parts, ",") + ")", nil
}

func (d *Dialect) renderScalar(value interface{}, kind Kind, policy NumericPolicy) (string, error) {
	if kind == Infer {
		kind = Classify(value)
	}

	if kind == Numeric {
		n, err := coerceNumber(value, policy)
		if err != nil {
			return "", err
		}
		return formatNumber(n), nil
	}

	return d.QuoteString(toText(value)), nil
}

// setCommand generates the statement assigning a session variable.
func (d *Dialect) setCommand(name, literal string) string {
	return fmt.Sprintf(d.setCmd, name, literal)
}
