package dbhandler

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const defaultPrimaryKey = "id"

// options holds the settings shared by a Handler, its transactions and
// the statements they create.
type options struct {
	dialect    *Dialect
	logger     *zap.Logger
	policy     NumericPolicy
	primaryKey string
	tables     map[string]struct{}
	columns    map[string]struct{}
	kinds      map[string]map[string]Kind
	stripTags  bool
	metrics    *metrics

	errHandlers []func(err error)
}

func defaultOptions(driverName string) *options {
	return &options{
		dialect:    DialectFor(driverName),
		logger:     zap.NewNop(),
		policy:     NumericLoose,
		primaryKey: defaultPrimaryKey,
	}
}

// Option is a functional option for configuring a Handler.
type Option func(*options)

// WithDialect overrides the dialect derived from the driver name.
func WithDialect(d *Dialect) Option {
	return func(o *options) {
		if d != nil {
			o.dialect = d
		}
	}
}

// WithLogger sets the logger. Failures swallowed by the convenience
// methods are logged at WARN level, executed statements at DEBUG level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithNumericPolicy sets how non-numeric values of Numeric columns are
// handled. The default is NumericLoose.
func WithNumericPolicy(policy NumericPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// WithPrimaryKey sets the column returned by INSERT ... RETURNING on
// dialects without LastInsertId support. Defaults to "id".
func WithPrimaryKey(col string) Option {
	return func(o *options) {
		if col != "" {
			o.primaryKey = col
		}
	}
}

// WithAllowedTables restricts the tables statements may reference.
func WithAllowedTables(names ...string) Option {
	return func(o *options) {
		if o.tables == nil {
			o.tables = make(map[string]struct{}, len(names))
		}
		for _, name := range names {
			o.tables[name] = struct{}{}
		}
	}
}

// WithAllowedColumns restricts the columns statements may reference.
func WithAllowedColumns(names ...string) Option {
	return func(o *options) {
		if o.columns == nil {
			o.columns = make(map[string]struct{}, len(names))
		}
		for _, name := range names {
			o.columns[name] = struct{}{}
		}
	}
}

// WithColumnKinds declares the kinds of a table's columns. Values of
// Numeric columns are coerced to numbers (according to the numeric
// policy) before being bound or rendered; values of String columns are
// always rendered as quoted strings.
func WithColumnKinds(table string, kinds map[string]Kind) Option {
	return func(o *options) {
		if o.kinds == nil {
			o.kinds = make(map[string]map[string]Kind)
		}
		if o.kinds[table] == nil {
			o.kinds[table] = make(map[string]Kind, len(kinds))
		}
		for col, kind := range kinds {
			o.kinds[table][col] = kind
		}
	}
}

// WithStripTags enables sanitizing bound string values (stripping tags and
// non-printable characters) before they reach the database.
func WithStripTags(enabled bool) Option {
	return func(o *options) {
		o.stripTags = enabled
	}
}

// WithMetrics registers statement metrics with the provided registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		if reg != nil {
			o.metrics = newMetrics(reg)
		}
	}
}

// WithErrorHandler adds a handler called with every error a statement
// produces, before the error is returned (or swallowed by a convenience
// method).
func WithErrorHandler(handler func(err error)) Option {
	return func(o *options) {
		if handler != nil {
			o.errHandlers = append(o.errHandlers, handler)
		}
	}
}

func (o *options) kindFor(table, col string) Kind {
	if cols, ok := o.kinds[table]; ok {
		if kind, ok := cols[col]; ok {
			return kind
		}
	}
	return Infer
}
