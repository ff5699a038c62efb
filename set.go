package dbhandler

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SetCmd represents a command assigning a session variable: SET SESSION
// on MySQL and PostgreSQL, PRAGMA on SQLite. Session commands cannot take
// bound parameters, so the value is rendered inline as an escaped
// literal.
type SetCmd struct {
	*Statement
	Name  string
	Value interface{}
}

func newSet(ext sqlx.ExtContext, opts *options, name string, value interface{}) *SetCmd {
	return &SetCmd{
		Statement: newStatement(ext, opts),
		Name:      name,
		Value:     value,
	}
}

// Set creates a new SetCmd object, with the session variable and its
// value.
func (h *Handler) Set(name string, value interface{}) *SetCmd {
	return newSet(h.ext(), h.opts, name, value)
}

// Set creates a new SetCmd object, with the session variable and its
// value.
func (tx *Tx) Set(name string, value interface{}) *SetCmd {
	return newSet(tx.Tx, tx.opts, name, value)
}

func (cmd *SetCmd) builder() *builder {
	b := &builder{}

	if !ValidIdentifier(cmd.Name) {
		b.fail(fmt.Errorf("%w: session variable %q", ErrInvalidIdentifier, cmd.Name))
		return b
	}
	if _, isList := listElems(resolveValuer(cmd.Value)); isList {
		b.fail(fmt.Errorf("%w: session variable %q", ErrListNotAllowed, cmd.Name))
		return b
	}

	lit, err := cmd.opts.dialect.Render(cmd.Value, Infer, cmd.opts.policy)
	if err != nil {
		b.fail(err)
		return b
	}

	b.write(cmd.opts.dialect.setCommand(cmd.Name, lit))
	return b
}

// ToSQL generates the command's SQL. The command never has bindings.
func (cmd *SetCmd) ToSQL(rebind bool) (string, []interface{}, error) {
	asSQL, err := cmd.Literal()
	if err != nil {
		return "", nil, err
	}
	return asSQL, []interface{}{}, nil
}

// Literal generates the command's SQL.
func (cmd *SetCmd) Literal() (string, error) {
	b := cmd.builder()
	if b.err != nil {
		return "", b.err
	}
	return b.sql.String(), nil
}

// Exec executes the command, returning the standard sql.Result struct
// and an error if the query failed.
func (cmd *SetCmd) Exec(ctx context.Context) (res sql.Result, err error) {
	b := cmd.builder()
	if b.err != nil {
		cmd.HandleError(b.err)
		return nil, b.err
	}

	// executed as-is: rebinding would touch "?" inside the literal
	return cmd.execSQL(ctx, "set", b.sql.String(), nil)
}
