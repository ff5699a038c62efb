package dbhandler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// binding is a value bound to a "?" placeholder. kind is the kind used
// when the value is rendered inline; coerce marks values of columns
// declared Numeric, which are converted to numbers before binding.
type binding struct {
	value  interface{}
	kind   Kind
	coerce bool
}

// builder accumulates the SQL of a statement with "?" placeholders and the
// values bound to them. The same builder produces both the bound form
// (executed) and the literal form (values inlined by the renderer). The
// first error encountered while building is kept and returned by both.
type builder struct {
	sql  strings.Builder
	args []binding
	err  error
}

func (b *builder) write(parts ...string) {
	for _, part := range parts {
		b.sql.WriteString(part)
	}
}

func (b *builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// bind writes a placeholder for a scalar value. kind is the declared kind
// of the value's column, Infer if none.
func (b *builder) bind(value interface{}, kind Kind) {
	b.write("?")
	b.args = append(b.args, binding{value, kind, kind == Numeric})
}

// bindList writes a parenthesized placeholder list for a collection. An
// empty collection is written as (NULL).
func (b *builder) bindList(value interface{}, kind Kind) {
	elems, _ := listElems(value)
	if len(elems) == 0 {
		b.write("(NULL)")
		return
	}

	litKind := kind
	if litKind == Infer {
		litKind = Classify(elems)
	}

	placeholders := make([]string, len(elems))
	for i, elem := range elems {
		if _, nested := listElems(resolveValuer(elem)); nested {
			b.fail(ErrListNotAllowed)
			return
		}
		placeholders[i] = "?"
		b.args = append(b.args, binding{elem, litKind, kind == Numeric})
	}
	b.write("(" + strings.Join(placeholders, ",") + ")")
}

// trusted appends caller-supplied SQL verbatim, binding its values to the
// "?" placeholders it contains.
func (b *builder) trusted(sql string, binds []interface{}) {
	if n := countPlaceholders(sql); n != len(binds) {
		b.fail(fmt.Errorf("%w: %d placeholders, %d bindings", ErrBindCount, n, len(binds)))
		return
	}
	b.write(sql)
	for _, v := range binds {
		b.args = append(b.args, binding{v, Infer, false})
	}
}

// bound returns the SQL with "?" placeholders and the values to bind.
func (b *builder) bound(o *options) (string, []interface{}, error) {
	if b.err != nil {
		return "", nil, b.err
	}

	bindings := make([]interface{}, len(b.args))
	for i, arg := range b.args {
		v := arg.value
		switch {
		case v == nil:
		case arg.coerce:
			n, err := coerceNumber(v, o.policy)
			if err != nil {
				return "", nil, err
			}
			v = n
		case o.stripTags:
			if s, isString := v.(string); isString {
				v = Sanitize(s)
			}
		}
		bindings[i] = v
	}

	return b.sql.String(), bindings, nil
}

// literal returns the SQL with every placeholder replaced by the inline
// rendering of its value.
func (b *builder) literal(o *options) (string, error) {
	if b.err != nil {
		return "", b.err
	}

	return interpolate(b.sql.String(), func(i int) (string, error) {
		if i >= len(b.args) {
			return "", ErrBindCount
		}
		arg := b.args[i]
		return o.dialect.Render(arg.value, arg.kind, o.policy)
	})
}

// segment is a run of SQL text that is either entirely inside a quoted
// region ('...', "..." or `...`) or entirely outside of one.
type segment struct {
	text   string
	quoted bool
}

// segments splits SQL into quoted and unquoted runs. Inside quotes, a
// doubled quote character continues the region, and so does a
// backslash-escaped character in '...' and "..." regions. An unterminated
// quote extends to the end of the input.
func segments(sql string) []segment {
	var segs []segment
	start := 0

	for i := 0; i < len(sql); i++ {
		q := sql[i]
		if q != '\'' && q != '"' && q != '`' {
			continue
		}

		if i > start {
			segs = append(segs, segment{sql[start:i], false})
		}

		j := i + 1
		for j < len(sql) {
			c := sql[j]
			if c == '\\' && q != '`' {
				j += 2
				continue
			}
			if c == q {
				if j+1 < len(sql) && sql[j+1] == q {
					j += 2
					continue
				}
				break
			}
			j++
		}

		end := j + 1
		if end > len(sql) {
			end = len(sql)
		}
		segs = append(segs, segment{sql[i:end], true})
		start = end
		i = end - 1
	}

	if start < len(sql) {
		segs = append(segs, segment{sql[start:], false})
	}

	return segs
}

func countPlaceholders(sql string) (n int) {
	for _, seg := range segments(sql) {
		if !seg.quoted {
			n += strings.Count(seg.text, "?")
		}
	}
	return n
}

// interpolate replaces every "?" outside quoted regions with the output of
// render for its zero-based position.
func interpolate(sql string, render func(i int) (string, error)) (string, error) {
	var out strings.Builder
	out.Grow(len(sql))

	n := 0
	for _, seg := range segments(sql) {
		if seg.quoted {
			out.WriteString(seg.text)
			continue
		}

		rest := seg.text
		for {
			idx := strings.IndexByte(rest, '?')
			if idx == -1 {
				out.WriteString(rest)
				break
			}
			out.WriteString(rest[:idx])

			lit, err := render(n)
			if err != nil {
				return "", err
			}
			out.WriteString(lit)
			n++
			rest = rest[idx+1:]
		}
	}

	return out.String(), nil
}

// rebind converts the "?" placeholders outside quoted regions to the
// placeholder syntax of a sqlx bind type. Quoted text is left untouched.
func rebind(bindType int, sql string) string {
	if bindType == sqlx.QUESTION || bindType == sqlx.UNKNOWN {
		return sql
	}

	out, _ := interpolate(sql, func(i int) (string, error) {
		n := strconv.Itoa(i + 1)
		switch bindType {
		case sqlx.DOLLAR:
			return "$" + n, nil
		case sqlx.NAMED:
			return ":arg" + n, nil
		case sqlx.AT:
			return "@p" + n, nil
		}
		return "?", nil
	})
	return out
}
