package dbhandler

import (
	"fmt"
	"strings"
)

// Params maps the names of a template's ":name" placeholders to their
// values. Collection values expand to a parenthesized list, suitable for
// IN clauses.
type Params map[string]interface{}

// templatePart is either literal SQL text or a reference to a parameter.
type templatePart struct {
	text  string
	param string
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// parseTemplate splits a template into text and parameter references. A
// reference is a colon followed by a complete identifier, where the colon
// is not preceded by another colon or an identifier character (so "::int"
// casts and "a:b" are text). Quoted regions are always text. Positional
// "?" placeholders are not allowed outside quoted regions.
func parseTemplate(sql string) ([]templatePart, error) {
	var parts []templatePart
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, templatePart{text: text.String()})
			text.Reset()
		}
	}

	for _, seg := range segments(sql) {
		if seg.quoted {
			text.WriteString(seg.text)
			continue
		}

		s := seg.text
		for i := 0; i < len(s); i++ {
			c := s[i]
			if c == '?' {
				return nil, ErrPositionalParam
			}

			if c != ':' || i+1 >= len(s) || !isIdentStart(s[i+1]) {
				text.WriteByte(c)
				continue
			}
			if i > 0 && (s[i-1] == ':' || isIdentChar(s[i-1])) {
				text.WriteByte(c)
				continue
			}

			j := i + 1
			for j < len(s) && isIdentChar(s[j]) {
				j++
			}

			flush()
			parts = append(parts, templatePart{param: s[i+1 : j]})
			i = j - 1
		}
	}
	flush()

	return parts, nil
}

// buildTemplate writes a parsed template to the builder, binding every
// referenced parameter.
func buildTemplate(b *builder, template string, params Params) {
	parts, err := parseTemplate(template)
	if err != nil {
		b.fail(err)
		return
	}

	for _, part := range parts {
		if part.param == "" {
			b.write(part.text)
			continue
		}

		value, ok := params[part.param]
		if !ok {
			b.fail(fmt.Errorf("%w: %q", ErrMissingParam, part.param))
			return
		}

		if _, isList := listElems(resolveValuer(value)); isList {
			b.bindList(value, Infer)
		} else {
			b.bind(value, Infer)
		}
	}
}

// Compose substitutes every ":name" placeholder of the template with the
// inline literal of its value, using MySQL literal conventions and the
// loose numeric policy. Every referenced name must be present in params;
// unused params are ignored.
func Compose(template string, params Params) (string, error) {
	b := &builder{}
	buildTemplate(b, template, params)
	return b.literal(defaultOptions("mysql"))
}

// Bind converts a template with ":name" placeholders into SQL with "?"
// placeholders and the list of values to bind to them, in order.
func Bind(template string, params Params) (string, []interface{}, error) {
	b := &builder{}
	buildTemplate(b, template, params)
	return b.bound(defaultOptions("mysql"))
}
