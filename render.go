package dbhandler

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/net/html"
)

// NumericPolicy decides what happens when a value that must be numeric
// (a column declared Numeric, or a value forced to Numeric) is not.
type NumericPolicy int

// NumericLoose keeps the longest numeric prefix of the value and drops the
// rest; a value without a numeric prefix becomes 0.
// NumericStrict fails with ErrNotNumeric.
const (
	NumericLoose NumericPolicy = iota
	NumericStrict
)

var mysqlEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `"`, `\"`, "\x00", `\0`)

// Render renders a value as an inline SQL literal using MySQL conventions
// and the loose numeric policy. Collections render as a parenthesized list
// suitable for an IN clause. nil renders as NULL.
//
//	Render(42, Infer)            // 42
//	Render("3.14", Infer)        // 3.14
//	Render(`" OR "1"="1`, Infer) // "\" OR \"1\"=\"1"
//	Render([]int{1, 2, 3}, Infer) // (1,2,3)
func Render(value interface{}, kind Kind) (string, error) {
	return MySQL.Render(value, kind, NumericLoose)
}

// RenderList renders a collection as a parenthesized, comma-joined list of
// literals using MySQL conventions, e.g. (1,2,3) or ("a","b").
func RenderList(value interface{}, kind Kind) (string, error) {
	return MySQL.RenderList(value, kind, NumericLoose)
}

// EscapeString prefixes backslashes, quotes and NUL bytes with a backslash,
// making the string safe inside a MySQL quoted literal.
func EscapeString(s string) string {
	return mysqlEscaper.Replace(s)
}

// StripTags removes HTML and XML tags, comments and doctypes from a string,
// leaving text content as-is (entities are not decoded).
func StripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		}
	}
}

// Sanitize strips tags and drops every rune that is neither graphic nor a
// tab, newline or carriage return.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t', r == '\n', r == '\r':
			return r
		case r == unicode.ReplacementChar, !unicode.IsGraphic(r):
			return -1
		}
		return r
	}, StripTags(s))
}

// coerceNumber converts a value to int64 or float64 according to the
// policy.
func coerceNumber(value interface{}, policy NumericPolicy) (interface{}, error) {
	value = resolveValuer(value)
	switch v := value.(type) {
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		return parseNumber(v, policy)
	case []byte:
		return parseNumber(string(v), policy)
	case time.Time:
		return notNumeric(v, policy)
	}

	if value == nil {
		return notNumeric(value, policy)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return int64(u), nil
		}
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return notNumeric(value, policy)
		}
		return f, nil
	case reflect.String:
		return parseNumber(rv.String(), policy)
	case reflect.Bool:
		if rv.Bool() {
			return int64(1), nil
		}
		return int64(0), nil
	}

	return notNumeric(value, policy)
}

func parseNumber(s string, policy NumericPolicy) (interface{}, error) {
	text := s
	if !numericRegexp.MatchString(s) {
		if policy == NumericStrict {
			return nil, fmt.Errorf("%w: %q", ErrNotNumeric, s)
		}
		text = numericPrefixRegexp.FindString(s)
		if text == "" {
			return int64(0), nil
		}
	}

	text = strings.TrimSpace(text)
	if integerRegexp.MatchString(text) {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i, nil
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return notNumeric(s, policy)
	}
	return f, nil
}

func notNumeric(value interface{}, policy NumericPolicy) (interface{}, error) {
	if policy == NumericStrict {
		return nil, fmt.Errorf("%w: %v", ErrNotNumeric, value)
	}
	return int64(0), nil
}

func formatNumber(n interface{}) string {
	switch v := n.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if a := math.Abs(v); a != 0 && (a < 1e-6 || a >= 1e21) {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "0"
}

// toText converts a scalar to the text a STRING literal is built from.
func toText(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format("2006-01-02 15:04:05.999999")
	case bool:
		if v {
			return "1"
		}
		return "0"
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}
