package dbhandler

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
)

// Kind is the classification of a value for literal rendering. A value is
// either NUMERIC (rendered unquoted) or STRING (sanitized, escaped and
// quoted). Infer asks the renderer to classify the value itself.
type Kind int

// Infer classifies the value with IsNumeric
// Numeric forces numeric coercion
// String forces string escaping
const (
	Infer Kind = iota
	Numeric
	String
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case Infer:
		return "infer"
	case Numeric:
		return "numeric"
	case String:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var (
	numericRegexp       = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?\s*$`)
	numericPrefixRegexp = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
	integerRegexp       = regexp.MustCompile(`^[+-]?\d+$`)
)

// Field is a single column and the value it holds.
type Field struct {
	Column string
	Value  interface{}
}

// F creates a Field.
func F(col string, value interface{}) Field {
	return Field{col, value}
}

// Fields is an ordered list of column values. Statements generate columns
// in the order they appear here.
type Fields []Field

// FieldsFromMap converts a map to Fields, ordered by column name.
func FieldsFromMap(m map[string]interface{}) Fields {
	cols := make([]string, 0, len(m))
	for col := range m {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	fields := make(Fields, 0, len(cols))
	for _, col := range cols {
		fields = append(fields, Field{col, m[col]})
	}
	return fields
}

// Get returns the value of the first field with the provided column.
func (f Fields) Get(col string) (interface{}, bool) {
	for _, field := range f {
		if field.Column == col {
			return field.Value, true
		}
	}
	return nil, false
}

// Columns returns the column names, in order.
func (f Fields) Columns() []string {
	cols := make([]string, len(f))
	for i, field := range f {
		cols[i] = field.Column
	}
	return cols
}

// IsNumeric reports whether a scalar value looks like a number: a Go
// integer, float or bool, or a string made of an optional sign, digits, an
// optional fraction and an optional exponent, with optional surrounding
// whitespace. nil, NaN and infinities are not numeric.
func IsNumeric(value interface{}) bool {
	value = resolveValuer(value)
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return numericRegexp.MatchString(v)
	case []byte:
		return numericRegexp.Match(v)
	case bool:
		return true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	case reflect.String:
		return numericRegexp.MatchString(rv.String())
	case reflect.Bool:
		return true
	}
	return false
}

// Classify returns Numeric or String for a value. A collection is Numeric
// only if every one of its non-nil elements is numeric. nil classifies as
// String; the renderer handles it before classification.
func Classify(value interface{}) Kind {
	if elems, isList := listElems(value); isList {
		for _, elem := range elems {
			if resolveValuer(elem) == nil {
				continue
			}
			if !IsNumeric(elem) {
				return String
			}
		}
		return Numeric
	}

	if IsNumeric(value) {
		return Numeric
	}
	return String
}

// listElems returns the elements of a slice or array value. Byte slices and
// driver.Valuer implementations are scalars.
func listElems(value interface{}) ([]interface{}, bool) {
	if value == nil {
		return nil, false
	}
	if _, isValuer := value.(driver.Valuer); isValuer {
		return nil, false
	}
	if list, isList := value.([]interface{}); isList {
		return list, true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}

	elems := make([]interface{}, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}
	return elems, true
}

func resolveValuer(value interface{}) interface{} {
	if valuer, ok := value.(driver.Valuer); ok {
		if rv := reflect.ValueOf(valuer); rv.Kind() == reflect.Ptr && rv.IsNil() {
			return nil
		}
		v, err := valuer.Value()
		if err != nil {
			return nil
		}
		return v
	}
	return value
}
