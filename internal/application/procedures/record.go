package procedures

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	domainErrors "github.com/Haleralex/userdir/internal/domain/errors"
)

// Record is one row with case-insensitive, column-tolerant access.
//
// A column that is missing from the row and a column holding NULL both read
// as "no value" (nil pointer, nil error). Only a present value that cannot be
// converted is an error.
type Record struct {
	columns []string
	values  []any
}

// NewRecord builds a record from parallel column and value slices.
func NewRecord(columns []string, values []any) Record {
	return Record{columns: columns, values: values}
}

// Columns returns the column names in result order.
func (r Record) Columns() []string {
	return r.columns
}

func (r Record) index(col string) int {
	for i, c := range r.columns {
		if strings.EqualFold(c, col) {
			return i
		}
	}
	return -1
}

// Has reports whether the row has the column, whatever its value.
func (r Record) Has(col string) bool {
	return r.index(col) >= 0
}

// HasColumns reports whether the row has every listed column.
func (r Record) HasColumns(cols ...string) bool {
	for _, c := range cols {
		if !r.Has(c) {
			return false
		}
	}
	return true
}

// Lookup returns the column's value when present and non-null.
func (r Record) Lookup(col string) (any, bool) {
	i := r.index(col)
	if i < 0 || i >= len(r.values) || r.values[i] == nil {
		return nil, false
	}
	return r.values[i], true
}

// String reads a column as text.
func (r Record) String(col string) (*string, error) {
	v, ok := r.Lookup(col)
	if !ok {
		return nil, nil
	}

	var s string
	switch x := v.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	case bool:
		s = strconv.FormatBool(x)
	case time.Time:
		s = x.Format(time.RFC3339)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	return &s, nil
}

// Int reads a column as an integer.
func (r Record) Int(col string) (*int, error) {
	v, ok := r.Lookup(col)
	if !ok {
		return nil, nil
	}

	n, err := toInt(v)
	if err != nil {
		return nil, domainErrors.NewColumnError(col, "int", v, err)
	}
	return &n, nil
}

// Time reads a column as a timestamp.
func (r Record) Time(col string) (*time.Time, error) {
	v, ok := r.Lookup(col)
	if !ok {
		return nil, nil
	}

	t, err := toTime(v)
	if err != nil {
		return nil, domainErrors.NewColumnError(col, "time", v, err)
	}
	return &t, nil
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int8:
		return int(x), nil
	case int16:
		return int(x), nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case uint:
		return int(x), nil
	case uint8:
		return int(x), nil
	case uint16:
		return int(x), nil
	case uint32:
		return int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, strconv.ErrRange
		}
		return int(x), nil
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		return parseInt(x)
	case []byte:
		return parseInt(string(x))
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	// decimal columns arrive as text, e.g. "12.00"
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return floatToInt(f)
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, strconv.ErrRange
	}
	return int(math.RoundToEven(f)), nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func toTime(v any) (time.Time, error) {
	var s string
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return time.Time{}, fmt.Errorf("unsupported type %T", v)
	}

	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}
