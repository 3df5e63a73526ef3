// Package procedures describes a stored-procedure call independently of the
// database driver that executes it.
//
// A Call carries the procedure name and an ordered, typed parameter list.
// A Result carries the result sets read back, each as plain column names and
// row values. Drivers translate between these and their own wire types; the
// application layer never sees sql.Rows or pgx.Rows.
package procedures

import (
	"strings"
	"time"

	"github.com/Haleralex/userdir/internal/domain/valueobjects"
)

// DefaultMaxResultSets is how many result sets a call reads unless told otherwise.
const DefaultMaxResultSets = 2

// ParamType is the declared SQL type of a parameter.
type ParamType int

const (
	Varchar ParamType = iota + 1
	Int
	Date
	Bit
	Varbinary
)

// String returns the SQL spelling used in logs and casts.
func (t ParamType) String() string {
	switch t {
	case Varchar:
		return "varchar"
	case Int:
		return "int"
	case Date:
		return "date"
	case Bit:
		return "bit"
	case Varbinary:
		return "varbinary"
	default:
		return "unknown"
	}
}

// Param is one positional argument of a stored call.
//
// Value is nil for SQL NULL, otherwise one of string, int, time.Time, bool
// or []byte matching Type.
type Param struct {
	Name  string // with the leading "@"
	Type  ParamType
	Size  int // declared width for Varchar, 0 otherwise
	Value any
}

// IsNull reports whether the parameter is bound as SQL NULL.
func (p Param) IsNull() bool {
	if p.Value == nil {
		return true
	}
	if b, ok := p.Value.([]byte); ok && b == nil {
		return true
	}
	return false
}

// BareName returns the parameter name without the "@" prefix.
func (p Param) BareName() string {
	return strings.TrimPrefix(p.Name, "@")
}

// Text binds a non-null varchar, clipped to size.
func Text(name string, size int, value string) Param {
	return Param{Name: name, Type: Varchar, Size: size, Value: valueobjects.Clip(value, size)}
}

// NullableText binds a varchar, clipped to size, or NULL when value is nil.
func NullableText(name string, size int, value *string) Param {
	p := Param{Name: name, Type: Varchar, Size: size}
	if value != nil {
		p.Value = valueobjects.Clip(*value, size)
	}
	return p
}

// NullableInt binds an int or NULL.
func NullableInt(name string, value *int) Param {
	p := Param{Name: name, Type: Int}
	if value != nil {
		p.Value = *value
	}
	return p
}

// NullableDate binds a date or NULL.
func NullableDate(name string, value *time.Time) Param {
	p := Param{Name: name, Type: Date}
	if value != nil {
		p.Value = *value
	}
	return p
}

// NullableBit binds a bit or NULL.
func NullableBit(name string, value *bool) Param {
	p := Param{Name: name, Type: Bit}
	if value != nil {
		p.Value = *value
	}
	return p
}

// Binary binds a varbinary. A nil slice is bound as NULL.
func Binary(name string, value []byte) Param {
	p := Param{Name: name, Type: Varbinary}
	if value != nil {
		p.Value = value
	}
	return p
}

// Call is a single stored-procedure invocation.
type Call struct {
	Procedure string
	Params    []Param

	// Label names the call in logs, metrics and spans (e.g. "LISTAR").
	Label string

	// MaxResultSets caps how many non-empty result sets are read.
	// Zero means DefaultMaxResultSets.
	MaxResultSets int

	// SingleRow stops reading after the first row of the first result set.
	SingleRow bool
}

// ResultSetLimit returns the effective number of result sets to read.
func (c Call) ResultSetLimit() int {
	if c.SingleRow {
		return 1
	}
	if c.MaxResultSets <= 0 {
		return DefaultMaxResultSets
	}
	return c.MaxResultSets
}

// ResultSet is one tabular result returned by a call.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (rs ResultSet) Len() int {
	return len(rs.Rows)
}

// Record returns row i as a Record.
func (rs ResultSet) Record(i int) Record {
	return NewRecord(rs.Columns, rs.Rows[i])
}

// Records returns every row as a Record.
func (rs ResultSet) Records() []Record {
	records := make([]Record, 0, len(rs.Rows))
	for i := range rs.Rows {
		records = append(records, rs.Record(i))
	}
	return records
}

// First returns the first row, if any.
func (rs ResultSet) First() (Record, bool) {
	if len(rs.Rows) == 0 {
		return Record{}, false
	}
	return rs.Record(0), true
}

// Result is every result set a call produced, in order.
type Result struct {
	Sets []ResultSet
}

// Set returns result set i, if it was produced.
func (r Result) Set(i int) (ResultSet, bool) {
	if i < 0 || i >= len(r.Sets) {
		return ResultSet{}, false
	}
	return r.Sets[i], true
}

// FirstRow returns the first row of the first result set, if any.
func (r Result) FirstRow() (Record, bool) {
	rs, ok := r.Set(0)
	if !ok {
		return Record{}, false
	}
	return rs.First()
}
