package procedures

import (
	"errors"
	"strings"

	domainErrors "github.com/Haleralex/userdir/internal/domain/errors"
)

// Status-row column names.
const (
	ColumnResult  = "Resultado"
	ColumnMessage = "Mensaje"
)

// StatusSuccess is the Resultado value that means the procedure succeeded.
const StatusSuccess = 1

// ErrNullResult is wrapped in the ColumnError for a status row whose
// Resultado is NULL.
var ErrNullResult = errors.New("value is NULL")

// Shape is the kind of answer a procedure gave.
type Shape int

const (
	// ShapeEmpty means no row came back at all.
	ShapeEmpty Shape = iota
	// ShapeStatus means the first row is a Resultado/Mensaje status row.
	ShapeStatus
	// ShapeRecord means the first row is the data row itself.
	ShapeRecord
)

func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapeStatus:
		return "status"
	case ShapeRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Status is the content of a status row.
type Status struct {
	Code    int
	Message string
}

// OK reports whether the procedure accepted the request.
func (s Status) OK() bool {
	return s.Code == StatusSuccess
}

// Classified is the result of a call, decided once, as a tagged union.
//
//   - ShapeEmpty: neither Status nor Record is set.
//   - ShapeStatus: Status is set; Record is the first row of the second
//     result set when one was returned.
//   - ShapeRecord: Record is the first row of the first result set.
type Classified struct {
	Shape  Shape
	Status Status
	Record *Record
}

// ClassifyLogin sniffs the login procedure's single row.
//
// The row is an error row when it has exactly two columns named Resultado
// and Mensaje, in any order and any letter case. The Resultado value is not
// interpreted: an error row always means rejection.
func ClassifyLogin(res Result) (Classified, error) {
	row, ok := res.FirstRow()
	if !ok {
		return Classified{Shape: ShapeEmpty}, nil
	}

	if isLoginErrorRow(row.Columns()) {
		msg, err := row.String(ColumnMessage)
		if err != nil {
			return Classified{}, err
		}
		return Classified{Shape: ShapeStatus, Status: Status{Message: deref(msg)}}, nil
	}

	return Classified{Shape: ShapeRecord, Record: &row}, nil
}

func isLoginErrorRow(cols []string) bool {
	if len(cols) != 2 {
		return false
	}
	var hasResult, hasMessage bool
	for _, c := range cols {
		switch {
		case strings.EqualFold(c, ColumnResult):
			hasResult = true
		case strings.EqualFold(c, ColumnMessage):
			hasMessage = true
		}
	}
	return hasResult && hasMessage
}

// ClassifyWrite sniffs the answer of a write action.
//
// A first row that has both Resultado and Mensaje (among any other columns)
// is a status row; a NULL Resultado is a ColumnError. When readRecord is
// set, the first row of the second result set becomes the affected record.
// Any other first row is the record itself.
func ClassifyWrite(res Result, readRecord bool) (Classified, error) {
	row, ok := res.FirstRow()
	if !ok {
		return Classified{Shape: ShapeEmpty}, nil
	}

	if !row.HasColumns(ColumnResult, ColumnMessage) {
		return Classified{Shape: ShapeRecord, Record: &row}, nil
	}

	code, err := row.Int(ColumnResult)
	if err != nil {
		return Classified{}, err
	}
	if code == nil {
		return Classified{}, domainErrors.NewColumnError(ColumnResult, "int", nil, ErrNullResult)
	}
	msg, err := row.String(ColumnMessage)
	if err != nil {
		return Classified{}, err
	}

	c := Classified{
		Shape:  ShapeStatus,
		Status: Status{Code: *code, Message: deref(msg)},
	}

	if readRecord {
		if second, ok := res.Set(1); ok {
			if rec, ok := second.First(); ok {
				c.Record = &rec
			}
		}
	}
	return c, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
