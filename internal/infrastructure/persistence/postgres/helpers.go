package postgres

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Haleralex/userdir/internal/application/procedures"
)

// refcursorOID - OID типа refcursor.
const refcursorOID = 1790

// pgType возвращает имя типа PostgreSQL для явного приведения параметра.
func pgType(t procedures.ParamType) string {
	switch t {
	case procedures.Varchar:
		return "varchar"
	case procedures.Int:
		return "integer"
	case procedures.Date:
		return "date"
	case procedures.Bit:
		return "boolean"
	case procedures.Varbinary:
		return "bytea"
	default:
		return "text"
	}
}

// statement формирует SELECT * FROM fn($1::varchar, ...).
// Приведения нужны, чтобы NULL-параметры выбрали нужную перегрузку.
func statement(call procedures.Call) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(call.Procedure)
	b.WriteByte('(')

	args := make([]any, 0, len(call.Params))
	for i, p := range call.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("::")
		b.WriteString(pgType(p.Type))

		if p.IsNull() {
			args = append(args, nil)
		} else {
			args = append(args, p.Value)
		}
	}
	b.WriteByte(')')

	return b.String(), args
}

// normalize приводит значения pgx к типам, которые понимает procedures.Record.
func normalize(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		if x.NaN || x.InfinityModifier != pgtype.Finite {
			f, _ := x.Float64Value()
			return f.Float64
		}
		return numericString(x)
	case [16]byte:
		return uuid.UUID(x).String()
	default:
		return v
	}
}

// numericString печатает numeric без потери точности ("12.00").
func numericString(n pgtype.Numeric) string {
	if n.Exp >= 0 {
		v := new(big.Int).Set(n.Int)
		v.Mul(v, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil))
		return v.String()
	}

	digits := new(big.Int).Abs(n.Int).String()
	scale := int(-n.Exp)
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}

	s := digits[:len(digits)-scale] + "." + digits[len(digits)-scale:]
	if n.Int.Sign() < 0 {
		s = "-" + s
	}
	return s
}
