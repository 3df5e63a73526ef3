package sqldb

import (
	"database/sql"
	"strings"
	"time"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/Haleralex/userdir/internal/application/procedures"
)

// statement возвращает текст запроса и аргументы вызова для диалекта.
func statement(dialect Dialect, call procedures.Call) (string, []any) {
	switch dialect {
	case MySQL:
		return mysqlStatement(call)
	default:
		return sqlServerStatement(call)
	}
}

// sqlServerStatement: драйвер выполняет RPC, когда текст запроса - имя
// процедуры, а все аргументы именованные.
func sqlServerStatement(call procedures.Call) (string, []any) {
	args := make([]any, 0, len(call.Params))
	for _, p := range call.Params {
		args = append(args, sql.Named(p.BareName(), sqlServerValue(p)))
	}
	return call.Procedure, args
}

// sqlServerValue возвращает значение с типом, который драйвер объявит
// для параметра. NULL тоже типизирован.
func sqlServerValue(p procedures.Param) any {
	switch p.Type {
	case procedures.Varchar:
		if p.IsNull() {
			return sql.NullString{}
		}
		return mssql.VarChar(p.Value.(string))
	case procedures.Int:
		if p.IsNull() {
			return sql.NullInt64{}
		}
		return int64(p.Value.(int))
	case procedures.Date:
		if p.IsNull() {
			return sql.NullTime{}
		}
		return p.Value.(time.Time)
	case procedures.Bit:
		if p.IsNull() {
			return sql.NullBool{}
		}
		return p.Value.(bool)
	case procedures.Varbinary:
		if p.IsNull() {
			return []byte(nil)
		}
		return p.Value.([]byte)
	default:
		return p.Value
	}
}

func mysqlStatement(call procedures.Call) (string, []any) {
	args := make([]any, 0, len(call.Params))
	for _, p := range call.Params {
		if p.IsNull() {
			args = append(args, nil)
			continue
		}
		args = append(args, p.Value)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	return "CALL " + call.Procedure + "(" + placeholders + ")", args
}
