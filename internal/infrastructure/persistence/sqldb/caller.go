package sqldb

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Haleralex/userdir/internal/application/procedures"
	domainErrors "github.com/Haleralex/userdir/internal/domain/errors"
	"github.com/Haleralex/userdir/internal/pkg/logger"
	"github.com/Haleralex/userdir/internal/pkg/metrics"
)

// Стадии вызова для ProcedureError и метрик.
const (
	opConnect = "connect"
	opExecute = "execute"
	opRead    = "read"
)

// Caller - ProcedureCaller поверх *sqlx.DB.
type Caller struct {
	db      *sqlx.DB
	dialect Dialect
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewCaller создаёт Caller. Диалект должен совпадать с драйвером db.
func NewCaller(db *sqlx.DB, dialect Dialect, log *slog.Logger) *Caller {
	return &Caller{
		db:      db,
		dialect: dialect,
		tracer:  otel.Tracer("github.com/Haleralex/userdir/sqldb"),
		logger:  logger.OrDefault(log),
	}
}

// Call выполняет процедуру на отдельном соединении пула.
func (c *Caller) Call(ctx context.Context, call procedures.Call) (res procedures.Result, err error) {
	ctx, span := c.tracer.Start(ctx, "procedure "+call.Procedure,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", string(c.dialect)),
			attribute.String("db.operation.name", call.Label),
			attribute.String("db.stored_procedure.name", call.Procedure),
		),
	)
	start := time.Now()
	defer func() {
		metrics.RecordProcedureCall(call.Procedure, call.Label, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("db.result_sets", len(res.Sets)))
		}
		span.End()
	}()

	conn, err := c.db.Connx(ctx)
	if err != nil {
		return procedures.Result{}, c.wrap(call, opConnect, err)
	}
	defer conn.Close()

	query, args := statement(c.dialect, call)

	rows, err := conn.QueryxContext(ctx, query, args...)
	if err != nil {
		return procedures.Result{}, c.wrap(call, opExecute, err)
	}
	defer rows.Close()

	res, err = readResultSets(rows, call)
	if err != nil {
		return procedures.Result{}, c.wrap(call, opRead, err)
	}

	c.logger.DebugContext(ctx, "procedure call completed",
		"procedure", call.Procedure,
		"label", call.Label,
		"result_sets", len(res.Sets),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (c *Caller) wrap(call procedures.Call, op string, err error) error {
	metrics.RecordProcedureError(call.Procedure, call.Label, op)
	return domainErrors.NewProcedureError(call.Procedure, op, err)
}

// readResultSets читает result sets в порядке выдачи.
// Наборы без колонок (счётчики строк, PRINT) пропускаются.
func readResultSets(rows *sqlx.Rows, call procedures.Call) (procedures.Result, error) {
	limit := call.ResultSetLimit()
	var res procedures.Result

	for {
		cols, err := rows.Columns()
		if err != nil {
			return procedures.Result{}, err
		}

		if len(cols) > 0 {
			set := procedures.ResultSet{Columns: cols, Rows: [][]any{}}
			for rows.Next() {
				values, err := rows.SliceScan()
				if err != nil {
					return procedures.Result{}, err
				}
				set.Rows = append(set.Rows, values)
				if call.SingleRow {
					break
				}
			}
			if err := rows.Err(); err != nil {
				return procedures.Result{}, err
			}

			res.Sets = append(res.Sets, set)
			if len(res.Sets) >= limit {
				return res, nil
			}
		}

		if !rows.NextResultSet() {
			break
		}
	}

	return res, rows.Err()
}

// Ping проверяет доступность БД.
func (c *Caller) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.db.PingContext(ctx)
}

// ReportPoolStats публикует состояние пула в метрики.
func (c *Caller) ReportPoolStats() {
	stats := c.db.Stats()
	metrics.UpdateDBConnections(stats.Idle, stats.InUse, stats.MaxOpenConnections)
}
