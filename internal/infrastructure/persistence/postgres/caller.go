package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Haleralex/userdir/internal/application/procedures"
	domainErrors "github.com/Haleralex/userdir/internal/domain/errors"
	"github.com/Haleralex/userdir/internal/pkg/logger"
	"github.com/Haleralex/userdir/internal/pkg/metrics"
)

const (
	opConnect = "connect"
	opExecute = "execute"
	opFetch   = "fetch"
	opCommit  = "commit"
)

// Caller - ProcedureCaller поверх pgxpool.
//
// Каждый вызов выполняется в собственной транзакции: курсоры, которые
// вернула функция, живут только до её конца.
type Caller struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *slog.Logger
}

// NewCaller создаёт Caller.
func NewCaller(pool *pgxpool.Pool, log *slog.Logger) *Caller {
	return &Caller{
		pool:   pool,
		tracer: otel.Tracer("github.com/Haleralex/userdir/postgres"),
		logger: logger.OrDefault(log),
	}
}

// Call выполняет функцию и читает её result sets.
func (c *Caller) Call(ctx context.Context, call procedures.Call) (res procedures.Result, err error) {
	ctx, span := c.tracer.Start(ctx, "procedure "+call.Procedure,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
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

	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return procedures.Result{}, c.wrap(call, opConnect, err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return procedures.Result{}, c.wrap(call, opConnect, err)
	}
	// no-op после Commit
	defer func() { _ = tx.Rollback(ctx) }()

	query, args := statement(call)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return procedures.Result{}, c.wrap(call, opExecute, err)
	}

	if isCursorResult(rows) {
		cursors, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return procedures.Result{}, c.wrap(call, opExecute, err)
		}
		res, err = fetchCursors(ctx, tx, cursors, call)
		if err != nil {
			return procedures.Result{}, c.wrap(call, opFetch, err)
		}
	} else {
		set, err := readSet(rows, call.SingleRow)
		if err != nil {
			return procedures.Result{}, c.wrap(call, opExecute, err)
		}
		if len(set.Columns) > 0 {
			res.Sets = append(res.Sets, set)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return procedures.Result{}, c.wrap(call, opCommit, err)
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

// Ping проверяет доступность БД для /ready.
func (c *Caller) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.pool.Ping(ctx)
}

// ReportPoolStats публикует состояние пула в метрики.
func (c *Caller) ReportPoolStats() {
	stat := c.pool.Stat()
	metrics.UpdateDBConnections(int(stat.IdleConns()), int(stat.AcquiredConns()), int(stat.MaxConns()))
}

// isCursorResult: функция вернула одну колонку типа refcursor.
func isCursorResult(rows pgx.Rows) bool {
	fields := rows.FieldDescriptions()
	return len(fields) == 1 && fields[0].DataTypeOID == refcursorOID
}

// fetchCursors выбирает курсоры по порядку, не больше лимита вызова.
func fetchCursors(ctx context.Context, tx pgx.Tx, cursors []string, call procedures.Call) (procedures.Result, error) {
	limit := call.ResultSetLimit()
	var res procedures.Result

	for _, name := range cursors {
		if len(res.Sets) >= limit {
			break
		}

		rows, err := tx.Query(ctx, "FETCH ALL FROM "+pgx.Identifier{name}.Sanitize())
		if err != nil {
			return procedures.Result{}, err
		}
		set, err := readSet(rows, call.SingleRow)
		if err != nil {
			return procedures.Result{}, err
		}
		if len(set.Columns) == 0 {
			continue
		}
		res.Sets = append(res.Sets, set)
	}

	return res, nil
}

// readSet читает строки и закрывает rows.
func readSet(rows pgx.Rows, singleRow bool) (procedures.ResultSet, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	set := procedures.ResultSet{
		Columns: make([]string, len(fields)),
		Rows:    [][]any{},
	}
	for i, f := range fields {
		set.Columns[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return procedures.ResultSet{}, err
		}
		for i := range values {
			values[i] = normalize(values[i])
		}
		set.Rows = append(set.Rows, values)
		if singleRow {
			break
		}
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return procedures.ResultSet{}, err
	}
	return set, nil
}
