// Интеграционные тесты Caller на реальном PostgreSQL (testcontainers).
//
// Запуск тестов:
//
//	go test ./internal/infrastructure/persistence/postgres/...
//
// Требования:
//   - Docker запущен
//   - Без -short
package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Haleralex/userdir/internal/application/procedures"
	domainErrors "github.com/Haleralex/userdir/internal/domain/errors"
)

// ============================================
// Test Helpers
// ============================================

// fixtureSQL - функции справочника: одна возвращает строки,
// другая - два курсора (статус + запись).
const fixtureSQL = `
CREATE FUNCTION fn_listar(p_accion varchar, p_buscar varchar, p_pagina integer)
RETURNS TABLE("IdUsuario" varchar, "Nombre" varchar, "IdRole" numeric) AS $$
	SELECT u.id, u.nombre, u.rol
	FROM (VALUES ('ana'::varchar, 'Ana'::varchar, 2.00::numeric),
	             ('luis', 'Luis', 3.00)) AS u(id, nombre, rol)
	WHERE p_buscar IS NULL OR u.id LIKE '%' || p_buscar || '%'
$$ LANGUAGE sql;

CREATE FUNCTION fn_crear(p_accion varchar, p_id varchar, p_foto bytea)
RETURNS SETOF refcursor AS $$
DECLARE
	c_status refcursor := 'c_status';
	c_record refcursor := 'c_record';
BEGIN
	OPEN c_status FOR SELECT 1 AS "Resultado", 'Usuario creado' AS "Mensaje";
	RETURN NEXT c_status;
	OPEN c_record FOR SELECT p_id AS "IdUsuario", octet_length(p_foto) AS "Bytes";
	RETURN NEXT c_record;
END
$$ LANGUAGE plpgsql;
`

func setupTestCaller(t *testing.T) *Caller {
	if testing.Short() {
		t.Skip("skipping testcontainers test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, fixtureSQL)
	require.NoError(t, err)

	return NewCaller(pool, nil)
}

// ============================================
// Caller Tests
// ============================================

func TestCaller_Integration(t *testing.T) {
	caller := setupTestCaller(t)
	ctx := context.Background()

	t.Run("RowsFunction", func(t *testing.T) {
		page := 1
		res, err := caller.Call(ctx, procedures.Call{
			Procedure: "fn_listar",
			Params: []procedures.Param{
				procedures.Text("@Accion", procedures.ActionWidth, "LISTAR"),
				procedures.NullableText("@Buscar", procedures.SearchWidth, nil),
				procedures.NullableInt("@Pagina", &page),
			},
		})

		require.NoError(t, err)
		require.Len(t, res.Sets, 1)
		assert.Equal(t, 2, res.Sets[0].Len())

		role, err := res.Sets[0].Record(1).Int("idrole")
		require.NoError(t, err)
		assert.Equal(t, 3, *role)
	})

	t.Run("SingleRow", func(t *testing.T) {
		res, err := caller.Call(ctx, procedures.Call{
			Procedure: "fn_listar",
			SingleRow: true,
			Params: []procedures.Param{
				procedures.Text("@Accion", procedures.ActionWidth, "OBTENER"),
				procedures.Text("@Buscar", procedures.SearchWidth, "luis"),
				procedures.NullableInt("@Pagina", nil),
			},
		})

		require.NoError(t, err)
		require.Len(t, res.Sets, 1)
		require.Equal(t, 1, res.Sets[0].Len())

		id, err := res.Sets[0].Record(0).String("IdUsuario")
		require.NoError(t, err)
		assert.Equal(t, "luis", *id)
	})

	t.Run("RefcursorFunction", func(t *testing.T) {
		id := "ana"
		res, err := caller.Call(ctx, procedures.Call{
			Procedure: "fn_crear",
			Params: []procedures.Param{
				procedures.Text("@Accion", procedures.ActionWidth, "CREAR"),
				procedures.NullableText("@IdUsuario", procedures.NameWidth, &id),
				procedures.Binary("@Fotografia", []byte("ABC")),
			},
		})

		require.NoError(t, err)
		require.Len(t, res.Sets, 2)

		classified, err := procedures.ClassifyWrite(res, true)
		require.NoError(t, err)
		assert.Equal(t, procedures.ShapeStatus, classified.Shape)
		assert.True(t, classified.Status.OK())
		assert.Equal(t, "Usuario creado", classified.Status.Message)

		require.NotNil(t, classified.Record)
		bytes, err := classified.Record.Int("Bytes")
		require.NoError(t, err)
		assert.Equal(t, 3, *bytes)
	})

	t.Run("MissingFunction", func(t *testing.T) {
		_, err := caller.Call(ctx, procedures.Call{Procedure: "fn_missing"})

		require.Error(t, err)
		assert.True(t, domainErrors.IsProcedureError(err))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, caller.Ping(ctx))
	})
}
