package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haleralex/userdir/internal/adapters/http/common"
	"github.com/Haleralex/userdir/internal/application/dtos"
)

// logRecord - одна JSON запись журнала.
type logRecord map[string]any

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func records(t *testing.T, buf *bytes.Buffer) []logRecord {
	t.Helper()
	var out []logRecord
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec logRecord
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func loggingRouter(cfg *LoggingConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logging(cfg))
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/Usuario/Obtener", func(c *gin.Context) {
		common.SetActor(c, "ana")
		common.Respond(c, dtos.Ok("OK", &dtos.Empty{}))
	})
	r.POST("/Usuario/Crear", func(c *gin.Context) {
		var payload map[string]any
		_ = c.ShouldBindJSON(&payload)
		common.Respond(c, dtos.Fail[dtos.Empty]("El usuario ya existe"))
	})
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return r
}

func send(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("User-Agent", "userdir-test/1.0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogging_SuccessfulEnvelope(t *testing.T) {
	// Arrange
	log, buf := captureLogger()
	r := loggingRouter(&LoggingConfig{Logger: log})

	// Act
	send(r, http.MethodGet, "/Usuario/Obtener?idUsuario=ana", "")

	// Assert
	recs := records(t, buf)
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "/Usuario/Obtener", rec["route"])
	assert.Equal(t, "idUsuario=ana", rec["query"])
	assert.Equal(t, float64(http.StatusOK), rec["status"])
	assert.Equal(t, "ana", rec["actor"])
	assert.Equal(t, true, rec["exito"])
	assert.Equal(t, "userdir-test/1.0", rec["user_agent"])
	assert.NotEmpty(t, rec["request_id"])
}

func TestLogging_FailedEnvelopeIsWarn(t *testing.T) {
	log, buf := captureLogger()
	r := loggingRouter(&LoggingConfig{Logger: log})

	w := send(r, http.MethodPost, "/Usuario/Crear", `{"IdUsuario":"luis"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	rec := records(t, buf)[0]
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, false, rec["exito"])
	assert.NotContains(t, rec, "actor")
}

func TestLogging_ServerErrorIsError(t *testing.T) {
	log, buf := captureLogger()
	r := loggingRouter(&LoggingConfig{Logger: log})

	send(r, http.MethodGet, "/boom", "")

	rec := records(t, buf)[0]
	assert.Equal(t, "ERROR", rec["level"])
	assert.NotContains(t, rec, "exito")
}

func TestLogging_UnmatchedRouteIsWarn(t *testing.T) {
	log, buf := captureLogger()
	r := loggingRouter(&LoggingConfig{Logger: log})

	send(r, http.MethodGet, "/Usuario/NoExiste", "")

	rec := records(t, buf)[0]
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "", rec["route"])
	assert.Equal(t, "/Usuario/NoExiste", rec["path"])
}

func TestLogging_SkipPaths(t *testing.T) {
	log, buf := captureLogger()
	r := loggingRouter(&LoggingConfig{Logger: log, SkipPaths: []string{"/health"}})

	send(r, http.MethodGet, "/health", "")

	assert.Empty(t, buf.String())
}

func TestLogging_RequestBodyRedacted(t *testing.T) {
	// Arrange
	log, buf := captureLogger()
	cfg := DefaultLoggingConfig()
	cfg.Logger = log
	cfg.LogRequestBody = true
	r := loggingRouter(cfg)

	// Act
	send(r, http.MethodPost, "/Usuario/Crear",
		`{"IdUsuario":"luis","Password":"s3cret","Respuesta":"Firulais","Pregunta":null}`)

	// Assert
	assert.NotContains(t, buf.String(), "s3cret")
	assert.NotContains(t, buf.String(), "Firulais")

	body, ok := records(t, buf)[0]["request_body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "luis", body["IdUsuario"])
	assert.Equal(t, redacted, body["Password"])
	assert.Equal(t, redacted, body["Respuesta"])
	assert.Nil(t, body["Pregunta"])
}

func TestLogging_BodyStillReachesHandler(t *testing.T) {
	log, _ := captureLogger()
	cfg := DefaultLoggingConfig()
	cfg.Logger = log
	cfg.LogRequestBody = true

	var seen string
	r := gin.New()
	r.Use(Logging(cfg))
	r.POST("/Login/ValidarCredenciales", func(c *gin.Context) {
		var cmd dtos.LoginCommand
		_ = c.ShouldBindJSON(&cmd)
		seen = cmd.Password
	})

	send(r, http.MethodPost, "/Login/ValidarCredenciales", `{"Usuario":"ana","Password":"pw"}`)

	assert.Equal(t, "pw", seen)
}

func TestLogging_BodyTooLarge(t *testing.T) {
	log, buf := captureLogger()
	r := loggingRouter(&LoggingConfig{Logger: log, LogRequestBody: true, MaxBodySize: 16})

	send(r, http.MethodPost, "/Usuario/Crear", `{"IdUsuario":"a-very-long-identifier"}`)

	assert.NotContains(t, buf.String(), "a-very-long-identifier")
}

func TestLogging_NonJSONBody(t *testing.T) {
	log, buf := captureLogger()
	r := loggingRouter(&LoggingConfig{Logger: log, LogRequestBody: true, MaxBodySize: 1024})

	send(r, http.MethodPost, "/Usuario/Crear", `Password=s3cret`)

	assert.NotContains(t, buf.String(), "s3cret")
	assert.Equal(t, "[unparsed]", records(t, buf)[0]["request_body"])
}

func TestLogging_NilConfigAndLogger(t *testing.T) {
	r := gin.New()
	r.Use(Logging(nil), Logging(&LoggingConfig{}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := send(r, http.MethodGet, "/x", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogging_RedactionIgnoresCase(t *testing.T) {
	log, buf := captureLogger()
	cfg := DefaultLoggingConfig()
	cfg.Logger = log
	cfg.LogRequestBody = true
	r := loggingRouter(cfg)

	send(r, http.MethodPost, "/Usuario/CambiarPassword",
		`{"idUsuario":"luis","passwordActual":"old-s3cret","passwordNueva":"new-s3cret"}`)

	assert.NotContains(t, buf.String(), "old-s3cret")
	assert.NotContains(t, buf.String(), "new-s3cret")
	assert.Contains(t, buf.String(), "luis")
}

func TestLogging_ChunkedBodyLargerThanLimit(t *testing.T) {
	log, buf := captureLogger()
	cfg := DefaultLoggingConfig()
	cfg.Logger = log
	cfg.LogRequestBody = true

	photo := strings.Repeat("QUJD", 2048)
	var seen dtos.CreateUserCommand
	var bindErr error
	r := gin.New()
	r.Use(Logging(cfg))
	r.POST("/Usuario/Crear", func(c *gin.Context) {
		bindErr = c.ShouldBindJSON(&seen)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/Usuario/Crear",
		strings.NewReader(`{"IdUsuario":"ana","FotografiaBase64":"`+photo+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.NoError(t, bindErr)
	require.NotNil(t, seen.UserID)
	assert.Equal(t, "ana", *seen.UserID)
	require.NotNil(t, seen.PhotoBase64)
	assert.Equal(t, photo, *seen.PhotoBase64)
	assert.Equal(t, "[too large]", records(t, buf)[0]["request_body"])
}
