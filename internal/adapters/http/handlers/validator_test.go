package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/Haleralex/userdir/internal/domain/errors"
)

func init() {
	SetupValidator() // Ensure validators are registered
}

type testEnvelope struct {
	Success bool            `json:"Exito"`
	Message string          `json:"Mensaje"`
	Data    json.RawMessage `json:"Datos"`
	Debug   json.RawMessage `json:"Debug"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// ============================================
// Test Custom Validators
// ============================================

func TestValidateNotBlank(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type TestRequest struct {
		UserID string `json:"IdUsuario" form:"idUsuario" binding:"notblank"`
	}

	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req TestRequest
		if !Bind(c, &req) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"Exito": true, "Mensaje": req.UserID})
	})

	tests := []struct {
		name        string
		body        string
		wantSuccess bool
		wantMessage string
	}{
		{"Present", `{"IdUsuario":"ana"}`, true, "ana"},
		{"CaseInsensitiveKey", `{"idusuario":"ana"}`, true, "ana"},
		{"Missing", `{}`, false, "Solicitud inválida: idUsuario es obligatorio"},
		{"Blank", `{"IdUsuario":"   "}`, false, "Solicitud inválida: idUsuario es obligatorio"},
		{"EmptyBody", ``, false, "Solicitud inválida: idUsuario es obligatorio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			env := decodeEnvelope(t, w)
			assert.Equal(t, tt.wantSuccess, env.Success)
			assert.Equal(t, tt.wantMessage, env.Message)
		})
	}
}

func TestBind_MalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type TestRequest struct {
		Page int `json:"Pagina"`
	}

	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req TestRequest
		if !Bind(c, &req) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"Pagina":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.True(t, strings.HasPrefix(env.Message, "Solicitud inválida: "))
}

func TestBind_FormData(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type TestRequest struct {
		UserID     string `json:"IdUsuario" form:"idUsuario" binding:"notblank"`
		HardDelete bool   `json:"HardDelete" form:"hardDelete"`
	}

	var got TestRequest
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		if !Bind(c, &got) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("idUsuario=ana&hardDelete=true"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "ana", got.UserID)
	assert.True(t, got.HardDelete)
}

func TestBindQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type TestQuery struct {
		UserID string `form:"idUsuario" binding:"notblank"`
	}

	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		var q TestQuery
		if !BindQuery(c, &q) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?idUsuario=ana", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?idUsuario=", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Solicitud inválida: idUsuario es obligatorio", decodeEnvelope(t, w).Message)
}

func TestValidationMessage_OtherTags(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type TestQuery struct {
		Page int `form:"pagina" binding:"min=1"`
	}

	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		var q TestQuery
		if !BindQuery(c, &q) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?pagina=0", nil))

	assert.Equal(t, "Solicitud inválida: pagina no es válido", decodeEnvelope(t, w).Message)
}

func TestValidationErrors_CollectsEveryField(t *testing.T) {
	type TestRequest struct {
		UserID string `form:"idUsuario" binding:"notblank"`
		Page   int    `form:"pagina" binding:"min=1"`
	}

	err := binding.Validator.ValidateStruct(&TestRequest{})
	require.Error(t, err)

	errs, ok := validationErrors(err)

	require.True(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, "idUsuario", errs[0].Field)
	assert.Equal(t, "es obligatorio", errs[0].Message)
	assert.Equal(t, "no es válido", errs[1].Message)
	assert.True(t, domainErrors.IsValidationError(errs))
}

func TestValidationErrors_NotAValidatorError(t *testing.T) {
	_, ok := validationErrors(errors.New("unexpected EOF"))

	assert.False(t, ok)
	assert.Equal(t, "Solicitud inválida: unexpected EOF", validationMessage(errors.New("unexpected EOF")))
}

func TestFoldKeys(t *testing.T) {
	type inner struct {
		Name *string `form:"Nombre"`
	}
	type request struct {
		UserID string `form:"IdUsuario"`
		inner
		Actor string `form:"-"`
	}

	keys := formKeys[request]()
	assert.Equal(t, map[string]string{"idusuario": "IdUsuario", "nombre": "Nombre"}, keys)

	values := map[string][]string{
		"idUsuario": {"ana"},
		"NOMBRE":    {"Ana"},
		"Nombre":    {"exact"},
		"otro":      {"x"},
	}

	assert.True(t, foldKeys(values, keys))
	assert.Equal(t, map[string][]string{
		"IdUsuario": {"ana"},
		"Nombre":    {"exact"},
		"otro":      {"x"},
	}, values)

	assert.False(t, foldKeys(values, keys))
}

func TestFieldName_LowersFirstLetter(t *testing.T) {
	type request struct {
		UserID string `json:"IdUsuario" form:"IdUsuario" binding:"notblank"`
	}

	err := binding.Validator.ValidateStruct(&request{})
	require.Error(t, err)

	errs, ok := validationErrors(err)
	require.True(t, ok)
	assert.Equal(t, "idUsuario", errs[0].Field)
}
