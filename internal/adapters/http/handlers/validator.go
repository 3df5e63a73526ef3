// Package handlers содержит HTTP handlers справочника.
//
// Handler - это Adapter в терминах Clean Architecture:
// - Принимает HTTP запрос (JSON, form или query)
// - Преобразует в Command/Query DTO
// - Вызывает Use Case
// - Отдаёт конверт use case как есть, всегда HTTP 200
//
// SOLID:
// - SRP: Каждый handler отвечает за один endpoint
// - DIP: Handler зависит от интерфейса Use Case
package handlers

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Haleralex/userdir/internal/adapters/http/common"
	domainErrors "github.com/Haleralex/userdir/internal/domain/errors"
)

// ============================================
// Custom Validator Setup
// ============================================

var (
	setupOnce sync.Once
)

// SetupValidator настраивает кастомные валидаторы для Gin.
func SetupValidator() {
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			// В сообщениях используем имена параметров запроса (idUsuario)
			v.RegisterTagNameFunc(fieldName)

			_ = v.RegisterValidation("notblank", validateNotBlank)
		}
	})
}

// fieldName возвращает имя поля из form tag, иначе из json tag,
// в виде параметра запроса: IdUsuario -> idUsuario.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return strings.ToLower(name[:1]) + name[1:]
		}
	}
	return fld.Name
}

// ============================================
// Custom Validators
// ============================================

// validateNotBlank: строка не пустая и не из одних пробелов.
func validateNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			return false
		}
		field = field.Elem()
	}
	return strings.TrimSpace(field.String()) != ""
}

// ============================================
// Validation Error Handling
// ============================================

// HandleValidationErrors отвечает отказом без вызова процедуры.
func HandleValidationErrors(c *gin.Context, err error) {
	common.Reject(c, validationMessage(err))
}

// validationErrors переводит ошибки validator в доменные.
func validationErrors(err error) (domainErrors.ValidationErrors, bool) {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return nil, false
	}

	var out domainErrors.ValidationErrors
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "required", "notblank":
			out.Add(fe.Field(), "es obligatorio")
		default:
			out.Add(fe.Field(), "no es válido")
		}
	}
	return out, out.HasErrors()
}

// validationMessage строит сообщение по первой ошибке.
func validationMessage(err error) string {
	if errs, ok := validationErrors(err); ok {
		return common.InvalidRequestPrefix + errs[0].Field + " " + errs[0].Message
	}
	return common.InvalidRequestPrefix + err.Error()
}

// ============================================
// Request Parsing Helpers
// ============================================

// Bind биндит тело запроса по Content-Type (JSON или form).
// Ключи form сопоставляются с полями без учёта регистра, как и JSON.
// Пустое тело означает запрос без полей.
// Возвращает true если успешно, false если была ошибка (ответ уже отправлен).
func Bind[T any](c *gin.Context, req *T) bool {
	if err := foldForm(c, formKeys[T]()); err != nil {
		HandleValidationErrors(c, err)
		return false
	}

	err := c.ShouldBind(req)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(req)
	}
	if err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	return true
}

// BindQuery биндит query параметры (имена без учёта регистра).
func BindQuery[T any](c *gin.Context, req *T) bool {
	query := c.Request.URL.Query()
	if foldKeys(query, formKeys[T]()) {
		c.Request.URL.RawQuery = query.Encode()
	}

	if err := c.ShouldBindQuery(req); err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	return true
}

// ============================================
// Case-insensitive form keys
// ============================================

// formKeyCache: тип -> (ключ в нижнем регистре -> имя из form tag).
var formKeyCache sync.Map

// formKeys собирает имена form тегов T, включая встроенные структуры.
func formKeys[T any]() map[string]string {
	t := reflect.TypeFor[T]()
	if cached, ok := formKeyCache.Load(t); ok {
		return cached.(map[string]string)
	}
	keys := make(map[string]string)
	collectFormKeys(t, keys)
	formKeyCache.Store(t, keys)
	return keys
}

func collectFormKeys(t reflect.Type, keys map[string]string) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			collectFormKeys(f.Type, keys)
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			continue
		}
		keys[strings.ToLower(name)] = name
	}
}

// foldForm разбирает form тело заранее и переименовывает ключи под
// теги. gin затем биндит уже разобранный Request.Form.
func foldForm(c *gin.Context, keys map[string]string) error {
	switch c.ContentType() {
	case binding.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return err
		}
	case binding.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
			return err
		}
		if c.Request.MultipartForm != nil {
			foldKeys(c.Request.MultipartForm.Value, keys)
		}
	default:
		return nil
	}
	foldKeys(c.Request.Form, keys)
	foldKeys(c.Request.PostForm, keys)
	return nil
}

// multipartMemory - предел памяти для multipart тела (как у gin).
const multipartMemory = 32 << 20

// foldKeys переименовывает ключи values в имена тегов. Ключ, уже
// записанный точно как в теге, имеет приоритет. Возвращает true,
// если что-то изменилось.
func foldKeys(values map[string][]string, keys map[string]string) bool {
	changed := false
	for k, v := range values {
		name, ok := keys[strings.ToLower(k)]
		if !ok || name == k {
			continue
		}
		if _, exact := values[name]; !exact {
			values[name] = v
		}
		delete(values, k)
		changed = true
	}
	return changed
}
