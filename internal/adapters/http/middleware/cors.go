// Package middleware - CORS middleware.
//
// Справочник вызывается из браузерного клиента на другом домене: ответы
// входа несут X-Auth-Token, поэтому он должен быть в Expose-Headers.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig - конфигурация CORS.
type CORSConfig struct {
	// AllowOrigins - точные origins, "*" или шаблон поддоменов "https://*.example.com"
	AllowOrigins []string
	// AllowMethods - разрешённые HTTP методы
	AllowMethods []string
	// AllowHeaders - разрешённые заголовки запроса
	AllowHeaders []string
	// ExposeHeaders - заголовки, доступные клиенту
	ExposeHeaders []string
	// AllowCredentials - разрешить credentials; с "*" не используется
	AllowCredentials bool
	// MaxAge - время кеширования preflight запроса (секунды)
	MaxAge int
}

// DefaultCORSConfig - открытая конфигурация для development.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			RequestIDHeader,
		},
		ExposeHeaders: []string{
			RequestIDHeader,
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
			"X-Auth-Token",
		},
		MaxAge: 86400, // 24 часа
	}
}

// ProductionCORSConfig - только перечисленные origins, с credentials.
func ProductionCORSConfig(allowedOrigins []string) *CORSConfig {
	config := DefaultCORSConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowCredentials = true
	return config
}

// originPolicy решает, какой Access-Control-Allow-Origin отдать.
type originPolicy struct {
	any      bool
	exact    map[string]bool
	suffixes []string // ".example.com" вместе со схемой: "https://" + suffix
	schemes  []string
}

func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{exact: make(map[string]bool)}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch {
		case o == "*":
			p.any = true
		case strings.Contains(o, "://*."):
			scheme, host, _ := strings.Cut(o, "://*")
			p.schemes = append(p.schemes, scheme+"://")
			p.suffixes = append(p.suffixes, host)
		case o != "":
			p.exact[strings.ToLower(o)] = true
		}
	}
	return p
}

// allow возвращает значение заголовка или "" для чужого origin.
func (p originPolicy) allow(origin string) string {
	if p.any {
		return "*"
	}
	lower := strings.ToLower(origin)
	if p.exact[lower] {
		return origin
	}
	for i, suffix := range p.suffixes {
		host, ok := strings.CutPrefix(lower, p.schemes[i])
		if ok && strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			return origin
		}
	}
	return ""
}

// CORS middleware для обработки Cross-Origin запросов.
//
// Preflight (OPTIONS с Access-Control-Request-Method) завершается здесь:
// 204 для разрешённого origin, 403 для чужого. Обычные запросы от чужого
// origin проходят без CORS заголовков, решение остаётся за браузером.
func CORS(config *CORSConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultCORSConfig()
	}

	policy := newOriginPolicy(config.AllowOrigins)
	credentials := config.AllowCredentials && !policy.any

	allowMethods := strings.Join(config.AllowMethods, ", ")
	allowHeaders := strings.Join(config.AllowHeaders, ", ")
	exposeHeaders := strings.Join(config.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		preflight := c.Request.Method == http.MethodOptions &&
			c.GetHeader("Access-Control-Request-Method") != ""

		if !policy.any {
			c.Writer.Header().Add("Vary", "Origin")
		}

		allowed := policy.allow(origin)
		if origin != "" && allowed == "" {
			if preflight {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		if allowed == "" {
			// Запрос не из браузера: заголовки ничего не меняют, но
			// клиенты без Origin получают ту же открытую политику.
			if !policy.any {
				c.Next()
				return
			}
			allowed = "*"
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", allowed)
		h.Set("Access-Control-Expose-Headers", exposeHeaders)
		if credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if preflight {
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
