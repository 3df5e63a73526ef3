// Package clientinfo заполняет контекст клиента (IP, user agent, ОС,
// устройство, браузер), который клиент не прислал сам.
//
// Источник данных - только транспорт запроса (заголовки и адрес peer),
// поэтому пакет не знает о gin: адаптер реализует интерфейс Transport.
package clientinfo

import (
	"strings"

	"github.com/mssola/useragent"

	"github.com/Haleralex/userdir/internal/domain/valueobjects"
)

// ProxyHeaders - заголовки с адресом клиента, в порядке приоритета.
var ProxyHeaders = []string{
	"CF-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
	"X-Original-For",
}

const (
	loopbackV6 = "::1"
	loopbackV4 = "127.0.0.1"
)

// Transport - read-only доступ к транспорту запроса.
type Transport interface {
	// Header возвращает значение заголовка или "".
	Header(name string) string
	// PeerAddress - адрес peer без порта.
	PeerAddress() string
	// RemoteAddrVar - "сырой" адрес из серверной переменной (может быть с портом).
	RemoteAddrVar() string
	// UserAgent - заголовок User-Agent.
	UserAgent() string
}

// Resolve возвращает полностью заполненный контекст клиента.
//
// Непустые поля declared берутся как есть, пустые выводятся из транспорта.
// Результат всегда обрезан до ширины колонок.
func Resolve(declared valueobjects.ClientContext, t Transport) valueobjects.ClientContext {
	os, device, browser := ParseAgent(t.UserAgent())

	resolved := valueobjects.ClientContext{
		IP:              firstNonBlank(declared.IP, func() string { return ClientIP(t) }),
		UserAgent:       firstNonBlank(declared.UserAgent, t.UserAgent),
		OperatingSystem: firstNonBlank(declared.OperatingSystem, func() string { return os }),
		Device:          firstNonBlank(declared.Device, func() string { return device }),
		Browser:         firstNonBlank(declared.Browser, func() string { return browser }),
	}
	return resolved.Clipped()
}

func firstNonBlank(value string, fallback func() string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback()
}

// ClientIP определяет адрес клиента.
//
// Первый непустой proxy-заголовок побеждает; из списка через запятую
// берётся первый элемент. Иначе - адрес peer, затем серверная переменная.
// "::1" отображается как "127.0.0.1".
func ClientIP(t Transport) string {
	for _, h := range ProxyHeaders {
		v := t.Header(h)
		if strings.TrimSpace(v) == "" {
			continue
		}
		first, _, _ := strings.Cut(v, ",")
		return normalizeLoopback(strings.TrimSpace(first))
	}

	addr := t.PeerAddress()
	if strings.TrimSpace(addr) == "" {
		addr = t.RemoteAddrVar()
	}
	return normalizeLoopback(addr)
}

func normalizeLoopback(ip string) string {
	if ip == loopbackV6 {
		return loopbackV4
	}
	return ip
}

// ParseAgent выводит семейство ОС, класс устройства и "браузер версия"
// из заголовка User-Agent. Нераспознанные значения - valueobjects.Unknown.
func ParseAgent(header string) (os, device, browser string) {
	os, browser = valueobjects.Unknown, valueobjects.Unknown
	device = valueobjects.DeviceDesktop

	if strings.TrimSpace(header) == "" {
		return os, device, browser
	}

	ua := useragent.New(header)

	info := ua.OSInfo()
	switch {
	case info.Name != "":
		os = info.Name
	case info.FullName != "":
		os = info.FullName
	}

	if ua.Mobile() {
		device = valueobjects.DeviceMobile
	}

	if name, version := ua.Browser(); name != "" {
		browser = strings.TrimSpace(name + " " + version)
	}

	return os, device, browser
}
