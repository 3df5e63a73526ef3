// Package dtos определяет Data Transfer Objects для передачи данных между слоями.
//
// Имена JSON-полей совпадают с уже существующими клиентами сервиса
// (Exito, Mensaje, Datos, IdUsuario, ...), поэтому менять их нельзя.
//
// Pattern: Data Transfer Object
package dtos

// ExceptionPrefix предваряет описание любой инфраструктурной ошибки в Mensaje.
const ExceptionPrefix = "Excepción: "

// MessageNoResponse - процедура не вернула ни одной строки.
const MessageNoResponse = "No se obtuvo respuesta del procedimiento."

// ============================================
// Response Envelope
// ============================================

// APIResponse - единый конверт ответа для всех endpoints.
//
// Все четыре поля сериализуются всегда (null, если не заданы).
// Datos заполняется только при Exito=true.
type APIResponse[T any] struct {
	Success bool   `json:"Exito"`
	Message string `json:"Mensaje"`
	Data    *T     `json:"Datos"`
	Debug   any    `json:"Debug"`
}

// Empty - тип Datos для действий без полезной нагрузки (Eliminar, CambiarPassword).
type Empty struct{}

// Ok создаёт успешный конверт.
func Ok[T any](message string, data *T) APIResponse[T] {
	return APIResponse[T]{Success: true, Message: message, Data: data}
}

// Fail создаёт конверт отказа без данных.
func Fail[T any](message string) APIResponse[T] {
	return APIResponse[T]{Success: false, Message: message}
}

// Exception создаёт конверт для инфраструктурной ошибки.
func Exception[T any](err error) APIResponse[T] {
	return APIResponse[T]{Success: false, Message: ExceptionPrefix + err.Error()}
}

// WithDebug возвращает копию конверта с debug-нагрузкой.
func (r APIResponse[T]) WithDebug(debug any) APIResponse[T] {
	r.Debug = debug
	return r
}

// ============================================
// Paging
// ============================================

// PagedResult - одна страница элементов и общее число совпадений.
type PagedResult[T any] struct {
	Items []T `json:"Items"`
	Total int `json:"Total"`
}
