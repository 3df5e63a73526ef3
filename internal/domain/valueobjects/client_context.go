// Package valueobjects contains immutable value objects that represent domain concepts
// without identity. They are compared by their values, not by identity.
//
// The directory service has three of them: the client context recorded on
// every login, fixed-width text fields sent to stored procedures, and the
// optional user photograph.
package valueobjects

// Storage widths of the client context columns.
const (
	IPWidth        = 50
	UserAgentWidth = 200
	OSWidth        = 50
	DeviceWidth    = 50
	BrowserWidth   = 50
)

// Sentinel values reported when the user agent cannot be classified.
const (
	Unknown       = "Desconocido"
	DeviceMobile  = "Mobile"
	DeviceDesktop = "Desktop"
)

// ClientContext is the network and client metadata recorded with a login.
//
// Field tags follow the debug payload emitted to callers.
type ClientContext struct {
	IP              string `json:"Ip"`
	UserAgent       string `json:"UserAgent"`
	OperatingSystem string `json:"SistemaOperativo"`
	Device          string `json:"Dispositivo"`
	Browser         string `json:"Browser"`
}

// Clipped returns a copy with every field cut to its storage width.
func (c ClientContext) Clipped() ClientContext {
	return ClientContext{
		IP:              Clip(c.IP, IPWidth),
		UserAgent:       Clip(c.UserAgent, UserAgentWidth),
		OperatingSystem: Clip(c.OperatingSystem, OSWidth),
		Device:          Clip(c.Device, DeviceWidth),
		Browser:         Clip(c.Browser, BrowserWidth),
	}
}
