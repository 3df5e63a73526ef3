package handlers

import (
	"net"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/userdir/internal/application/clientinfo"
)

// ginTransport открывает use case доступ к транспорту запроса.
type ginTransport struct {
	c *gin.Context
}

// NewTransport адаптирует gin.Context к clientinfo.Transport.
func NewTransport(c *gin.Context) clientinfo.Transport {
	return ginTransport{c: c}
}

func (t ginTransport) Header(name string) string {
	return t.c.GetHeader(name)
}

func (t ginTransport) PeerAddress() string {
	host, _, err := net.SplitHostPort(t.c.Request.RemoteAddr)
	if err != nil {
		return t.c.Request.RemoteAddr
	}
	return host
}

func (t ginTransport) RemoteAddrVar() string {
	return t.c.Request.RemoteAddr
}

func (t ginTransport) UserAgent() string {
	return t.c.Request.UserAgent()
}
