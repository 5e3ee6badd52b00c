package middleware

import (
	"net/http"
	"time"
)

const gatewayHeaderName = "X-Gateway"

// GatewayHeader tags every response with the gateway identification header.
type GatewayHeader struct {
	value string
}

func NewGatewayHeader(value string) *GatewayHeader {
	return &GatewayHeader{value: value}
}

func (g *GatewayHeader) Name() string { return "gateway_header" }

func (g *GatewayHeader) Before(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	w.Header().Set(gatewayHeaderName, g.value)
	return r, true
}

func (g *GatewayHeader) After(r *http.Request, status int, duration time.Duration) {}
