package lactoserv

import (
	"io"
	"net/http"
	"strings"
)

// RequestContext carries the ambient information about where a request
// arrived that an async-local-storage based implementation would recover
// implicitly: the listening interface, the remote origin,
// and a per-connection logger. It is threaded explicitly from the accept
// site through to the handler.
type RequestContext struct {
	// Interface is the endpoint's bound interface address.
	Interface InterfaceAddress

	// RemoteAddr is the peer address of the accepted connection.
	RemoteAddr string

	// ConnectionID identifies the connection this request arrived on.
	ConnectionID string

	// Logger is scoped to this connection.
	Logger *Logger
}

// Request is an immutable view of an incoming HTTP request.
type Request struct {
	// ID uniquely identifies this request for logging correlation.
	ID string

	Method  string
	Host    string
	URLPath string
	Query   string
	Header  http.Header
	Body    io.ReadCloser

	// Context is the request's originating connection context.
	Context RequestContext
}

// HeaderValues returns the comma-joined values of key, or "" if absent.
func (r *Request) HeaderValues(key string) string {
	if r.Header == nil {
		return ""
	}
	return strings.Join(r.Header.Values(key), ", ")
}
