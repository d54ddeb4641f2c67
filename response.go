package lactoserv

import (
	"bytes"
	"io"
	"net/http"
)

// BodySource supplies a response body, either as an in-memory buffer or
// as a range of bytes from a file.
type BodySource struct {
	// Bytes holds the body when it is already in memory. Mutually
	// exclusive with FilePath.
	Bytes []byte

	// FilePath names the file to read the body from, when not already
	// in memory.
	FilePath string

	// Offset and Length restrict a FilePath body to a byte range. Length
	// < 0 means "to end of file". For a Bytes body they apply only when
	// Length > 0 (as set by range handling, §4.4); otherwise the whole
	// buffer is the body.
	Offset int64
	Length int64
}

// Len reports the body's total length, or -1 if unknown (only possible
// for an unsized file source, which this core never produces internally
// but may receive from a handler).
func (b BodySource) Len() int64 {
	if b.Bytes != nil {
		if b.Length > 0 {
			return b.Length
		}
		return int64(len(b.Bytes))
	}
	if b.Length >= 0 {
		return b.Length
	}
	return -1
}

// Reader opens a reader over the body source, applying Offset/Length.
func (b BodySource) Reader() (io.ReadCloser, error) {
	if b.Bytes != nil {
		if b.Length <= 0 {
			return io.NopCloser(bytes.NewReader(b.Bytes)), nil
		}
		start := b.Offset
		end := int64(len(b.Bytes))
		if b.Offset+b.Length < end {
			end = b.Offset + b.Length
		}
		return io.NopCloser(bytes.NewReader(b.Bytes[start:end])), nil
	}
	return openFileRange(b.FilePath, b.Offset, b.Length)
}

// FullResponse is a complete response: status, headers, and a body
// source. Responses are frozen (treated as immutable) once
// handed to the adjustment stage.
type FullResponse struct {
	Status int
	Header http.Header
	Body   BodySource
}

// Clone returns a deep-enough copy of r suitable for in-place adjustment
// without mutating a handler's original response.
func (r *FullResponse) Clone() *FullResponse {
	h := make(http.Header, len(r.Header))
	for k, v := range r.Header {
		vv := make([]string, len(v))
		copy(vv, v)
		h[k] = vv
	}
	return &FullResponse{Status: r.Status, Header: h, Body: r.Body}
}

// StatusResponse is a bare status code, expanded by the endpoint into a
// FullResponse before being sent.
type StatusResponse struct {
	Status int
}

// HandlerResult is what an application handler returns: exactly one of
// FullResponse, StatusResponse, or neither (meaning "not handled, try the
// next candidate"), or an error.
type HandlerResult struct {
	Full   *FullResponse
	Status *StatusResponse
}

// Handled reports whether the result represents an actual response
// (either variant set) as opposed to "not handled".
func (r HandlerResult) Handled() bool {
	return r.Full != nil || r.Status != nil
}

// NotHandled is the zero HandlerResult, meaning "try the next candidate".
var NotHandled = HandlerResult{}
