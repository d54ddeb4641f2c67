package lactoserv

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// bodyAllowed reports whether a response of the given method/status may
// carry a body.
func bodyAllowed(method string, status int) bool {
	if method == http.MethodHead {
		return status >= 400
	}
	switch {
	case status >= 100 && status < 200:
		return false
	case status == 204, status == 205, status == 304:
		return false
	default:
		return true
	}
}

// bodyRequired reports whether a response of the given method/status must
// carry a body.
func bodyRequired(method string, status int) bool {
	if method == http.MethodHead {
		return false
	}
	return status == 200 || status == 206
}

// AdjustResponse applies conditional-request and range transforms to resp
// for req, returning a new, possibly different, *FullResponse. The input
// is never mutated. Adjustment is idempotent: adjusting an
// already-adjusted (conditional-only) response returns it unchanged
func AdjustResponse(req *Request, resp *FullResponse) *FullResponse {
	out := resp.Clone()

	if isConditionalEligible(req.Method, out.Status) && req.HeaderValues("Cache-Control") != "no-cache" {
		out = applyConditional(req, out)
	}

	if out.Status == 200 && isRangeEligible(req.Method, out) {
		out = applyRange(req, out)
	}

	enforceHeadZeroBody(req.Method, out)

	return out
}

func isConditionalEligible(method string, status int) bool {
	if method != http.MethodGet && method != http.MethodHead {
		return false
	}
	return bodyAllowed(method, status) || status == 304
}

func applyConditional(req *Request, resp *FullResponse) *FullResponse {
	etag := resp.Header.Get("Etag")

	if inm := req.HeaderValues("If-None-Match"); inm != "" {
		if etagMatches(inm, etag) {
			return to304(resp)
		}
		return resp
	}

	if ims := req.HeaderValues("If-Modified-Since"); ims != "" {
		lastMod := resp.Header.Get("Last-Modified")
		if lastMod == "" {
			return resp
		}
		reqTime, err1 := http.ParseTime(ims)
		respTime, err2 := http.ParseTime(lastMod)
		if err1 == nil && err2 == nil && !respTime.Truncate(time.Second).After(reqTime.Truncate(time.Second)) {
			return to304(resp)
		}
	}

	return resp
}

func etagMatches(headerValue, etag string) bool {
	if etag == "" {
		return false
	}
	for _, candidate := range strings.Split(headerValue, ",") {
		if strings.TrimSpace(candidate) == etag {
			return true
		}
	}
	return false
}

func to304(resp *FullResponse) *FullResponse {
	out := resp.Clone()
	out.Status = 304
	out.Body = BodySource{}
	out.Header.Del("Content-Length")
	return out
}

func isRangeEligible(method string, resp *FullResponse) bool {
	if method != http.MethodGet && method != http.MethodHead {
		return false
	}
	return resp.Body.Len() >= 0
}

func applyRange(req *Request, resp *FullResponse) *FullResponse {
	rangeHeader := req.HeaderValues("Range")
	if rangeHeader == "" {
		return resp
	}

	total := resp.Body.Len()
	start, end, ok := parseByteRange(rangeHeader, total)
	if !ok {
		out := resp.Clone()
		out.Status = 416
		out.Header.Set("Content-Range", fmt.Sprintf("bytes */%d", total))
		out.Body = BodySource{}
		return out
	}

	out := resp.Clone()
	out.Status = 206
	length := end - start + 1
	out.Body = restrictBody(resp.Body, start, length)
	out.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, total))
	out.Header.Set("Content-Length", strconv.FormatInt(length, 10))

	return out
}

// restrictBody returns a BodySource for [offset, offset+length) of b,
// which may itself already be restricted (range-of-range is unsupported
// here since the core only ever adjusts a handler's whole-resource
// response once).
func restrictBody(b BodySource, offset, length int64) BodySource {
	if b.Bytes != nil {
		return BodySource{Bytes: b.Bytes, Offset: offset, Length: length}
	}
	return BodySource{FilePath: b.FilePath, Offset: b.Offset + offset, Length: length}
}

// parseByteRange parses a single "bytes=start-end" Range header value
// against a resource of the given total length. Only a single range is
// supported; multi-range requests are treated as unsatisfiable.
func parseByteRange(header string, total int64) (start, end int64, ok bool) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return 0, 0, false
	}
	spec := header[len(prefix):]
	if strings.Contains(spec, ",") {
		return 0, 0, false
	}

	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	switch {
	case parts[0] == "" && parts[1] != "":
		n, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		if n > total {
			n = total
		}
		return total - n, total - 1, total > 0
	case parts[0] != "":
		s, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || s < 0 || s >= total {
			return 0, 0, false
		}
		e := total - 1
		if parts[1] != "" {
			parsedEnd, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil || parsedEnd < s {
				return 0, 0, false
			}
			if parsedEnd < e {
				e = parsedEnd
			}
		}
		return s, e, true
	default:
		return 0, 0, false
	}
}

// enforceHeadZeroBody implements the head-body rule: for any
// HEAD response, the body length is zero regardless of what the handler
// produced.
func enforceHeadZeroBody(method string, resp *FullResponse) {
	if method != http.MethodHead {
		return
	}
	resp.Body = BodySource{}
}
