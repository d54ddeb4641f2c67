package lactoserv

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// EndpointConfig is the per-endpoint configuration record.
type EndpointConfig struct {
	Interface   InterfaceAddress
	Protocol    Protocol
	Hostnames   []string
	Application string
	AccessLog   string
	ConnLimiter string
	DataLimiter string

	// StashTimeout overrides StashTimeout when stashing this endpoint's
	// socket on reload; zero means the default.
	StashTimeout time.Duration

	// CloseGrace overrides http2CloseGrace for this endpoint's HTTP/2
	// wrangler; zero means the default.
	CloseGrace time.Duration
}

// Endpoint is a network endpoint component: one
// listening address, one protocol wrangler, dispatching accepted
// requests to one bound application.
type Endpoint struct {
	name     string
	cfg      EndpointConfig
	apps     *ApplicationManager
	services *ServiceManager
	hosts    *HostManager
	stash    *StashRegistry
	logger   *Logger

	listener net.Listener
	wrangler *Wrangler
	serveErr chan error
}

// NewEndpoint validates cfg against apps/services and builds an Endpoint
// component named name. Construction is the "configuration error" point
// unknown application/service names fail synchronously at construction.
func NewEndpoint(name string, cfg EndpointConfig, apps *ApplicationManager, services *ServiceManager, hosts *HostManager, stash *StashRegistry, logger *Logger) (*Endpoint, error) {
	if _, ok := apps.Get(cfg.Application); !ok {
		return nil, fmt.Errorf("%w: endpoint %s: unknown application %q", ErrConfiguration, name, cfg.Application)
	}

	if (cfg.Protocol == ProtocolHTTPS || cfg.Protocol == ProtocolHTTP2) && len(cfg.Hostnames) == 0 {
		return nil, fmt.Errorf("%w: endpoint %s: TLS protocol %q requires hostnames", ErrConfiguration, name, cfg.Protocol)
	}

	if cfg.AccessLog != "" {
		if _, ok := services.AccessLog(cfg.AccessLog); !ok {
			return nil, fmt.Errorf("%w: endpoint %s: unknown access log service %q", ErrConfiguration, name, cfg.AccessLog)
		}
	}
	if cfg.ConnLimiter != "" {
		if _, ok := services.ConnectionRateLimiter(cfg.ConnLimiter); !ok {
			return nil, fmt.Errorf("%w: endpoint %s: unknown connection rate limiter %q", ErrConfiguration, name, cfg.ConnLimiter)
		}
	}
	if cfg.DataLimiter != "" {
		if _, ok := services.DataRateLimiter(cfg.DataLimiter); !ok {
			return nil, fmt.Errorf("%w: endpoint %s: unknown data rate limiter %q", ErrConfiguration, name, cfg.DataLimiter)
		}
	}

	return &Endpoint{
		name:     name,
		cfg:      cfg,
		apps:     apps,
		services: services,
		hosts:    hosts,
		stash:    stash,
		logger:   logger,
	}, nil
}

// StartHook binds (or adopts) the listening socket and starts serving.
// Suitable as a Component Hooks.Start callback.
func (e *Endpoint) StartHook(ctx context.Context) error {
	listener, err := e.acquireListener()
	if err != nil {
		return fmt.Errorf("%w: endpoint %s: %v", ErrStartup, e.name, err)
	}
	e.listener = listener

	var connLimiter ConnectionRateLimiter
	if e.cfg.ConnLimiter != "" {
		connLimiter, _ = e.services.ConnectionRateLimiter(e.cfg.ConnLimiter)
	}
	var dataLimiter DataRateLimiter
	if e.cfg.DataLimiter != "" {
		dataLimiter, _ = e.services.DataRateLimiter(e.cfg.DataLimiter)
	}
	acceptListener := wrapListener(listener, connLimiter, dataLimiter)

	var tlsConfig *tls.Config
	if e.cfg.Protocol == ProtocolHTTPS || e.cfg.Protocol == ProtocolHTTP2 {
		tlsConfig = &tls.Config{GetCertificate: e.hosts.GetCertificate}
	}

	wrangler, err := NewWrangler(e.cfg.Protocol, http.HandlerFunc(e.serveHTTP), tlsConfig, e.logger)
	if err != nil {
		listener.Close()
		return fmt.Errorf("%w: endpoint %s: %v", ErrStartup, e.name, err)
	}
	e.wrangler = wrangler

	e.serveErr = make(chan error, 1)
	go func() {
		e.serveErr <- wrangler.Serve(acceptListener)
	}()

	return nil
}

// StopHook stops serving and either stashes (willReload) or closes the
// listening socket.
func (e *Endpoint) StopHook(ctx context.Context, willReload bool) error {
	if e.wrangler == nil {
		return nil
	}

	if err := e.wrangler.Stop(ctx, willReload, e.cfg.CloseGrace); err != nil {
		return fmt.Errorf("%w: endpoint %s: %v", ErrShutdown, e.name, err)
	}

	select {
	case <-e.serveErr:
	case <-ctx.Done():
	}

	if willReload {
		e.stash.Stash(e.cfg.Interface, e.listener, e.cfg.StashTimeout)
	} else {
		e.listener.Close()
	}

	return nil
}

// acquireListener adopts a stashed socket matching cfg.Interface, or
// binds a fresh one with SO_REUSEADDR/SO_REUSEPORT set.
func (e *Endpoint) acquireListener() (net.Listener, error) {
	if adopted, ok := e.stash.Adopt(e.cfg.Interface); ok {
		return adopted, nil
	}

	if e.cfg.Interface.IsFD() {
		return nil, fmt.Errorf("lactoserv: fd-form interface %s has no stashed socket to adopt", e.cfg.Interface)
	}

	address := e.cfg.Interface.Address
	if address == "*" {
		address = ""
	}

	lc := net.ListenConfig{Control: controlReuseAddr}
	return lc.Listen(context.Background(), "tcp", net.JoinHostPort(address, strconv.Itoa(e.cfg.Interface.Port)))
}

// serveHTTP is the endpoint's request dispatch pipeline: resolve the
// bound application, dispatch to it, synthesize a response for
// not-handled/error outcomes, adjust the response, write it, then post
// an access-log record if one is configured.
func (e *Endpoint) serveHTTP(w http.ResponseWriter, httpReq *http.Request) {
	start := time.Now()

	req := e.toRequest(httpReq)

	app, _ := e.apps.Get(e.cfg.Application)
	info := NewDispatchInfo(ParseURLPath(req.URLPath))

	result, err := app.Handle(httpReq.Context(), req, info)

	var resp *FullResponse
	switch {
	case err != nil:
		e.logger.Errorf("handler error for %s: %v", req.URLPath, err)
		resp = &FullResponse{Status: 500, Header: http.Header{}}
	case result.Full != nil:
		resp = result.Full
	case result.Status != nil:
		resp = expandStatus(result.Status.Status, req.URLPath)
	default:
		resp = expandStatus(404, req.URLPath)
	}

	adjusted := AdjustResponse(req, resp)
	written := writeResponse(w, req.Method, adjusted)

	if e.cfg.AccessLog != "" {
		if logger, ok := e.services.AccessLog(e.cfg.AccessLog); ok {
			logger.LogCompleted(AccessLogRecord{
				RequestID:    req.ID,
				Method:       req.Method,
				Host:         req.Host,
				URLPath:      req.URLPath,
				Status:       adjusted.Status,
				BytesWritten: written,
				Duration:     time.Since(start),
				RemoteAddr:   req.Context.RemoteAddr,
			})
		}
	}
}

func (e *Endpoint) toRequest(httpReq *http.Request) *Request {
	connID := connectionID(httpReq.RemoteAddr)
	return &Request{
		ID:      newRequestID(httpReq),
		Method:  httpReq.Method,
		Host:    httpReq.Host,
		URLPath: httpReq.URL.Path,
		Query:   httpReq.URL.RawQuery,
		Header:  httpReq.Header,
		Body:    httpReq.Body,
		Context: RequestContext{
			Interface:    e.cfg.Interface,
			RemoteAddr:   httpReq.RemoteAddr,
			ConnectionID: connID,
			Logger:       e.logger.Named("conn-" + connID),
		},
	}
}

func newRequestID(httpReq *http.Request) string {
	return strconv.FormatUint(xxhash.Sum64String(httpReq.RemoteAddr+httpReq.URL.String()+strconv.FormatInt(time.Now().UnixNano(), 10)), 36)
}

func connectionID(remoteAddr string) string {
	return strconv.FormatUint(xxhash.Sum64String(remoteAddr), 36)
}

// expandStatus builds a StatusResponse into a FullResponse, quoting the
// URL in the body for a 404.
func expandStatus(status int, urlPath string) *FullResponse {
	header := http.Header{}
	var body []byte
	if status == 404 {
		body = []byte(fmt.Sprintf("404 not found: %s\n", urlPath))
		header.Set("Content-Type", "text/plain; charset=utf-8")
	}
	return &FullResponse{Status: status, Header: header, Body: BodySource{Bytes: body}}
}

// writeResponse sends adjusted to w, returning the number of body bytes
// written.
func writeResponse(w http.ResponseWriter, method string, resp *FullResponse) int64 {
	header := w.Header()
	for k, v := range resp.Header {
		header[k] = v
	}

	if resp.Body.Len() >= 0 && header.Get("Content-Length") == "" {
		header.Set("Content-Length", strconv.FormatInt(resp.Body.Len(), 10))
	}

	w.WriteHeader(resp.Status)

	if !bodyAllowed(method, resp.Status) || resp.Body.Len() <= 0 {
		return 0
	}

	reader, err := resp.Body.Reader()
	if err != nil {
		return 0
	}
	defer reader.Close()

	n, _ := io.Copy(w, reader)
	return n
}

// Name returns the endpoint's component name.
func (e *Endpoint) Name() string { return e.name }
