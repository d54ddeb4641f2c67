package lactoserv

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Protocol is one of the three protocol tags an endpoint may bind.
type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
	ProtocolHTTP2 Protocol = "http2"
)

// http2IdleTimeout is the per-session idle timeout.
const http2IdleTimeout = 5 * time.Minute

// http2CloseGrace is the default grace period the wrangler waits for
// sessions to close gracefully, and again for them to be destroyed,
// before giving up and logging them as undead.
const http2CloseGrace = 250 * time.Millisecond

// sessionSet tracks the active HTTP/2 sessions of a wrangler and
// broadcasts empty/non-empty transitions, standing in for the
// "any-sessions" condition variable.
type sessionSet struct {
	mu       sync.Mutex
	sessions map[net.Conn]time.Time
	emptyCh  chan struct{}
}

func newSessionSet() *sessionSet {
	return &sessionSet{
		sessions: map[net.Conn]time.Time{},
		emptyCh:  make(chan struct{}),
	}
}

func (s *sessionSet) add(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[c] = time.Now()
}

func (s *sessionSet) touch(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[c]; ok {
		s.sessions[c] = time.Now()
	}
}

func (s *sessionSet) remove(c net.Conn) {
	s.mu.Lock()
	delete(s.sessions, c)
	empty := len(s.sessions) == 0
	var ch chan struct{}
	if empty {
		ch = s.emptyCh
		s.emptyCh = make(chan struct{})
	}
	s.mu.Unlock()

	if empty && ch != nil {
		close(ch)
	}
}

func (s *sessionSet) snapshot() []net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]net.Conn, 0, len(s.sessions))
	for c := range s.sessions {
		out = append(out, c)
	}
	return out
}

func (s *sessionSet) isEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions) == 0
}

// waitEmpty blocks until the set becomes empty or ctx/timeout elapses.
func (s *sessionSet) waitEmpty(ctx context.Context, timeout time.Duration) bool {
	s.mu.Lock()
	if len(s.sessions) == 0 {
		s.mu.Unlock()
		return true
	}
	ch := s.emptyCh
	s.mu.Unlock()

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-ch:
		return true
	case <-t.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// idleSessionsExceeding returns sessions idle for longer than
// http2IdleTimeout, for the reaper loop to close.
func (s *sessionSet) idleSessionsExceeding(d time.Duration) []net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()

	var idle []net.Conn
	cutoff := time.Now().Add(-d)
	for c, last := range s.sessions {
		if last.Before(cutoff) {
			idle = append(idle, c)
		}
	}
	return idle
}

// Wrangler is the protocol-specific state holder bound to an endpoint
// while it is running: the server socket, the HTTP
// server, the active HTTP/2 session set (for ProtocolHTTP2), and the
// async acceptor task.
type Wrangler struct {
	protocol Protocol
	server   *http.Server
	sessions *sessionSet
	logger   *Logger

	stopReaper context.CancelFunc
}

// NewWrangler builds a Wrangler for protocol, dispatching accepted
// requests to handler. tlsConfig is required for ProtocolHTTPS and
// ProtocolHTTP2, nil for ProtocolHTTP.
func NewWrangler(protocol Protocol, handler http.Handler, tlsConfig *tls.Config, logger *Logger) (*Wrangler, error) {
	w := &Wrangler{protocol: protocol, logger: logger}

	server := &http.Server{
		Handler: handler,
	}

	switch protocol {
	case ProtocolHTTP:
		h2s := &http2.Server{IdleTimeout: http2IdleTimeout}
		server.Handler = h2c.NewHandler(handler, h2s)

	case ProtocolHTTPS:
		server.TLSConfig = tlsConfig

	case ProtocolHTTP2:
		server.TLSConfig = tlsConfig
		w.sessions = newSessionSet()
		if err := http2.ConfigureServer(server, &http2.Server{IdleTimeout: http2IdleTimeout}); err != nil {
			return nil, err
		}
		server.ConnState = w.connStateHook
	}

	w.server = server
	return w, nil
}

func (w *Wrangler) connStateHook(c net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew, http.StateActive:
		w.sessions.add(c)
	case http.StateIdle:
		w.sessions.touch(c)
	case http.StateClosed, http.StateHijacked:
		w.sessions.remove(c)
	}
}

// Serve runs the accept loop over listener until Stop is called. It
// blocks until the server stops serving.
func (w *Wrangler) Serve(listener net.Listener) error {
	if w.sessions != nil {
		ctx, cancel := context.WithCancel(context.Background())
		w.stopReaper = cancel
		go w.reapIdleSessions(ctx)
	}

	var err error
	if w.protocol == ProtocolHTTPS || w.protocol == ProtocolHTTP2 {
		err = w.server.ServeTLS(listener, "", "")
	} else {
		err = w.server.Serve(listener)
	}

	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (w *Wrangler) reapIdleSessions(ctx context.Context) {
	ticker := time.NewTicker(http2IdleTimeout / 5)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, c := range w.sessions.idleSessionsExceeding(http2IdleTimeout) {
				c.Close()
			}
		}
	}
}

// Stop shuts the wrangler down. For ProtocolHTTP2, it implements the
// two-phase close/destroy: gracefully close every open session, wait up
// to gracePeriod for the set to empty, then forcibly destroy any
// remaining sessions and wait once more; sessions still alive after that
// are logged as undead and left for the OS to reap.
func (w *Wrangler) Stop(ctx context.Context, willReload bool, gracePeriod time.Duration) error {
	if gracePeriod <= 0 {
		gracePeriod = http2CloseGrace
	}

	if w.stopReaper != nil {
		w.stopReaper()
	}

	if w.sessions == nil {
		return w.server.Shutdown(ctx)
	}

	for _, c := range w.sessions.snapshot() {
		c.SetDeadline(time.Now())
	}

	if w.sessions.waitEmpty(ctx, gracePeriod) {
		return w.server.Close()
	}

	for _, c := range w.sessions.snapshot() {
		c.Close()
	}

	if !w.sessions.waitEmpty(ctx, gracePeriod) {
		if w.logger != nil {
			w.logger.Warnf("%d undead HTTP/2 session(s) after close+destroy grace periods", len(w.sessions.snapshot()))
		}
	}

	return w.server.Close()
}
