package lactoserv

import (
	"net"
	"time"
)

// AccessLogRecord is posted to an AccessLogService exactly once per
// completed request.
type AccessLogRecord struct {
	RequestID    string
	Method       string
	Host         string
	URLPath      string
	Status       int
	BytesWritten int64
	Duration     time.Duration
	RemoteAddr   string
}

// AccessLogService is the external collaborator an endpoint posts
// completed-request records to.
type AccessLogService interface {
	Name() string
	LogCompleted(record AccessLogRecord)
}

// ConnectionRateLimiter gates new connection admission.
type ConnectionRateLimiter interface {
	Name() string
	Admit() bool
}

// DataRateLimiter wraps an accepted connection's byte stream, used to
// throttle per-connection throughput.
type DataRateLimiter interface {
	Name() string
	Wrap(conn net.Conn) net.Conn
}

// ServiceManager holds named services: access loggers,
// connection/data rate limiters. Construction validates there are no
// duplicate names within each kind.
type ServiceManager struct {
	accessLogs map[string]AccessLogService
	connLimits map[string]ConnectionRateLimiter
	dataLimits map[string]DataRateLimiter
	component  *Component
}

// NewServiceManager builds a manager from the given services of each
// kind.
func NewServiceManager(accessLogs []AccessLogService, connLimits []ConnectionRateLimiter, dataLimits []DataRateLimiter) (*ServiceManager, error) {
	m := &ServiceManager{
		accessLogs: map[string]AccessLogService{},
		connLimits: map[string]ConnectionRateLimiter{},
		dataLimits: map[string]DataRateLimiter{},
	}

	for _, s := range accessLogs {
		if _, exists := m.accessLogs[s.Name()]; exists {
			return nil, duplicateServiceErr("access log", s.Name())
		}
		m.accessLogs[s.Name()] = s
	}
	for _, s := range connLimits {
		if _, exists := m.connLimits[s.Name()]; exists {
			return nil, duplicateServiceErr("connection rate limiter", s.Name())
		}
		m.connLimits[s.Name()] = s
	}
	for _, s := range dataLimits {
		if _, exists := m.dataLimits[s.Name()]; exists {
			return nil, duplicateServiceErr("data rate limiter", s.Name())
		}
		m.dataLimits[s.Name()] = s
	}

	return m, nil
}

func duplicateServiceErr(kind, name string) error {
	return &duplicateServiceError{kind: kind, name: name}
}

type duplicateServiceError struct {
	kind, name string
}

func (e *duplicateServiceError) Error() string {
	return "lactoserv: duplicate " + e.kind + " name: " + e.name
}

// AccessLog resolves an access log service by name.
func (m *ServiceManager) AccessLog(name string) (AccessLogService, bool) {
	s, ok := m.accessLogs[name]
	return s, ok
}

// ConnectionRateLimiter resolves a connection rate limiter by name.
func (m *ServiceManager) ConnectionRateLimiter(name string) (ConnectionRateLimiter, bool) {
	s, ok := m.connLimits[name]
	return s, ok
}

// DataRateLimiter resolves a data rate limiter by name.
func (m *ServiceManager) DataRateLimiter(name string) (DataRateLimiter, bool) {
	s, ok := m.dataLimits[name]
	return s, ok
}

// Component returns the manager's tree node, or nil if it was built
// standalone rather than via New.
func (m *ServiceManager) Component() *Component { return m.component }
