package lactoserv

import (
	"context"
	"time"
)

// Config is the top-level configuration for a webapp root. Applications,
// services and hosts are supplied
// pre-built: a driver typically constructs them from a RawConfig loaded
// via LoadConfigFile and a ClassRegistry, but the core itself only needs
// the finished values.
type Config struct {
	AppName string

	Applications []Application
	AccessLogs   []AccessLogService
	ConnLimiters []ConnectionRateLimiter
	DataLimiters []DataRateLimiter
	Hosts        []HostEntry
	Endpoints    map[string]EndpointConfig

	// Logger, if nil, defaults to a stdout logger at info level, in the
	// format LogToStdout selects.
	Logger *Logger

	// LogToStdout selects the structured-JSON format (true) or a
	// human-oriented text format (false, the zero value) for the default
	// logger built when Logger is nil.
	LogToStdout bool

	// MaxRunTime is carried in Config but nothing in this package reads
	// it: the root does not stop itself after any duration.
	MaxRunTime time.Duration

	// EarlyErrorRate, when > 0, wraps every application in a debug-only
	// decorator that fails that fraction of requests.
	EarlyErrorRate float64
}

// Root is the webapp root component, holding the application, service,
// host and endpoint managers as children.
type Root struct {
	component *Component
	apps      *ApplicationManager
	services  *ServiceManager
	hosts     *HostManager
	stash     *StashRegistry
	endpoints *EndpointManager
}

// New builds a webapp root from cfg: validates and wires the
// application/service/host managers, then the endpoint manager, as
// children of a single root component. The init hooks of every component
// run synchronously before New returns; Start must be called separately
// to begin serving.
func New(ctx context.Context, cfg Config) (*Root, error) {
	logger := cfg.Logger
	if logger == nil {
		format := DefaultLoggerFormat
		if !cfg.LogToStdout {
			format = "[{{.time}}] {{.level}} {{.component}}:"
		}
		var err error
		logger, err = NewLogger(LoggerConfig{Enabled: true, Format: format, MinLevel: lvlInfo})
		if err != nil {
			return nil, err
		}
	}

	appName := cfg.AppName
	if appName == "" {
		appName = "lactoserv"
	}

	rootComponent, err := NewRoot(ctx, appName, logger, Hooks{})
	if err != nil {
		return nil, err
	}

	applications := cfg.Applications
	if cfg.EarlyErrorRate > 0 {
		applications = injectEarlyErrors(applications, cfg.EarlyErrorRate)
	}

	apps, err := NewApplicationManager(applications...)
	if err != nil {
		return nil, err
	}
	if apps.component, err = AddChild(ctx, rootComponent, "applications", Hooks{}); err != nil {
		return nil, err
	}

	services, err := NewServiceManager(cfg.AccessLogs, cfg.ConnLimiters, cfg.DataLimiters)
	if err != nil {
		return nil, err
	}
	if services.component, err = AddChild(ctx, rootComponent, "services", Hooks{}); err != nil {
		return nil, err
	}

	hosts, err := NewHostManager(cfg.Hosts)
	if err != nil {
		return nil, err
	}
	if hosts.component, err = AddChild(ctx, rootComponent, "hosts", Hooks{}); err != nil {
		return nil, err
	}

	stash := NewStashRegistry()

	endpoints, err := NewEndpointManager(ctx, rootComponent, cfg.Endpoints, apps, services, hosts, stash)
	if err != nil {
		return nil, err
	}

	return &Root{
		component: rootComponent,
		apps:      apps,
		services:  services,
		hosts:     hosts,
		stash:     stash,
		endpoints: endpoints,
	}, nil
}

// Component returns the root's own tree node, for GetComponent/
// WaitForState/Start/Stop.
func (r *Root) Component() *Component { return r.component }

// Endpoints returns the endpoint manager.
func (r *Root) Endpoints() *EndpointManager { return r.endpoints }

// Applications returns the application manager.
func (r *Root) Applications() *ApplicationManager { return r.apps }

// Services returns the service manager.
func (r *Root) Services() *ServiceManager { return r.services }

// Hosts returns the host manager.
func (r *Root) Hosts() *HostManager { return r.hosts }

// Start starts the whole tree.
func (r *Root) Start(ctx context.Context) error { return r.component.Start(ctx) }

// Stop stops the whole tree. willReload forwards to every endpoint's
// stop hook, deciding whether listening sockets are stashed or closed.
func (r *Root) Stop(ctx context.Context, willReload bool) error {
	return r.component.Stop(ctx, willReload)
}

// Reload stops the tree with willReload=true, then starts it again,
// allowing unchanged endpoints to adopt their stashed sockets.
func (r *Root) Reload(ctx context.Context) error {
	if err := r.Stop(ctx, true); err != nil {
		return err
	}
	return r.Start(ctx)
}
