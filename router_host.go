package lactoserv

import (
	"context"
	"fmt"
)

// HostRouter dispatches by the request's Host header, using a tree-map
// from reversed hostname to application name.
type HostRouter struct {
	name string
	apps *ApplicationManager
	tree *TreeMap[string]
}

// HostRoute is one hostname-pattern -> application binding.
type HostRoute struct {
	Hostname    string
	Application string
}

// NewHostRouter builds a HostRouter named name, resolving application
// names against apps.
func NewHostRouter(name string, apps *ApplicationManager, routes []HostRoute) (*HostRouter, error) {
	tree := NewTreeMap[string]()
	for _, r := range routes {
		key, err := ParseHostname(r.Hostname)
		if err != nil {
			return nil, fmt.Errorf("lactoserv: host router %s: %w", name, err)
		}
		if _, ok := apps.Get(r.Application); !ok {
			return nil, fmt.Errorf("lactoserv: host router %s: unknown application %q", name, r.Application)
		}
		if err := tree.Add(key, r.Application); err != nil {
			return nil, fmt.Errorf("lactoserv: host router %s: hostname %q: %w", name, r.Hostname, err)
		}
	}

	return &HostRouter{name: name, apps: apps, tree: tree}, nil
}

// Name returns the router's application name.
func (hr *HostRouter) Name() string { return hr.name }

// Handle parses the request's Host header into a reversed path key, does
// find-with-fallback, and forwards to the first match whose handler
// returns a handled result.
func (hr *HostRouter) Handle(ctx context.Context, req *Request, info DispatchInfo) (HandlerResult, error) {
	key, err := ParseHostname(req.Host)
	if err != nil {
		return NotHandled, nil
	}

	for _, m := range hr.tree.FindWithFallback(key) {
		app, ok := hr.apps.Get(m.Value)
		if !ok {
			continue
		}
		result, err := app.Handle(ctx, req, info)
		if err != nil {
			return NotHandled, err
		}
		if result.Handled() {
			return result, nil
		}
	}

	return NotHandled, nil
}
