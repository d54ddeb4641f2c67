package lactoserv

import (
	"context"
	"fmt"
)

// EndpointManager holds a set of network endpoints. It is a
// Component whose children are the endpoints themselves, so each
// endpoint gets its own independent start/stop lifecycle under the
// component framework's fan-out.
type EndpointManager struct {
	component *Component
	endpoints map[string]*Endpoint
}

// NewEndpointManager builds an EndpointManager as a child of parent,
// constructing one Endpoint child component per entry in configs.
func NewEndpointManager(ctx context.Context, parent *Component, configs map[string]EndpointConfig, apps *ApplicationManager, services *ServiceManager, hosts *HostManager, stash *StashRegistry) (*EndpointManager, error) {
	mgrComponent, err := AddChild(ctx, parent, "endpoints", Hooks{})
	if err != nil {
		return nil, err
	}

	m := &EndpointManager{component: mgrComponent, endpoints: map[string]*Endpoint{}}

	for name, cfg := range configs {
		ep, err := NewEndpoint(name, cfg, apps, services, hosts, stash, mgrComponent.Logger().Named(name))
		if err != nil {
			return nil, err
		}
		m.endpoints[name] = ep

		_, err = AddChild(ctx, mgrComponent, name, Hooks{
			Start: ep.StartHook,
			Stop:  ep.StopHook,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: registering endpoint %s: %v", ErrConfiguration, name, err)
		}
	}

	return m, nil
}

// Component returns the manager's own tree node.
func (m *EndpointManager) Component() *Component { return m.component }

// Get resolves an endpoint by name.
func (m *EndpointManager) Get(name string) (*Endpoint, bool) {
	ep, ok := m.endpoints[name]
	return ep, ok
}

// Endpoints returns every endpoint under this manager.
func (m *EndpointManager) Endpoints() []*Endpoint {
	out := make([]*Endpoint, 0, len(m.endpoints))
	for _, ep := range m.endpoints {
		out = append(out, ep)
	}
	return out
}
