package lactoserv

import (
	"context"
	"fmt"
)

// Application implements the request-handler contract:
// given a request and its dispatch info, return a HandlerResult (full
// response, status response, or NotHandled), or fail.
type Application interface {
	// Name is the application's registered name, used by endpoints and
	// composite routers to refer to it.
	Name() string

	// Handle dispatches one request. A NotHandled result tells the
	// caller to try the next candidate, if any; an error is reported
	// distinctly and converted to a 500 by the endpoint.
	Handle(ctx context.Context, req *Request, info DispatchInfo) (HandlerResult, error)
}

// ApplicationManager holds named applications. It is a leaf
// component: construction validates there are no duplicate names.
type ApplicationManager struct {
	apps      map[string]Application
	component *Component
}

// NewApplicationManager builds a manager from apps, erroring on a
// duplicate Name().
func NewApplicationManager(apps ...Application) (*ApplicationManager, error) {
	m := &ApplicationManager{apps: map[string]Application{}}
	for _, a := range apps {
		if _, exists := m.apps[a.Name()]; exists {
			return nil, fmt.Errorf("lactoserv: duplicate application name: %q", a.Name())
		}
		m.apps[a.Name()] = a
	}
	return m, nil
}

// Get resolves an application by name.
func (m *ApplicationManager) Get(name string) (Application, bool) {
	a, ok := m.apps[name]
	return a, ok
}

// Component returns the manager's tree node, or nil if it was built
// standalone rather than via New.
func (m *ApplicationManager) Component() *Component { return m.component }
