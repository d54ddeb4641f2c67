package lactoserv

import (
	"context"
	"fmt"
)

// SerialRouter tries a fixed, ordered list of applications, returning the
// first handled result.
type SerialRouter struct {
	name  string
	apps  *ApplicationManager
	order []string
}

// NewSerialRouter builds a SerialRouter named name dispatching to
// applicationNames in order.
func NewSerialRouter(name string, apps *ApplicationManager, applicationNames []string) (*SerialRouter, error) {
	for _, n := range applicationNames {
		if _, ok := apps.Get(n); !ok {
			return nil, fmt.Errorf("lactoserv: serial router %s: unknown application %q", name, n)
		}
	}
	return &SerialRouter{name: name, apps: apps, order: applicationNames}, nil
}

// Name returns the router's application name.
func (sr *SerialRouter) Name() string { return sr.name }

// Handle invokes each application in order, returning the first handled
// result; if all return NotHandled, so does this router.
func (sr *SerialRouter) Handle(ctx context.Context, req *Request, info DispatchInfo) (HandlerResult, error) {
	for _, name := range sr.order {
		app, ok := sr.apps.Get(name)
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
