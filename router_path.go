package lactoserv

import (
	"context"
	"fmt"
	"strings"
)

// PathRouter dispatches by URL path, using a tree-map from URL path to
// application name. Paths are wildcard unless they
// should match exactly.
type PathRouter struct {
	name string
	apps *ApplicationManager
	tree *TreeMap[string]
}

// PathRoute is one path-pattern -> application binding. Wildcard routes
// end in "/*" by convention; Exact forces a non-wildcard (full-match)
// entry instead.
type PathRoute struct {
	Path        string
	Application string
	Exact       bool
}

// NewPathRouter builds a PathRouter named name, resolving application
// names against apps.
func NewPathRouter(name string, apps *ApplicationManager, routes []PathRoute) (*PathRouter, error) {
	tree := NewTreeMap[string]()
	for _, r := range routes {
		path := r.Path
		if !r.Exact {
			path = strings.TrimSuffix(path, "/*")
		}
		key := ParseURLPath(path)
		key = NewPathKey(key.Path(), !r.Exact)
		if _, ok := apps.Get(r.Application); !ok {
			return nil, fmt.Errorf("lactoserv: path router %s: unknown application %q", name, r.Application)
		}
		if err := tree.Add(key, r.Application); err != nil {
			return nil, fmt.Errorf("lactoserv: path router %s: path %q: %w", name, r.Path, err)
		}
	}

	return &PathRouter{name: name, apps: apps, tree: tree}, nil
}

// Name returns the router's application name.
func (pr *PathRouter) Name() string { return pr.name }

// Handle does find-with-fallback over the dispatch's extra path; for each
// candidate from most- to least-specific, it rebinds dispatch info and
// calls the bound application, stopping at the first handled result.
func (pr *PathRouter) Handle(ctx context.Context, req *Request, info DispatchInfo) (HandlerResult, error) {
	for _, m := range pr.tree.FindWithFallback(info.Extra) {
		app, ok := pr.apps.Get(m.Value)
		if !ok {
			continue
		}

		matched := info.Extra.Path()[:m.MatchedLen]
		next := info.Rebind(matched, m.Remainder)

		result, err := app.Handle(ctx, req, next)
		if err != nil {
			return NotHandled, err
		}
		if result.Handled() {
			return result, nil
		}
	}

	return NotHandled, nil
}
