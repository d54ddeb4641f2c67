package lactoserv

import (
	"context"
	"fmt"
)

// FilterConfig configures the request filter every application may be
// wrapped with. The zero value imposes no restrictions.
type FilterConfig struct {
	// AcceptMethods, if non-empty, is the set of methods allowed through.
	// Anything else is rejected (NotHandled).
	AcceptMethods []string

	// MaxPathDepth, MaxPathLength, MaxQueryLength reject requests whose
	// extra path / raw path / raw query exceed the given size. Zero
	// means "no limit".
	MaxPathDepth   int
	MaxPathLength  int
	MaxQueryLength int

	// RedirectDirectories and RedirectFiles are mutually exclusive
	// (validated by NewFilter). RedirectDirectories issues a 308 to the
	// file form of a directory path (trailing empty component);
	// RedirectFiles does the reverse.
	RedirectDirectories bool
	RedirectFiles       bool
}

// Filter wraps an Application with the checks of FilterConfig, run before
// the handler.
type Filter struct {
	inner  Application
	cfg    FilterConfig
	accept map[string]bool
}

// NewFilter validates cfg and wraps inner.
func NewFilter(inner Application, cfg FilterConfig) (*Filter, error) {
	if cfg.RedirectDirectories && cfg.RedirectFiles {
		return nil, fmt.Errorf("lactoserv: redirectDirectories and redirectFiles are mutually exclusive")
	}

	var accept map[string]bool
	if len(cfg.AcceptMethods) > 0 {
		accept = make(map[string]bool, len(cfg.AcceptMethods))
		for _, m := range cfg.AcceptMethods {
			accept[m] = true
		}
	}

	return &Filter{inner: inner, cfg: cfg, accept: accept}, nil
}

// Name delegates to the wrapped application.
func (f *Filter) Name() string { return f.inner.Name() }

// Handle applies the filter's checks, then delegates to the wrapped
// application's Handle.
func (f *Filter) Handle(ctx context.Context, req *Request, info DispatchInfo) (HandlerResult, error) {
	if f.accept != nil && !f.accept[req.Method] {
		return NotHandled, nil
	}

	extra := info.Extra.Path()

	if f.cfg.MaxPathDepth > 0 && len(extra) > f.cfg.MaxPathDepth {
		return NotHandled, nil
	}
	if f.cfg.MaxPathLength > 0 && len(req.URLPath) > f.cfg.MaxPathLength {
		return NotHandled, nil
	}
	if f.cfg.MaxQueryLength > 0 && len(req.Query) > f.cfg.MaxQueryLength {
		return NotHandled, nil
	}

	isDirectory := len(extra) > 0 && extra[len(extra)-1] == ""

	if f.cfg.RedirectDirectories && isDirectory {
		target := info.Base.Append(extra[:len(extra)-1], false).String(false)
		if target != "/" {
			return redirectResult(target), nil
		}
	}

	if f.cfg.RedirectFiles && !isDirectory && len(extra) > 0 {
		target := info.Base.Append(extra, false).String(false) + "/"
		return redirectResult(target), nil
	}

	return f.inner.Handle(ctx, req, info)
}

func redirectResult(location string) HandlerResult {
	return HandlerResult{
		Full: &FullResponse{
			Status: 308,
			Header: map[string][]string{"Location": {location}},
		},
	}
}
