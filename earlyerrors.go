package lactoserv

import (
	"context"
	"fmt"
	"math/rand"
)

// earlyErrorApp wraps an Application and fails a configurable fraction
// of requests, for exercising error-handling paths under load.
// Debug-only: never enabled unless
// Config.EarlyErrorRate is explicitly set.
type earlyErrorApp struct {
	inner Application
	rate  float64
}

func injectEarlyErrors(apps []Application, rate float64) []Application {
	out := make([]Application, len(apps))
	for i, a := range apps {
		out[i] = &earlyErrorApp{inner: a, rate: rate}
	}
	return out
}

func (e *earlyErrorApp) Name() string { return e.inner.Name() }

func (e *earlyErrorApp) Handle(ctx context.Context, req *Request, info DispatchInfo) (HandlerResult, error) {
	if rand.Float64() < e.rate {
		return NotHandled, fmt.Errorf("lactoserv: injected early error for %s", req.URLPath)
	}
	return e.inner.Handle(ctx, req, info)
}
