package llm

import (
	"context"
	"time"
)

// TimeoutProvider is a decorator that bounds each Generate call.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps a Provider so every call gets its own deadline.
// A caller deadline that is already shorter wins.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	return &TimeoutProvider{inner: p, timeout: timeout}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
