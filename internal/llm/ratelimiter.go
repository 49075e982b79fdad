package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedProvider spaces requests so that at most rpm start in any
// minute, allowing a burst of rpm after an idle period.
type RateLimitedProvider struct {
	provider Provider
	interval time.Duration
	burst    time.Duration

	mu   sync.Mutex
	next time.Time // earliest start of the request after the burst
}

// NewRateLimitedProvider wraps provider. A non-positive rpm disables limiting.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	if rpm <= 0 {
		return provider
	}
	interval := time.Minute / time.Duration(rpm)
	return &RateLimitedProvider{
		provider: provider,
		interval: interval,
		burst:    time.Duration(rpm-1) * interval,
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.provider.Complete(ctx, req)
}

// wait reserves the next slot, giving it back if ctx ends first.
func (r *RateLimitedProvider) wait(ctx context.Context) error {
	r.mu.Lock()
	now := time.Now()
	if r.next.Before(now) {
		r.next = now
	}
	delay := r.next.Sub(now) - r.burst
	r.next = r.next.Add(r.interval)
	r.mu.Unlock()

	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		r.mu.Lock()
		r.next = r.next.Add(-r.interval)
		r.mu.Unlock()
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
