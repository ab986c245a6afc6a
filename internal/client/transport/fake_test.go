package transport

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// fakeSession hands out "A1" until refreshed, then next.
type fakeSession struct {
	mu    sync.Mutex
	token string
	next  string
	err   error
	delay time.Duration
	calls atomic.Int32
	// block, when non-nil, holds Refresh until closed or ctx ends.
	block chan struct{}
}

func (f *fakeSession) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSession) Refresh(ctx context.Context) (string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = f.next
	return f.token, nil
}
