package itemstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// Ensure MemLocker implements domain.Locker.
var _ domain.Locker = (*MemLocker)(nil)

// MemLocker is an in-process advisory locker keyed by string.
// Waiters block until the holder releases, ctx is done or the timeout elapses.
type MemLocker struct {
	held    map[string]chan struct{}
	mu      sync.Mutex
	timeout time.Duration
}

// NewMemLocker creates a locker. timeout <= 0 waits until ctx is done.
func NewMemLocker(timeout time.Duration) *MemLocker {
	return &MemLocker{
		held:    make(map[string]chan struct{}),
		timeout: timeout,
	}
}

// Lock acquires key.
func (l *MemLocker) Lock(ctx context.Context, key string) (func(), error) {
	waitCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	for {
		l.mu.Lock()
		ch, busy := l.held[key]
		if !busy {
			ch = make(chan struct{})
			l.held[key] = ch
			l.mu.Unlock()
			return l.releaser(key, ch), nil
		}
		l.mu.Unlock()

		select {
		case <-ch:
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("lock %q: %w", key, domain.ErrBusy)
		}
	}
}

func (l *MemLocker) releaser(key string, ch chan struct{}) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.held[key] == ch {
				delete(l.held, key)
			}
			close(ch)
		})
	}
}
