package sheet

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLocker_Busy(t *testing.T) {
	// Setup
	locker := NewFileLocker(t.TempDir(), 60*time.Millisecond)
	unlock, err := locker.Lock(context.Background(), "item:a1")
	require.NoError(t, err)
	defer unlock()

	// Execute
	_, err = locker.Lock(context.Background(), "item:a1")

	// Assert
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}

func TestFileLocker_KeysAreIndependent(t *testing.T) {
	locker := NewFileLocker(t.TempDir(), 60*time.Millisecond)
	unlockA, err := locker.Lock(context.Background(), "item:a1")
	require.NoError(t, err)
	defer unlockA()

	unlockB, err := locker.Lock(context.Background(), "item:a2")
	require.NoError(t, err)
	unlockB()
}

func TestFileLocker_ReleaseAllowsWaiter(t *testing.T) {
	// Setup
	locker := NewFileLocker(t.TempDir(), 2*time.Second)
	unlock, err := locker.Lock(context.Background(), "sortOrder")
	require.NoError(t, err)

	acquired := make(chan error, 1)
	go func() {
		u, err := locker.Lock(context.Background(), "sortOrder")
		if err == nil {
			u()
		}
		acquired <- err
	}()

	// Execute
	time.Sleep(50 * time.Millisecond)
	unlock()
	unlock() // no-op

	// Assert
	select {
	case err := <-acquired:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never acquired the lock")
	}
}

func TestFileLocker_Serializes(t *testing.T) {
	locker := NewFileLocker(t.TempDir(), 5*time.Second)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "k")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestFileLocker_CanceledContext(t *testing.T) {
	locker := NewFileLocker(t.TempDir(), 0)
	unlock, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = locker.Lock(ctx, "k")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestLockFileName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"sortOrder", "sortOrder.lock"},
		{"item:a1-b2", "item_a1-b2.lock"},
		{"../etc", "___etc.lock"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, lockFileName(tt.key))
		})
	}
}
