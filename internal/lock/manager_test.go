package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Lock(t *testing.T) {
	manager := NewManager()
	ctx := context.Background()

	guard, err := manager.Lock(ctx, "spool")
	require.NoError(t, err)
	assert.Equal(t, "spool", guard.Resource())
	assert.True(t, manager.IsLocked("spool"))
	assert.False(t, manager.IsLocked("other"))

	require.NoError(t, guard.Release())
	assert.False(t, manager.IsLocked("spool"))
	assert.Equal(t, LockStats{TotalAcquired: 1, TotalReleased: 1}, manager.GetStats())
}

func TestManager_DoubleRelease(t *testing.T) {
	manager := NewManager()
	guard, err := manager.TryLock("spool")
	require.NoError(t, err)

	require.NoError(t, guard.Release())
	assert.Error(t, guard.Release())
}

func TestManager_TryLockHeld(t *testing.T) {
	manager := NewManager()
	guard, err := manager.TryLock("spool")
	require.NoError(t, err)
	defer guard.Release()

	_, err = manager.TryLock("spool")
	assert.Error(t, err)
}

func TestManager_LockCancelled(t *testing.T) {
	manager := NewManager()
	guard, err := manager.TryLock("spool")
	require.NoError(t, err)
	defer guard.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = manager.Lock(ctx, "spool")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, uint64(1), manager.GetStats().TotalTimeouts)
}

func TestManager_WithLockSerializes(t *testing.T) {
	manager := NewManager()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithLock(ctx, "spool", func() error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, uint64(10), manager.GetStats().TotalReleased)
}
