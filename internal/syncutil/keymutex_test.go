package syncutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyMutexSerializesSameKey(t *testing.T) {
	m := NewKeyMutex()
	ctx := context.Background()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.LockContext(ctx, "same-key")
			require.NoError(t, err)
			counter++ // Data race if the lock does not serialize
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyMutexDifferentKeysDoNotBlock(t *testing.T) {
	m := NewKeyMutex()
	ctx := context.Background()

	unlock1, err := m.LockContext(ctx, "alpha")
	require.NoError(t, err)
	defer unlock1()

	// A key in a different shard must be acquirable while alpha is held.
	done := make(chan struct{})
	go func() {
		unlock2, err := m.LockContext(ctx, "bravo")
		if err == nil {
			unlock2()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second key blocked behind unrelated lock")
	}
}

func TestKeyMutexContextCancellation(t *testing.T) {
	m := NewKeyMutex()

	unlock, err := m.LockContext(context.Background(), "held")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = m.LockContext(ctx, "held")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The original holder can still release and re-acquire.
	unlock()
	unlock2, err := m.LockContext(context.Background(), "held")
	require.NoError(t, err)
	unlock2()
}
