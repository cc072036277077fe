// SPDX-License-Identifier: MPL-2.0

package adapterssh

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConn(maxPerKey int) *pooledConn {
	return &pooledConn{
		key:           "test",
		lastUsed:      time.Now(),
		sem:           make(chan struct{}, maxPerKey),
		stopKeepAlive: make(chan struct{}),
	}
}

func TestPooledConn_AcquireRelease_TracksRefcount(t *testing.T) {
	c := newTestConn(2)
	require.NoError(t, c.acquire(context.Background()))
	assert.True(t, c.inUse())
	assert.Equal(t, int32(1), c.refcount)

	require.NoError(t, c.acquire(context.Background()))
	assert.Equal(t, int32(2), c.refcount)

	c.release()
	assert.True(t, c.inUse())
	c.release()
	assert.False(t, c.inUse())
}

func TestPooledConn_Acquire_QueuesPastMaxConcurrency(t *testing.T) {
	c := newTestConn(1)
	require.NoError(t, c.acquire(context.Background()))

	var wg sync.WaitGroup
	acquired := make(chan struct{}, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		require.NoError(t, c.acquire(context.Background()))
		acquired <- struct{}{}
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should have queued behind the first")
	case <-time.After(50 * time.Millisecond):
	}

	c.release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire never unblocked after release")
	}
	c.release()
	wg.Wait()
}

func TestPooledConn_Acquire_RespectsContextCancellation(t *testing.T) {
	c := newTestConn(1)
	require.NoError(t, c.acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPooledConn_IdleSince_UpdatesOnAcquireAndRelease(t *testing.T) {
	c := newTestConn(1)
	c.lastUsed = time.Now().Add(-time.Hour)
	assert.True(t, c.idleSince() >= time.Hour)

	require.NoError(t, c.acquire(context.Background()))
	assert.True(t, c.idleSince() < time.Second)
	c.release()
	assert.True(t, c.idleSince() < time.Second)
}

func TestPool_Defaults(t *testing.T) {
	p := newPool(nil)
	assert.Equal(t, defaultPoolTTL, p.ttl)
	assert.Equal(t, defaultMaxConcurrency, p.maxPerKey)
}

func TestPool_OptionsOverrideDefaults(t *testing.T) {
	p := newPool(nil, WithPoolTTL(time.Minute), WithMaxConcurrency(8))
	assert.Equal(t, time.Minute, p.ttl)
	assert.Equal(t, 8, p.maxPerKey)
}
