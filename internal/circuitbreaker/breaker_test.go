package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerStartsClosed(t *testing.T) {
	b := New(3, time.Minute)
	assert.True(t, b.Allow("rpc"))
	assert.Equal(t, StateClosed, b.CurrentState("rpc"))
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := New(3, time.Minute)

	for i := 0; i < 2; i++ {
		b.RecordFailure("rpc")
		assert.True(t, b.Allow("rpc"), "below threshold should still allow")
	}

	b.RecordFailure("rpc")
	assert.Equal(t, StateOpen, b.CurrentState("rpc"))
	assert.False(t, b.Allow("rpc"))
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b := New(3, time.Minute)

	b.RecordFailure("rpc")
	b.RecordFailure("rpc")
	b.RecordSuccess("rpc")

	// Counter reset: two more failures do not trip it.
	b.RecordFailure("rpc")
	b.RecordFailure("rpc")
	assert.True(t, b.Allow("rpc"))
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := New(1, 10*time.Millisecond)

	b.RecordFailure("rpc")
	assert.False(t, b.Allow("rpc"))

	time.Sleep(20 * time.Millisecond)

	// First request after the open window is the probe.
	assert.True(t, b.Allow("rpc"))
	assert.Equal(t, StateHalfOpen, b.CurrentState("rpc"))
	// Concurrent requests are rejected while probing.
	assert.False(t, b.Allow("rpc"))

	b.RecordSuccess("rpc")
	assert.Equal(t, StateClosed, b.CurrentState("rpc"))
	assert.True(t, b.Allow("rpc"))
}

func TestBreakerProbeFailureReopens(t *testing.T) {
	b := New(1, 10*time.Millisecond)

	b.RecordFailure("rpc")
	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.Allow("rpc")) // probe

	b.RecordFailure("rpc")
	assert.Equal(t, StateOpen, b.CurrentState("rpc"))
	assert.False(t, b.Allow("rpc"))
}

func TestBreakerKeysAreIndependent(t *testing.T) {
	b := New(1, time.Minute)

	b.RecordFailure("rpc")
	assert.False(t, b.Allow("rpc"))
	assert.True(t, b.Allow("db"))
}
