package vitalz

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDPoolGet(t *testing.T) {
	pool := NewIDPool(4, func() string { return "span-id" })
	defer pool.Close()

	assert.Equal(t, "span-id", pool.Get())
}

func TestIDPoolCapacityFloor(t *testing.T) {
	var calls atomic.Int64
	pool := NewIDPool(0, func() string {
		calls.Add(1)
		return "x"
	})
	defer pool.Close()

	// Capacity is raised to one, so Get falls back to the factory.
	for i := 0; i < 5; i++ {
		require.Equal(t, "x", pool.Get())
	}
	assert.LessOrEqual(t, pool.Len(), 1)
	assert.GreaterOrEqual(t, calls.Load(), int64(2))
}

func TestIDPoolConcurrentGet(t *testing.T) {
	var n atomic.Int64
	pool := NewIDPool(32, func() string {
		n.Add(1)
		return "id"
	})
	defer pool.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				if id := pool.Get(); id != "id" {
					t.Errorf("unexpected id %q", id)
				}
			}
		}()
	}
	wg.Wait()

	assert.Positive(t, n.Load())
}

func TestIDPoolCloseIdempotent(t *testing.T) {
	pool := NewIDPool(2, func() string { return "a" })
	pool.Close()
	pool.Close()

	// Closed pools still serve IDs.
	assert.Equal(t, "a", pool.Get())
}

func TestTracerIDsAreHex(t *testing.T) {
	tracer := NewTracer()
	defer tracer.Close()

	_, span := tracer.StartSpan(context.Background(), "/", OpPageload)
	assert.Len(t, span.TraceID(), 32)
	assert.Len(t, span.SpanID(), 16)
}
