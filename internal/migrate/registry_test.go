package migrate

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_TryInsertAndRemove(t *testing.T) {
	reg := NewRegistry()
	assert.Nil(t, reg.Active())

	first := NewExecutor(nil, nil, reg, "a.xlsx", Config{})
	second := NewExecutor(nil, nil, reg, "b.xlsx", Config{})

	require.True(t, reg.TryInsert(first))
	assert.False(t, reg.TryInsert(second))
	assert.Same(t, first, reg.Active())

	// Removing with the wrong run ID leaves the slot held.
	assert.False(t, reg.Remove(second.RunID()))
	assert.Same(t, first, reg.Active())

	assert.True(t, reg.Remove(first.RunID()))
	assert.Nil(t, reg.Active())

	// Slot is free again.
	assert.True(t, reg.TryInsert(second))
}

func TestRegistry_RemoveIdempotent(t *testing.T) {
	reg := NewRegistry()
	exec := NewExecutor(nil, nil, reg, "a.xlsx", Config{})

	require.True(t, reg.TryInsert(exec))
	assert.True(t, reg.Remove(exec.RunID()))
	assert.False(t, reg.Remove(exec.RunID()))
}

func TestRegistry_ConcurrentClaimHasOneWinner(t *testing.T) {
	reg := NewRegistry()

	const contenders = 32
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			exec := NewExecutor(nil, nil, reg, "a.xlsx", Config{})
			<-start
			if reg.TryInsert(exec) {
				wins.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.NotNil(t, reg.Active())
}
