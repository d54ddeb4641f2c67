package lactoserv

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallbackListRunsAllConcurrently(t *testing.T) {
	cl := NewCallbackList()

	var count int32
	for i := 0; i < 5; i++ {
		cl.Add(func(ctx context.Context) {
			atomic.AddInt32(&count, 1)
		})
	}

	err := cl.RunAll(context.Background())
	assert.NoError(t, err)
	assert.EqualValues(t, 5, atomic.LoadInt32(&count))
}

func TestCallbackListRemove(t *testing.T) {
	cl := NewCallbackList()

	var ran bool
	id := cl.Add(func(ctx context.Context) { ran = true })
	cl.Remove(id)

	assert.NoError(t, cl.RunAll(context.Background()))
	assert.False(t, ran)
}

func TestCallbackListEmptyIsNoop(t *testing.T) {
	cl := NewCallbackList()
	assert.NoError(t, cl.RunAll(context.Background()))
}

func TestCallbackListTimeoutExceeded(t *testing.T) {
	cl := NewCallbackList()
	cl.Add(func(ctx context.Context) {
		<-ctx.Done()
	})

	parent, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := cl.RunAll(parent)
	assert.ErrorIs(t, err, ErrCallbackListTimeout)
}
