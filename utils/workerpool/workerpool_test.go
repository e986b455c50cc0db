package workerpool

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type job struct {
	key string
	seq int
}

func TestSameKeyRunsInOrder(t *testing.T) {
	var mu sync.Mutex
	seen := map[string][]int{}
	wp := NewWorkerPool(context.Background(), func(_ context.Context, j job) {
		mu.Lock()
		defer mu.Unlock()
		seen[j.key] = append(seen[j.key], j.seq)
	}, WithNumWorkers[job](4), WithKey(func(j job) string { return j.key }))

	for seq := 0; seq < 50; seq++ {
		for k := 0; k < 5; k++ {
			require.True(t, wp.Submit(job{key: "cs-" + strconv.Itoa(k), seq: seq}))
		}
	}
	wp.Close()

	require.Len(t, seen, 5)
	for key, seqs := range seen {
		require.Len(t, seqs, 50, key)
		for i, seq := range seqs {
			assert.Equal(t, i, seq, key)
		}
	}
}

func TestDifferentKeysRunConcurrently(t *testing.T) {
	release := make(chan struct{})
	var running atomic.Int32
	wp := NewWorkerPool(context.Background(), func(_ context.Context, _ int) {
		running.Add(1)
		<-release
	}, WithNumWorkers[int](3))

	for i := 0; i < 3; i++ {
		wp.Submit(i)
	}
	require.Eventually(t, func() bool { return running.Load() == 3 }, time.Second, 5*time.Millisecond)
	close(release)
	wp.Close()
}

func TestCloseDrainsAndRejects(t *testing.T) {
	var done atomic.Int32
	wp := NewWorkerPool(context.Background(), func(_ context.Context, _ int) {
		time.Sleep(time.Millisecond)
		done.Add(1)
	}, WithNumWorkers[int](2), WithTaskQueueSize[int](20))

	for i := 0; i < 20; i++ {
		wp.Submit(i)
	}
	wp.Close()
	assert.EqualValues(t, 20, done.Load())
	assert.False(t, wp.Submit(21))
	assert.NotPanics(t, wp.Close)
}

func TestPanicsAreRecovered(t *testing.T) {
	var done atomic.Int32
	wp := NewWorkerPool(context.Background(), func(_ context.Context, n int) {
		if n == 0 {
			panic("bad task")
		}
		done.Add(1)
	}, WithNumWorkers[int](1))

	wp.Submit(0)
	wp.Submit(1)
	wp.Close()
	assert.EqualValues(t, 1, done.Load())
}
