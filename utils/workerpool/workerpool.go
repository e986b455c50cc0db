// Package workerpool runs tasks on a fixed set of workers. Tasks that share a
// key always land on the same worker, so they run in submission order while
// tasks with different keys run concurrently.
package workerpool

import (
	"context"
	"fmt"
	"hash/fnv"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/abhissng/chargehub/adapters/log"
)

// Processor handles one task.
type Processor[T any] func(ctx context.Context, task T)

// WorkerPool is a generic sharded worker pool.
type WorkerPool[T any] struct {
	numWorkers int
	queueSize  int
	key        func(T) string
	processor  Processor[T]
	log        *log.Log

	ctx    context.Context
	queues []chan T
	next   atomic.Uint32
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// Option configures a WorkerPool.
type Option[T any] func(*WorkerPool[T])

// WithNumWorkers sets the number of workers.
func WithNumWorkers[T any](numWorkers int) Option[T] {
	return func(wp *WorkerPool[T]) {
		if numWorkers > 0 {
			wp.numWorkers = numWorkers
		}
	}
}

// WithTaskQueueSize sets the buffered queue length of each worker.
func WithTaskQueueSize[T any](size int) Option[T] {
	return func(wp *WorkerPool[T]) {
		if size >= 0 {
			wp.queueSize = size
		}
	}
}

// WithKey routes tasks by key. Without it tasks are spread round-robin.
func WithKey[T any](key func(T) string) Option[T] {
	return func(wp *WorkerPool[T]) {
		wp.key = key
	}
}

// WithLogger sets the logger used for recovered panics.
func WithLogger[T any](logger *log.Log) Option[T] {
	return func(wp *WorkerPool[T]) {
		if logger != nil {
			wp.log = logger
		}
	}
}

// NewWorkerPool starts the workers. ctx is handed to every processor call.
func NewWorkerPool[T any](ctx context.Context, processor Processor[T], options ...Option[T]) *WorkerPool[T] {
	wp := &WorkerPool[T]{
		numWorkers: 5,
		queueSize:  100,
		processor:  processor,
		log:        log.NewNop(),
		ctx:        ctx,
	}
	for _, option := range options {
		option(wp)
	}

	wp.queues = make([]chan T, wp.numWorkers)
	for i := range wp.queues {
		wp.queues[i] = make(chan T, wp.queueSize)
		wp.wg.Add(1)
		go wp.worker(wp.queues[i])
	}
	return wp
}

// Workers returns the number of workers.
func (wp *WorkerPool[T]) Workers() int {
	return wp.numWorkers
}

// Submit queues task, blocking while its worker's queue is full.
// It returns false once the pool is closed.
func (wp *WorkerPool[T]) Submit(task T) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return false
	}
	wp.queues[wp.shard(task)] <- task
	return true
}

// Close stops accepting tasks and waits for the queued ones to finish.
// Calling Close more than once is a no-op.
func (wp *WorkerPool[T]) Close() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	for _, q := range wp.queues {
		close(q)
	}
	wp.mu.Unlock()
	wp.wg.Wait()
}

func (wp *WorkerPool[T]) shard(task T) int {
	if wp.numWorkers == 1 {
		return 0
	}
	if wp.key == nil {
		return int(wp.next.Add(1) % uint32(wp.numWorkers))
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(wp.key(task)))
	return int(h.Sum32() % uint32(wp.numWorkers))
}

func (wp *WorkerPool[T]) worker(queue <-chan T) {
	defer wp.wg.Done()
	for task := range queue {
		wp.run(task)
	}
}

func (wp *WorkerPool[T]) run(task T) {
	defer func() {
		if r := recover(); r != nil {
			wp.log.Error("Panic in worker", log.Any("error", fmt.Sprintf("%v\n%s", r, debug.Stack())))
		}
	}()
	wp.processor(wp.ctx, task)
}
