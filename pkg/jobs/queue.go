package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueClosed is returned when a task is submitted to a queue that is not running.
var ErrQueueClosed = errors.New("queue not running")

// Task wraps a payload with delivery bookkeeping.
type Task[T any] struct {
	ID        string
	Payload   T
	Attempt   int
	Submitted time.Time
}

// HandlerFunc processes one task. A returned error schedules a retry.
type HandlerFunc[T any] func(context.Context, Task[T]) error

// Options tune the worker pool.
type Options struct {
	Workers    int
	Capacity   int
	MaxRetries int
	Backoff    time.Duration
	Logger     *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Capacity <= 0 {
		o.Capacity = o.Workers * 8
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Queue fans tasks out to a fixed set of goroutines with linear backoff retries.
type Queue[T any] struct {
	name    string
	handle  HandlerFunc[T]
	opts    Options
	tasks   chan Task[T]
	pending sync.WaitGroup
	workers sync.WaitGroup

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a stopped queue.
func New[T any](name string, handle HandlerFunc[T], opts Options) *Queue[T] {
	opts = opts.withDefaults()
	return &Queue[T]{
		name:   name,
		handle: handle,
		opts:   opts,
		tasks:  make(chan Task[T], opts.Capacity),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ctx != nil {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.opts.Workers; i++ {
		q.workers.Add(1)
		go q.run(q.ctx)
	}
	q.opts.Logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.opts.Workers))
}

// Drain waits for accepted tasks, including retries, to settle. Intended for tests and shutdown.
func (q *Queue[T]) Drain() {
	q.pending.Wait()
}

// Stop cancels workers and blocks until they exit. Tasks still buffered are dropped.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	cancel := q.cancel
	q.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	q.workers.Wait()
	q.opts.Logger.Info("queue stopped", zap.String("queue", q.name))
}

// Submit enqueues a payload without blocking the caller beyond the buffer capacity.
func (q *Queue[T]) Submit(id string, payload T) error {
	return q.push(Task[T]{ID: id, Payload: payload, Submitted: time.Now().UTC()}, true)
}

func (q *Queue[T]) push(task Task[T], fresh bool) error {
	q.mu.RLock()
	ctx := q.ctx
	q.mu.RUnlock()
	if ctx == nil || ctx.Err() != nil {
		if !fresh {
			q.pending.Done()
		}
		return fmt.Errorf("%s: %w", q.name, ErrQueueClosed)
	}
	if fresh {
		q.pending.Add(1)
	}
	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		q.pending.Done()
		return fmt.Errorf("%s: %w", q.name, ErrQueueClosed)
	}
}

func (q *Queue[T]) run(ctx context.Context) {
	defer q.workers.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-q.tasks:
			q.process(ctx, task)
		}
	}
}

func (q *Queue[T]) process(ctx context.Context, task Task[T]) {
	err := q.handle(ctx, task)
	if err == nil {
		q.pending.Done()
		return
	}
	task.Attempt++
	log := q.opts.Logger.With(zap.String("queue", q.name), zap.String("task_id", task.ID), zap.Int("attempt", task.Attempt), zap.Error(err))
	if task.Attempt > q.opts.MaxRetries {
		log.Error("task abandoned")
		q.pending.Done()
		return
	}
	log.Warn("task failed, retrying")
	delay := time.Duration(task.Attempt) * q.opts.Backoff
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			q.pending.Done()
		case <-timer.C:
			if err := q.push(task, false); err != nil {
				log.Error("requeue failed", zap.NamedError("requeue_error", err))
			}
		}
	}()
}
