package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/casualjim/groundcontrol/pkg/slogx"
	"github.com/fogfish/opts"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned when work is enqueued on a closed queue.
var ErrClosed = errors.New("scheduler: queue closed")

// Task is a unit of deferred work. The context is cancelled when the queue is
// closed without finishing its backlog.
type Task func(ctx context.Context)

// Queue is a FIFO of rounds drained by one worker goroutine.
type Queue struct {
	concurrency int
	logger      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wake   chan struct{}
	done   chan struct{}

	mu      sync.Mutex
	rounds  []round
	pending int
	waiters []chan struct{}
	closed  bool

	seq atomic.Uint64
}

type round struct {
	id    uint64
	tasks []Task
}

// WithLogger sets the logger used to report recovered panics.
var WithLogger = opts.ForName[Queue, *slog.Logger]("logger")

// WithConcurrency sets how many tasks of one round may run at the same time.
func WithConcurrency(n int) opts.Option[Queue] {
	return opts.Type[Queue](func(q *Queue) error {
		if n < 1 {
			return fmt.Errorf("scheduler: concurrency must be at least 1, got %d", n)
		}
		q.concurrency = n
		return nil
	})
}

// New creates a queue and starts its worker. Close must be called to stop it.
func New(options ...opts.Option[Queue]) (*Queue, error) {
	q := &Queue{
		concurrency: 1,
		logger:      slog.Default(),
	}
	if err := opts.Apply(q, options); err != nil {
		return nil, err
	}

	q.ctx, q.cancel = context.WithCancel(context.Background())
	q.wake = make(chan struct{}, 1)
	q.done = make(chan struct{})

	go q.run()
	return q, nil
}

// Enqueue appends one round made of tasks and returns its sequence number.
// An empty round is not scheduled and reports 0.
func (q *Queue) Enqueue(tasks ...Task) (uint64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0, ErrClosed
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	id := q.seq.Add(1)
	q.rounds = append(q.rounds, round{id: id, tasks: tasks})
	q.pending++

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return id, nil
}

// Pending returns the number of rounds that have not finished yet.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Flush blocks until every round enqueued so far, and every round those rounds
// enqueue in turn, has finished. Flush must not be called from inside a Task.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	if q.pending == 0 {
		q.mu.Unlock()
		return nil
	}
	idle := make(chan struct{})
	q.waiters = append(q.waiters, idle)
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting rounds, drains the backlog and stops the worker.
// When ctx expires first, the context handed to running tasks is cancelled
// and ctx.Err() is returned. Close can be called more than once.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}

	select {
	case <-q.done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		return ctx.Err()
	}
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		r, ok := q.next()
		if !ok {
			return
		}
		q.execute(r)
		q.finish()
	}
}

func (q *Queue) next() (round, bool) {
	for {
		q.mu.Lock()
		if len(q.rounds) > 0 {
			r := q.rounds[0]
			q.rounds[0] = round{}
			q.rounds = q.rounds[1:]
			q.mu.Unlock()
			return r, true
		}
		if q.closed {
			q.mu.Unlock()
			return round{}, false
		}
		q.mu.Unlock()
		<-q.wake
	}
}

func (q *Queue) execute(r round) {
	if q.concurrency == 1 || len(r.tasks) == 1 {
		for _, task := range r.tasks {
			q.safely(task)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(q.concurrency)
	for _, task := range r.tasks {
		g.Go(func() error {
			q.safely(task)
			return nil
		})
	}
	_ = g.Wait()
}

func (q *Queue) finish() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending--
	if q.pending > 0 {
		return
	}
	for _, w := range q.waiters {
		close(w)
	}
	q.waiters = nil
}

func (q *Queue) safely(task Task) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		q.logger.Error("recovered panic in scheduled task", slogx.Panic(r, debug.Stack()))
	}()
	task(q.ctx)
}
