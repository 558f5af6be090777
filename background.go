package auth

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Task is a unit of background work. Returning backoff.Permanent(err) from a
// retried task stops further attempts.
type Task func(ctx context.Context) error

// RetryPolicy bounds retried tasks
type RetryPolicy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy is used when no policy is configured
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     5,
	InitialInterval: time.Second,
	MaxInterval:     30 * time.Second,
}

type job struct {
	name  string
	task  Task
	retry bool
}

// TaskRunner runs tasks on a fixed pool of workers fed by a bounded queue.
// Tasks run detached from the request that scheduled them.
type TaskRunner struct {
	mu      sync.RWMutex
	closed  bool
	queue   chan job
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	retry   RetryPolicy
	logger  Logger
	workers int
}

// TaskRunnerOption configures a TaskRunner
type TaskRunnerOption func(*TaskRunner)

// WithRetryPolicy sets the policy used by GoWithRetry
func WithRetryPolicy(policy RetryPolicy) TaskRunnerOption {
	return func(r *TaskRunner) {
		if policy.MaxAttempts == 0 {
			policy.MaxAttempts = DefaultRetryPolicy.MaxAttempts
		}
		if policy.InitialInterval <= 0 {
			policy.InitialInterval = DefaultRetryPolicy.InitialInterval
		}
		if policy.MaxInterval < policy.InitialInterval {
			policy.MaxInterval = policy.InitialInterval
		}
		r.retry = policy
	}
}

// WithTaskRunnerLogger sets the logger
func WithTaskRunnerLogger(logger Logger) TaskRunnerOption {
	return func(r *TaskRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewTaskRunner starts workers goroutines draining a queue of queueSize
func NewTaskRunner(workers, queueSize int, opts ...TaskRunnerOption) *TaskRunner {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &TaskRunner{
		queue:   make(chan job, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		retry:   DefaultRetryPolicy,
		logger:  defLogger{},
		workers: workers,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(workers)
	for range workers {
		go r.work()
	}

	return r
}

// Go schedules task for a single attempt. It reports false when the runner
// is closed or the queue is full.
func (r *TaskRunner) Go(name string, task Task) bool {
	return r.enqueue(job{name: name, task: task})
}

// GoWithRetry schedules task and retries failures with exponential backoff
// according to the runner's RetryPolicy.
func (r *TaskRunner) GoWithRetry(name string, task Task) bool {
	return r.enqueue(job{name: name, task: task, retry: true})
}

func (r *TaskRunner) enqueue(j job) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.Warn("task rejected, runner closed", "task", j.name)
		return false
	}

	select {
	case r.queue <- j:
		return true
	default:
		r.logger.Error("task rejected, queue full", "task", j.name)
		return false
	}
}

// Close stops accepting tasks and waits for queued ones to finish. If ctx
// ends first, in-flight retries are cancelled and ctx.Err() is returned.
func (r *TaskRunner) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	}
}

func (r *TaskRunner) work() {
	defer r.wg.Done()
	for j := range r.queue {
		r.run(j)
	}
}

func (r *TaskRunner) run(j job) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("task panicked", "task", j.name, "panic", rec)
		}
	}()

	if !j.retry {
		if err := j.task(r.ctx); err != nil {
			r.logger.Error("task failed", "task", j.name, "error", err)
		}
		return
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.retry.InitialInterval
	b.MaxInterval = r.retry.MaxInterval

	attempt := 0
	_, err := backoff.Retry(r.ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, j.task(r.ctx)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.retry.MaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			r.logger.Warn("task attempt failed, retrying",
				"task", j.name,
				"attempt", attempt,
				"next", next,
				"error", err,
			)
		}),
	)
	if err != nil {
		r.logger.Error("task failed", "task", j.name, "attempts", attempt, "error", err)
	}
}
