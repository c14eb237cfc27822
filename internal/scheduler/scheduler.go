package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Args carries a job's parameters. Values are strings so jobs stay
// re-enqueueable without serialization surprises.
type Args map[string]string

// Get returns the named argument or an error naming the missing key.
func (a Args) Get(key string) (string, error) {
	v, ok := a[key]
	if !ok || v == "" {
		return "", fmt.Errorf("missing job argument %q", key)
	}
	return v, nil
}

// HandlerFunc executes one job. A returned error requeues the job until
// its attempts are exhausted, unless the error is marked permanent.
type HandlerFunc func(ctx context.Context, args Args) error

// PermanentError wraps an error that retrying cannot fix. The job is
// dropped after the first failure.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

const (
	defaultMaxAttempts = 3
	defaultBackoffBase = 2 * time.Second
)

type job struct {
	name    string
	args    Args
	attempt int
}

// Pool runs named jobs on a fixed set of workers. Delivery is
// at-least-once: a failed job is retried with exponential backoff until
// its attempts run out or the error is permanent.
type Pool struct {
	workers     int
	maxAttempts int
	backoffBase time.Duration
	logger      *slog.Logger

	mu       sync.RWMutex
	handlers map[string]HandlerFunc

	queue  chan job
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewPool creates a pool with the given worker count and queue capacity.
func NewPool(workers, queueSize int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		workers:     workers,
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		logger:      logger,
		handlers:    make(map[string]HandlerFunc),
		queue:       make(chan job, queueSize),
	}
}

// Register binds a handler to a job name. Registration after Start is not
// supported.
func (p *Pool) Register(name string, handler HandlerFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[name] = handler
}

// Start launches the workers. The passed context bounds every job run.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Stop cancels running jobs and waits for the workers to drain.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// Enqueue submits a job. It returns an error when no handler is
// registered for the name or the queue is full; it never blocks.
func (p *Pool) Enqueue(name string, args Args) error {
	p.mu.RLock()
	_, ok := p.handlers[name]
	p.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no handler registered for job %q", name)
	}

	select {
	case p.queue <- job{name: name, args: args, attempt: 1}:
		return nil
	default:
		return fmt.Errorf("job queue is full, dropping %q", name)
	}
}

// Every enqueues the named job on a fixed interval until the pool's
// context is cancelled. The first run happens after one interval.
func (p *Pool) Every(ctx context.Context, interval time.Duration, name string, args Args) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.Enqueue(name, args); err != nil {
					p.logger.Warn("periodic job not enqueued", "job", name, "error", err)
				}
			}
		}
	}()
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.queue:
			p.run(ctx, j)
		}
	}
}

func (p *Pool) run(ctx context.Context, j job) {
	p.mu.RLock()
	handler := p.handlers[j.name]
	p.mu.RUnlock()
	if handler == nil {
		p.logger.Error("job has no handler", "job", j.name)
		return
	}

	err := p.safeCall(ctx, handler, j)
	if err == nil {
		return
	}

	var perm *PermanentError
	if errors.As(err, &perm) {
		p.logger.Error("job failed permanently", "job", j.name, "attempt", j.attempt, "error", err)
		return
	}
	if j.attempt >= p.maxAttempts {
		p.logger.Error("job failed, attempts exhausted", "job", j.name, "attempt", j.attempt, "error", err)
		return
	}

	delay := p.backoffBase << (j.attempt - 1)
	p.logger.Warn("job failed, retrying", "job", j.name, "attempt", j.attempt, "retry_in", delay, "error", err)

	j.attempt++
	p.wg.Add(1)
	go func(j job) {
		defer p.wg.Done()
		select {
		case <-ctx.Done():
		case <-time.After(delay):
			select {
			case p.queue <- j:
			default:
				p.logger.Error("retry dropped, queue full", "job", j.name, "attempt", j.attempt)
			}
		}
	}(j)
}

// safeCall runs the handler with panic containment so one bad job cannot
// take a worker down.
func (p *Pool) safeCall(ctx context.Context, handler HandlerFunc, j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked", "job", j.name, "panic", r, "stack", string(debug.Stack()))
			err = Permanent(fmt.Errorf("job %q panicked: %v", j.name, r))
		}
	}()
	return handler(ctx, j.args)
}
