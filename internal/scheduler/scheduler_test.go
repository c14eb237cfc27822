package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestPool(t *testing.T, workers int) *Pool {
	t.Helper()
	p := NewPool(workers, 32, slog.Default())
	p.backoffBase = 5 * time.Millisecond
	return p
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestArgs_Get(t *testing.T) {
	args := Args{"file_id": "f1"}

	if v, err := args.Get("file_id"); err != nil || v != "f1" {
		t.Errorf("Get(file_id) = %q, %v", v, err)
	}
	if _, err := args.Get("missing"); err == nil {
		t.Error("Get(missing) expected error")
	}
}

func TestPool_RunsJob(t *testing.T) {
	p := newTestPool(t, 2)

	var got atomic.Value
	done := make(chan struct{})
	p.Register("greet", func(ctx context.Context, args Args) error {
		got.Store(args["name"])
		close(done)
		return nil
	})

	p.Start(context.Background())
	defer p.Stop()

	if err := p.Enqueue("greet", Args{"name": "ada"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	if got.Load() != "ada" {
		t.Errorf("job saw name %v, want ada", got.Load())
	}
}

func TestPool_Enqueue_UnknownJob(t *testing.T) {
	p := newTestPool(t, 1)
	p.Start(context.Background())
	defer p.Stop()

	if err := p.Enqueue("nope", nil); err == nil {
		t.Error("Enqueue() for unregistered job expected error")
	}
}

func TestPool_RetriesUntilSuccess(t *testing.T) {
	p := newTestPool(t, 1)

	var attempts atomic.Int32
	p.Register("flaky", func(ctx context.Context, args Args) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	})

	p.Start(context.Background())
	defer p.Stop()

	if err := p.Enqueue("flaky", nil); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return attempts.Load() == 3 })
}

func TestPool_StopsRetryingAfterMaxAttempts(t *testing.T) {
	p := newTestPool(t, 1)

	var attempts atomic.Int32
	p.Register("doomed", func(ctx context.Context, args Args) error {
		attempts.Add(1)
		return errors.New("always fails")
	})

	p.Start(context.Background())
	if err := p.Enqueue("doomed", nil); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return attempts.Load() == int32(p.maxAttempts) })
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	if got := attempts.Load(); got != int32(p.maxAttempts) {
		t.Errorf("attempts = %d, want %d", got, p.maxAttempts)
	}
}

func TestPool_PermanentErrorNotRetried(t *testing.T) {
	p := newTestPool(t, 1)

	var attempts atomic.Int32
	p.Register("rejected", func(ctx context.Context, args Args) error {
		attempts.Add(1)
		return Permanent(errors.New("bad input"))
	})

	p.Start(context.Background())
	if err := p.Enqueue("rejected", nil); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return attempts.Load() == 1 })
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestPool_PanicContained(t *testing.T) {
	p := newTestPool(t, 1)

	var ran atomic.Int32
	p.Register("bomb", func(ctx context.Context, args Args) error {
		panic("boom")
	})
	p.Register("after", func(ctx context.Context, args Args) error {
		ran.Add(1)
		return nil
	})

	p.Start(context.Background())
	defer p.Stop()

	if err := p.Enqueue("bomb", nil); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := p.Enqueue("after", nil); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	// The worker must survive the panic and run the next job.
	waitFor(t, 2*time.Second, func() bool { return ran.Load() == 1 })
}

func TestPool_ConcurrentWorkers(t *testing.T) {
	p := newTestPool(t, 4)

	var mu sync.Mutex
	seen := make(map[string]bool)
	var count atomic.Int32

	p.Register("mark", func(ctx context.Context, args Args) error {
		mu.Lock()
		seen[args["id"]] = true
		mu.Unlock()
		count.Add(1)
		return nil
	})

	p.Start(context.Background())
	defer p.Stop()

	for i := 0; i < 20; i++ {
		if err := p.Enqueue("mark", Args{"id": fmt.Sprintf("%d", i)}); err != nil {
			t.Fatalf("Enqueue(%d) error = %v", i, err)
		}
	}

	waitFor(t, 2*time.Second, func() bool { return count.Load() == 20 })

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 20 {
		t.Errorf("saw %d distinct jobs, want 20", len(seen))
	}
}

func TestPool_Every(t *testing.T) {
	p := newTestPool(t, 1)

	var runs atomic.Int32
	p.Register("tick", func(ctx context.Context, args Args) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	p.Every(ctx, 10*time.Millisecond, "tick", nil)

	waitFor(t, 2*time.Second, func() bool { return runs.Load() >= 3 })
	cancel()
	p.Stop()
}

func TestPermanent(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}

	base := errors.New("root cause")
	err := fmt.Errorf("wrapped: %w", Permanent(base))

	var perm *PermanentError
	if !errors.As(err, &perm) {
		t.Fatal("errors.As should find PermanentError through wrapping")
	}
	if !errors.Is(err, base) {
		t.Error("errors.Is should reach the root cause")
	}
}
