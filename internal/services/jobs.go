package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

// Worker runs named background tasks on a fixed pool. Research runs are
// dispatched through it so HTTP handlers can return immediately.
type Worker interface {
	// Submit queues fn for execution. Returns false when the queue is full.
	Submit(name string, fn func(ctx context.Context) error) bool
	Start()
	Shutdown(ctx context.Context) error
}

type task struct {
	name string
	fn   func(ctx context.Context) error
}

type worker struct {
	log     *logger.Logger
	queue   chan task
	size    int
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

func NewWorker(log *logger.Logger, poolSize, queueSize int) Worker {
	if poolSize <= 0 {
		poolSize = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &worker{
		log:     log.With("service", "Worker"),
		queue:   make(chan task, queueSize),
		size:    poolSize,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

func (w *worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	for i := 0; i < w.size; i++ {
		w.wg.Add(1)
		go w.run()
	}
	w.log.Info("worker pool started", "pool_size", w.size, "queue_size", cap(w.queue))
}

func (w *worker) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.baseCtx.Done():
			return
		case t, ok := <-w.queue:
			if !ok {
				return
			}
			w.execute(t)
		}
	}
}

func (w *worker) execute(t task) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("task panicked", "task", t.name, "panic", fmt.Sprintf("%v", r))
		}
	}()
	start := time.Now()
	if err := t.fn(w.baseCtx); err != nil {
		w.log.Error("task failed", "task", t.name, "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return
	}
	w.log.Info("task completed", "task", t.name, "duration_ms", time.Since(start).Milliseconds())
}

func (w *worker) Submit(name string, fn func(ctx context.Context) error) bool {
	select {
	case w.queue <- task{name: name, fn: fn}:
		return true
	default:
		w.log.Warn("task queue full, rejecting", "task", name)
		return false
	}
}

func (w *worker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		w.cancel()
		return nil
	}
	w.mu.Unlock()

	close(w.queue)
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		w.cancel()
		return nil
	case <-ctx.Done():
		w.cancel()
		return ctx.Err()
	}
}
