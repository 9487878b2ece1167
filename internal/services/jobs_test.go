package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerExecutesTasks(t *testing.T) {
	w := NewWorker(testLogger(t), 2, 8)
	w.Start()

	var ran atomic.Int32
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		ok := w.Submit("count", func(ctx context.Context) error {
			if ran.Add(1) == 5 {
				close(done)
			}
			return nil
		})
		if !ok {
			t.Fatal("submit rejected")
		}
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tasks did not run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestWorkerRejectsWhenQueueFull(t *testing.T) {
	w := NewWorker(testLogger(t), 1, 1)
	// Not started: the single queue slot fills, the second submit fails.
	if ok := w.Submit("first", func(ctx context.Context) error { return nil }); !ok {
		t.Fatal("first submit rejected")
	}
	if ok := w.Submit("second", func(ctx context.Context) error { return nil }); ok {
		t.Fatal("second submit accepted with full queue")
	}
}

func TestWorkerShutdownDrainsQueue(t *testing.T) {
	w := NewWorker(testLogger(t), 1, 8)
	w.Start()

	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		w.Submit("drain", func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			ran.Add(1)
			return nil
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if got := ran.Load(); got != 3 {
		t.Fatalf("ran = %d, want 3", got)
	}
}

func TestWorkerRecoversFromPanic(t *testing.T) {
	w := NewWorker(testLogger(t), 1, 8)
	w.Start()

	done := make(chan struct{})
	w.Submit("panic", func(ctx context.Context) error { panic("boom") })
	w.Submit("after", func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not survive panic")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = w.Shutdown(ctx)
}
