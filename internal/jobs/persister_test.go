package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPersister_RunsTasks(t *testing.T) {
	t.Parallel()

	p := NewPersister(2, 16, nil)
	p.Start()

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		ok := p.Enqueue("test", func(ctx context.Context) error {
			defer wg.Done()
			ran.Add(1)
			return nil
		})
		if !ok {
			t.Fatal("enqueue rejected with a near-empty queue")
		}
	}
	wg.Wait()
	p.Stop()

	if ran.Load() != 10 {
		t.Errorf("ran = %d, want 10", ran.Load())
	}
}

func TestPersister_DrainsQueueOnStop(t *testing.T) {
	t.Parallel()

	p := NewPersister(1, 16, nil)
	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		p.Enqueue("test", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	// Workers start after the queue is filled; Stop must still drain it.
	p.Start()
	p.Stop()

	if ran.Load() != 5 {
		t.Errorf("ran = %d, want 5 (queued tasks drained on stop)", ran.Load())
	}
}

func TestPersister_FullQueueDropsTask(t *testing.T) {
	t.Parallel()

	// Never started: nothing drains the queue.
	p := NewPersister(1, 2, nil)

	ok1 := p.Enqueue("a", func(ctx context.Context) error { return nil })
	ok2 := p.Enqueue("b", func(ctx context.Context) error { return nil })
	ok3 := p.Enqueue("c", func(ctx context.Context) error { return nil })

	if !ok1 || !ok2 {
		t.Error("queue should accept up to its capacity")
	}
	if ok3 {
		t.Error("full queue must drop instead of blocking")
	}
}

func TestPersister_RejectsEnqueueAfterStop(t *testing.T) {
	t.Parallel()

	p := NewPersister(1, 4, nil)
	p.Start()
	p.Stop()

	ok := p.Enqueue("late", func(ctx context.Context) error {
		t.Error("task enqueued after stop must never run")
		return nil
	})
	if ok {
		t.Error("enqueue after stop must report the drop")
	}
}

func TestPersister_TaskFailureDoesNotStopWorkers(t *testing.T) {
	t.Parallel()

	p := NewPersister(1, 16, nil)
	p.Start()
	defer p.Stop()

	done := make(chan struct{})
	p.Enqueue("failing", func(ctx context.Context) error {
		return errors.New("storage offline")
	})
	p.Enqueue("following", func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not continue after a failed task")
	}
}

func TestPersister_StartStopIdempotent(t *testing.T) {
	t.Parallel()

	p := NewPersister(1, 4, nil)
	p.Start()
	p.Start()
	p.Stop()
	p.Stop()
}

type countingRegistry struct {
	flushes atomic.Int32
}

func (c *countingRegistry) FlushDirty(ctx context.Context) int {
	c.flushes.Add(1)
	return 1
}

func TestFlusher_FlushesPeriodicallyAndOnStop(t *testing.T) {
	t.Parallel()

	reg := &countingRegistry{}
	f := NewFlusher(reg, 20*time.Millisecond, nil)
	f.Start()
	time.Sleep(70 * time.Millisecond)
	f.Stop()

	if n := reg.flushes.Load(); n < 2 {
		t.Errorf("flushes = %d, want at least 2 (ticker plus final pass)", n)
	}
}
