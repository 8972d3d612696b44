package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is one unit of storage work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Persister executes storage tasks on a fixed pool of workers so
// persistence I/O stays off the mutation-serialization path. It satisfies
// the service.TaskQueue interface.
type Persister struct {
	tasks       chan Task
	workers     int
	taskTimeout time.Duration
	log         *slog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	stopped bool
	mu      sync.Mutex
}

// NewPersister creates a persister with the given pool size and queue
// capacity. Zero values fall back to 2 workers and a queue of 256.
func NewPersister(workers, queueSize int, logger *slog.Logger) *Persister {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{
		tasks:       make(chan Task, queueSize),
		workers:     workers,
		taskTimeout: 30 * time.Second,
		log:         logger,
		stopCh:      make(chan struct{}),
	}
}

// Start launches the worker pool.
func (p *Persister) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.worker()
	}
	p.log.Info("persistence workers started", slog.Int("workers", p.workers))
}

// Stop signals shutdown and waits until the queued tasks are drained.
func (p *Persister) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.stopped = true
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	p.log.Info("persistence workers stopped")
}

// Enqueue hands a task to the pool. It never blocks: when the queue is full
// or the pool has been stopped the task is dropped and false returned,
// leaving reconciliation to the caller. Tasks queued before Start are
// accepted and run once the workers come up.
func (p *Persister) Enqueue(name string, run func(ctx context.Context) error) bool {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return false
	}

	select {
	case p.tasks <- Task{Name: name, Run: run}:
		return true
	default:
		return false
	}
}

func (p *Persister) worker() {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.tasks:
			p.run(task)
		case <-p.stopCh:
			// Drain what is already queued before exiting.
			for {
				select {
				case task := <-p.tasks:
					p.run(task)
				default:
					return
				}
			}
		}
	}
}

func (p *Persister) run(task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), p.taskTimeout)
	defer cancel()

	if err := task.Run(ctx); err != nil {
		// No automatic retry; operator action is preferred over replaying
		// ledger writes.
		p.log.Error("persistence task failed",
			slog.String("task", task.Name),
			slog.String("error", err.Error()),
		)
	}
}
