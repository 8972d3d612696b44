package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DirtyFlusher is the registry surface the flusher drives.
type DirtyFlusher interface {
	FlushDirty(ctx context.Context) int
}

// Flusher periodically hands dirty guilds to the persister. It is the
// write-behind half of the registry's storage synchronization; in
// write-through mode it simply finds nothing to do.
type Flusher struct {
	registry DirtyFlusher
	interval time.Duration
	log      *slog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// NewFlusher creates a flusher. A zero interval defaults to 10 seconds.
func NewFlusher(registry DirtyFlusher, interval time.Duration, logger *slog.Logger) *Flusher {
	if interval == 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Flusher{
		registry: registry,
		interval: interval,
		log:      logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the flush loop.
func (f *Flusher) Start() {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return
	}
	f.running = true
	f.mu.Unlock()

	f.wg.Add(1)
	go f.run()
	f.log.Info("guild flusher started", slog.Duration("interval", f.interval))
}

// Stop ends the loop after one final flush pass.
func (f *Flusher) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	f.mu.Unlock()

	close(f.stopCh)
	f.wg.Wait()
	f.log.Info("guild flusher stopped")
}

func (f *Flusher) run() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.flush()
		case <-f.stopCh:
			f.flush()
			return
		}
	}
}

func (f *Flusher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), f.interval)
	defer cancel()

	if n := f.registry.FlushDirty(ctx); n > 0 {
		f.log.Debug("flushed dirty guilds", slog.Int("count", n))
	}
}
