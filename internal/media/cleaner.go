package media

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// CleanerConfig controls the concurrency characteristics of the cleaner.
type CleanerConfig struct {
	QueueSize int
	Workers   int
}

// Cleaner asynchronously deletes stored assets after their owning entity
// is removed. Deletion is best effort: failures are logged and never
// propagate to the caller that enqueued them.
type Cleaner struct {
	storage Storage
	logger  *slog.Logger

	jobs chan string
	wg   sync.WaitGroup
	once sync.Once

	// mu orders in-flight Enqueue sends against closing jobs: Shutdown
	// takes the write lock, so no send can race the close.
	mu     sync.RWMutex
	closed bool
}

var errCleanerClosed = errors.New("asset cleaner closed")

// NewCleaner constructs a background worker pool that deletes assets.
func NewCleaner(storage Storage, cfg CleanerConfig, logger *slog.Logger) *Cleaner {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Cleaner{
		storage: storage,
		logger:  logger,
		jobs:    make(chan string, cfg.QueueSize),
	}

	c.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go c.worker()
	}

	return c
}

// Enqueue schedules deletion of the given asset locations. Empty
// locations are skipped.
func (c *Cleaner) Enqueue(ctx context.Context, locations ...string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errCleanerClosed
	}
	for _, location := range locations {
		if location == "" {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c.jobs <- location:
		}
	}
	return nil
}

// Shutdown waits for the worker pool to drain outstanding jobs.
func (c *Cleaner) Shutdown(ctx context.Context) error {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.jobs)
		c.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (c *Cleaner) worker() {
	defer c.wg.Done()

	for location := range c.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := c.storage.Delete(ctx, location); err != nil {
			c.logger.Warn("asset cleanup failed", "location", location, "error", err)
		}
		cancel()
	}
}
