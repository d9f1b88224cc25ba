package media

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"
)

type recordingStorage struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (s *recordingStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	return "", errors.New("not used")
}

func (s *recordingStorage) Delete(ctx context.Context, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, location)
	return s.err
}

func (s *recordingStorage) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string(nil), s.deleted...)
	sort.Strings(out)
	return out
}

func TestCleanerDeletesEnqueuedAssets(t *testing.T) {
	storage := &recordingStorage{}
	cleaner := NewCleaner(storage, CleanerConfig{QueueSize: 4, Workers: 2}, nil)

	if err := cleaner.Enqueue(context.Background(), "a.mp4", "", "b.png"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cleaner.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	got := storage.snapshot()
	if len(got) != 2 || got[0] != "a.mp4" || got[1] != "b.png" {
		t.Fatalf("deleted %v, empty locations must be skipped", got)
	}
}

func TestCleanerRejectsEnqueueAfterShutdown(t *testing.T) {
	cleaner := NewCleaner(&recordingStorage{}, CleanerConfig{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cleaner.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := cleaner.Enqueue(context.Background(), "late.mp4"); err == nil {
		t.Fatalf("enqueue after shutdown must fail")
	}
}

func TestCleanerEnqueueRacingShutdownDoesNotPanic(t *testing.T) {
	for i := 0; i < 50; i++ {
		cleaner := NewCleaner(&recordingStorage{}, CleanerConfig{QueueSize: 1, Workers: 1}, nil)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if err := cleaner.Enqueue(context.Background(), "asset.mp4"); err != nil {
					if !errors.Is(err, errCleanerClosed) {
						t.Errorf("enqueue: %v", err)
					}
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := cleaner.Shutdown(ctx); err != nil {
				t.Errorf("shutdown: %v", err)
			}
		}()
		wg.Wait()
	}
}

func TestCleanerFailuresDoNotBlockDraining(t *testing.T) {
	storage := &recordingStorage{err: errors.New("upstream down")}
	cleaner := NewCleaner(storage, CleanerConfig{Workers: 1}, nil)

	if err := cleaner.Enqueue(context.Background(), "a.mp4", "b.png"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cleaner.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if got := storage.snapshot(); len(got) != 2 {
		t.Fatalf("all jobs must still be attempted: %v", got)
	}
}
