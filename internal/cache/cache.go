package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Cache is the read-through store used for month query results.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Purge drops every entry, used after the backing data changes.
	Purge()
	Size() int
}

// Cleaner is implemented by caches that expire entries lazily.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically sweeps expired entries out of registered caches.
type Janitor struct {
	mu       sync.Mutex
	caches   []Cleaner
	stop     chan struct{}
	done     chan struct{}
	started  sync.Once
	stopOnce sync.Once
	running  bool
}

func NewJanitor() *Janitor {
	return &Janitor{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (j *Janitor) Register(c Cleaner) {
	j.mu.Lock()
	j.caches = append(j.caches, c)
	j.mu.Unlock()
}

// Start runs the sweep loop until Stop is called.
func (j *Janitor) Start(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	j.started.Do(func() {
		j.mu.Lock()
		j.running = true
		j.mu.Unlock()
		go j.run(interval)
	})
}

func (j *Janitor) run(interval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := j.Sweep(); n > 0 {
				slog.Debug("Swept expired cache entries", "removed", n)
			}
		case <-j.stop:
			return
		}
	}
}

// Sweep cleans every registered cache once and returns the number of
// entries removed.
func (j *Janitor) Sweep() int {
	j.mu.Lock()
	caches := append([]Cleaner(nil), j.caches...)
	j.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop ends the sweep loop. It is safe to call more than once, and safe to
// call when Start was never called.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stop)
	})
	j.mu.Lock()
	running := j.running
	j.mu.Unlock()
	if running {
		<-j.done
	}
}
