// Package filesystem debounces file system events until files stop changing
package filesystem

import (
	"os"
	"sort"
	"sync"
	"time"
)

// Queue holds the files which have been created or written, until they settle
type Queue struct {
	settle   time.Duration
	now      func() time.Time
	mux      sync.Mutex
	monitors map[string]*fileMonitor
}

// NewQueue creates a queue which reports a file as ready once it has not been written for the settle duration
func NewQueue(settle time.Duration) *Queue {
	return &Queue{
		settle:   settle,
		now:      time.Now,
		monitors: make(map[string]*fileMonitor),
	}
}

// AddOrUpdate queues the file or refreshes its last update time if it's already queued.
// Directories and files which no longer exist are ignored.
func (q *Queue) AddOrUpdate(path string) error {
	q.mux.Lock()
	defer q.mux.Unlock()
	if m, ok := q.monitors[path]; ok {
		m.update(q.now())
		return nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if fi.IsDir() {
		return nil
	}
	q.monitors[path] = newFileMonitor(path, q.now())
	return nil
}

// Remove removes the file from the queue
func (q *Queue) Remove(path string) {
	q.mux.Lock()
	defer q.mux.Unlock()
	delete(q.monitors, path)
}

// Ready removes and returns the files which have settled, sorted by path
func (q *Queue) Ready() []string {
	q.mux.Lock()
	defer q.mux.Unlock()
	now := q.now()
	var ready []string
	for path, m := range q.monitors {
		if m.isReady(now, q.settle) {
			ready = append(ready, path)
			delete(q.monitors, path)
		}
	}
	sort.Strings(ready)
	return ready
}

// Len returns the number of queued files
func (q *Queue) Len() int {
	q.mux.Lock()
	defer q.mux.Unlock()
	return len(q.monitors)
}
