package filesystem

import (
	"sync"
	"time"
)

// fileMonitor tracks the last time a file was written
type fileMonitor struct {
	path       string
	mux        sync.Mutex
	lastUpdate time.Time
}

func newFileMonitor(path string, now time.Time) *fileMonitor {
	return &fileMonitor{
		path:       path,
		lastUpdate: now,
	}
}

func (m *fileMonitor) update(now time.Time) {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.lastUpdate = now
}

// isReady returns true if the file has not been written for longer than the settle time
func (m *fileMonitor) isReady(now time.Time, settle time.Duration) bool {
	m.mux.Lock()
	defer m.mux.Unlock()
	return now.Sub(m.lastUpdate) >= settle
}
