package taps

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/radovskyb/watcher"
	"github.com/rjeczalik/notify"

	"github.com/math-2025/protected-geo/obfuscate"
	"github.com/math-2025/protected-geo/taps/filesystem"
)

const (
	defaultPollingInterval = time.Second
	defaultSettleTime      = 2 * time.Second
	minimumTick            = 10 * time.Millisecond
)

// WatcherOptions the behaviour of a directory watcher tap
type WatcherOptions struct {
	Options
	// PollingInterval is the frequency of checking the source directory for new files.
	// It's ignored if Native is true.
	PollingInterval time.Duration
	// SettleTime is how long a file must stay untouched before being processed
	SettleTime time.Duration
	// Native uses the operating system's file system notifications instead of polling
	Native bool
}

// DirectoryWatcherTap is a tap which monitors a source directory and processes every batch file
// created or written in it into the target directory, mirroring the sub-directories.
type DirectoryWatcherTap struct {
	*batchTap
	source   string
	polling  time.Duration
	settle   time.Duration
	native   bool
	queue    *filesystem.Queue
	poller   *watcher.Watcher
	fsEvents chan notify.EventInfo

	openOnce  sync.Once
	closeOnce sync.Once

	// to prevent multiple go routines to run
	// Open and Close at the same time
	mux    sync.Mutex
	isOpen bool
}

// NewDirectoryWatcherTap creates a new instance of directory watcher tap.
//
// "source" and "target" are the paths to source and destination directories. They will get created
// by the tap if they don't already exist.
//
// If you have enabled error notification or progress report, you need to make sure that you
// read off the Errors and Progress channels, otherwise the tap will get blocked.
func NewDirectoryWatcherTap(source, target string, key *obfuscate.Key, opts WatcherOptions) (*DirectoryWatcherTap, error) {
	src, err := createDirIfNotExist(source)
	if err != nil {
		return nil, err
	}
	b, err := newBatchTap(key, src, target, opts.Options)
	if err != nil {
		return nil, err
	}

	if opts.PollingInterval < time.Millisecond {
		opts.PollingInterval = defaultPollingInterval
	}
	if opts.SettleTime <= 0 {
		opts.SettleTime = defaultSettleTime
	}

	d := &DirectoryWatcherTap{
		batchTap: b,
		source:   src,
		polling:  opts.PollingInterval,
		settle:   opts.SettleTime,
		native:   opts.Native,
		queue:    filesystem.NewQueue(opts.SettleTime),
	}

	if opts.Native {
		// notify drops the events the receiver cannot keep up with
		d.fsEvents = make(chan notify.EventInfo, 16)
		return d, nil
	}

	d.poller = watcher.New()
	d.poller.FilterOps(watcher.Create, watcher.Write)
	d.poller.IgnoreHiddenFiles(true)
	if err := d.poller.AddRecursive(src); err != nil {
		return nil, err
	}
	return d, nil
}

// Open starts watching the source directory.
// The batch files which already exist in the source directory get processed straight away.
// You SHOULD NOT call this method explicitly when you use the tap with an Engine object.
func (d *DirectoryWatcherTap) Open() {
	d.mux.Lock()
	defer d.mux.Unlock()

	d.openOnce.Do(func() {
		if d.native {
			if err := notify.Watch(filepath.Join(d.source, "..."), d.fsEvents, notify.Create, notify.Write); err != nil {
				go d.reportError(fmt.Errorf("failed to watch '%s': %w", d.source, err))
			} else {
				d.wg.Add(1)
				go d.listen()
			}
		} else {
			d.wg.Add(2)
			go func() {
				defer d.wg.Done()
				if err := d.poller.Start(d.polling); err != nil {
					d.reportError(err)
				}
			}()
			d.poller.Wait()
			go d.poll()
		}

		d.wg.Add(1)
		go d.dispatchSettledFiles()
		d.isOpen = true
	})
}

// Close stops the directory watcher and releases the resources.
// NOTE: You don't need to explicitly call this function when you are using the tap
// with an Engine
func (d *DirectoryWatcherTap) Close() {
	d.mux.Lock()
	defer d.mux.Unlock()

	d.closeOnce.Do(func() {
		if d.native {
			notify.Stop(d.fsEvents)
		} else {
			d.poller.Close()
		}
		d.shutdown()
		d.isOpen = false
	})
}

// IsOpen returns true if the tap is open
func (d *DirectoryWatcherTap) IsOpen() bool {
	d.mux.Lock()
	defer d.mux.Unlock()
	return d.isOpen
}

// poll keeps reading the polling watcher's events until the watcher gets closed
func (d *DirectoryWatcherTap) poll() {
	defer d.wg.Done()
	for {
		select {
		case event := <-d.poller.Event:
			if event.IsDir() {
				continue
			}
			d.enqueue(event.Path)
		case err := <-d.poller.Error:
			d.reportError(err)
		case <-d.poller.Closed:
			return
		}
	}
}

func (d *DirectoryWatcherTap) listen() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case ei := <-d.fsEvents:
			d.enqueue(ei.Path())
		}
	}
}

func (d *DirectoryWatcherTap) enqueue(path string) {
	if !isBatchFile(path) {
		return
	}
	if err := d.queue.AddOrUpdate(path); err != nil {
		d.reportError(fmt.Errorf("failed to queue '%s': %w", path, err))
	}
}

func (d *DirectoryWatcherTap) dispatchSettledFiles() {
	defer d.wg.Done()
	if !d.processExistingFiles() {
		return
	}

	tick := d.settle / 2
	if tick < minimumTick {
		tick = minimumTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			for _, path := range d.queue.Ready() {
				if !d.dispatchFile(path) {
					return
				}
			}
		}
	}
}

func (d *DirectoryWatcherTap) processExistingFiles() bool {
	var existing []string
	err := filepath.WalkDir(d.source, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			d.reportError(err)
			return nil
		}
		if !entry.IsDir() && isBatchFile(path) {
			existing = append(existing, path)
		}
		return nil
	})
	if err != nil {
		d.reportError(err)
	}
	for _, path := range existing {
		if !d.dispatchFile(path) {
			return false
		}
	}
	return true
}

func (d *DirectoryWatcherTap) dispatchFile(path string) bool {
	subDir, err := filepath.Rel(d.source, filepath.Dir(path))
	if err != nil {
		d.reportError(fmt.Errorf("failed to resolve '%s': %w", path, err))
		return true
	}
	return d.dispatch(path, subDir)
}
