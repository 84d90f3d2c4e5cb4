package obfuscate

import (
	"context"
	"sync"

	"github.com/math-2025/protected-geo/logging"
)

// Engine is the type that processes the batch encryption/decryption work units pushed by a Tap.
type Engine struct {
	stream   *stream
	notify   bool
	progress chan *Result
	wg       *sync.WaitGroup
	cancel   context.CancelFunc
	workers  uint16
	log      logging.Logger

	// to prevent multiple go routines to run Start and Stop at the same time
	mux       sync.Mutex
	isRunning bool
	stopped   bool
}

// NewEngine creates a new engine with the given number of workers.
//
// If enableProgress is true, you need to read off the Progress channel,
// otherwise the workers will get blocked on the full channel.
func NewEngine(workers uint16, enableProgress bool, logger logging.Logger, tap Tap) *Engine {
	if workers == 0 {
		workers = 1
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		stream:   newStream(workers, tap),
		progress: make(chan *Result),
		wg:       &sync.WaitGroup{},
		notify:   enableProgress,
		workers:  workers,
		log:      logger,
	}
}

// Progress returns the channel on which the engine reports the status of every work unit.
// The channel gets closed once the engine stops.
func (e *Engine) Progress() <-chan *Result {
	return e.progress
}

// Start starts the workers and opens the tap. It's safe to call this method on a running engine.
// A stopped engine cannot be restarted.
func (e *Engine) Start() {
	e.mux.Lock()
	defer e.mux.Unlock()

	if e.isRunning || e.stopped {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	for i := 0; i < int(e.workers); i++ {
		e.wg.Add(1)
		go e.monitorStream(ctx)
	}
	e.stream.open()
	e.isRunning = true
	e.log.Debug("engine started", "workers", e.workers)
}

// Stop cancels the in-progress work units, closes the tap and waits for the workers to return.
// Every work unit taken off the tap is still handed to a worker, so its callback always runs.
// It's safe to call this function on a stopped engine
func (e *Engine) Stop() {
	e.mux.Lock()
	defer e.mux.Unlock()

	if !e.isRunning {
		return
	}
	e.cancel()
	e.stream.shutdown()
	e.wg.Wait()
	close(e.progress)
	e.isRunning = false
	e.stopped = true
	e.log.Debug("engine stopped")
}

// Wait blocks until the tap closes its request channel and every queued work unit has been processed,
// then stops the engine. Use it with taps which close themselves, like FileTap.
func (e *Engine) Wait() {
	e.wg.Wait()
	e.Stop()
}

// IsON returns true if the engine is running
func (e *Engine) IsON() bool {
	e.mux.Lock()
	defer e.mux.Unlock()
	return e.isRunning
}

func (e *Engine) reportProgress(r *Result) {
	if e.notify {
		e.progress <- r
	}
}

func (e *Engine) monitorStream(ctx context.Context) {
	defer e.wg.Done()
	// the tube gets closed on shutdown. Units queued after cancellation finish as Cancelled.
	for wu := range e.stream.tube {
		e.process(ctx, wu)
	}
}

func (e *Engine) process(ctx context.Context, wu *WorkUnit) {
	e.reportProgress(&Result{
		Status:   Queued,
		Metadata: wu.Metadata,
	})

	wu.Error = wu.Task.run(ctx, wu.key)
	status := wu.Task.Status()
	if wu.Error != nil {
		e.log.Error("batch failed", "mode", wu.Task.Mode(), "err", wu.Error)
	} else {
		e.log.Debug("batch processed", "mode", wu.Task.Mode(), "status", status, "entries", wu.Task.Entries())
	}

	wu.callBack()
	e.reportProgress(&Result{
		Error:    wu.Error,
		Status:   status,
		Entries:  wu.Task.Entries(),
		Metadata: wu.Metadata,
	})
}
