package taps

import (
	"sync"

	"github.com/math-2025/protected-geo/obfuscate"
)

// FileTap is a tap which pushes a fixed list of batch files into the engine and closes its
// request channel once all of them have been dispatched.
type FileTap struct {
	*batchTap
	files []string

	openOnce  sync.Once
	closeOnce sync.Once

	// to prevent multiple go routines to run
	// Open and Close at the same time
	mux    sync.Mutex
	isOpen bool
}

// NewFileTap creates a new file tap which writes the processed files into the target directory.
//
// If you have enabled error notification or progress report, you need to make sure that you
// read off the Errors and Progress channels, otherwise the tap will get blocked.
func NewFileTap(files []string, target string, key *obfuscate.Key, opts Options) (*FileTap, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	b, err := newBatchTap(key, "", target, opts)
	if err != nil {
		return nil, err
	}
	return &FileTap{
		batchTap: b,
		files:    files,
	}, nil
}

// Open starts dispatching the files.
// You SHOULD NOT call this method explicitly when you use the tap with an Engine object.
func (f *FileTap) Open() {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.openOnce.Do(func() {
		f.wg.Add(1)
		go f.dispatchAll()
		f.isOpen = true
	})
}

// Close stops dispatching and releases the resources.
// NOTE: You don't need to explicitly call this function when you are using the tap
// with an Engine
func (f *FileTap) Close() {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.closeOnce.Do(func() {
		f.shutdown()
		f.isOpen = false
	})
}

// IsOpen returns true if the tap is open
func (f *FileTap) IsOpen() bool {
	f.mux.Lock()
	defer f.mux.Unlock()
	return f.isOpen
}

func (f *FileTap) dispatchAll() {
	defer f.wg.Done()
	for _, path := range f.files {
		if !f.dispatch(path, "") {
			return
		}
	}
	f.closeRequests()
}
