// Package taps provides file system taps which feed batch documents into an obfuscate.Engine
package taps

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/math-2025/protected-geo/obfuscate"
)

const (
	batchExtension        = ".toml"
	encryptedSuffix       = ".enc"
	decryptedSuffix       = ".dec"
	outputMetadataKey     = "output"
	inputMetadataKey      = "input"
	outputFullMetadataKey = "output_full_path"
	inputFullMetadataKey  = "input_full_path"
)

// File file
type File struct {
	// Name file name
	Name string
	// Path file full path
	Path string
}

// Result represents the progress details of a batch file
type Result struct {
	// Status the status of the operation
	Status obfuscate.Status
	// Error the error details of a failed batch
	Error error
	// Entries the number of processed entries
	Entries int
	// Input input file
	Input File
	// Output output file
	Output File
}

// Options the behaviour shared by all the file system taps
type Options struct {
	// Mode encrypt or decrypt the batch files
	Mode obfuscate.Operation
	// Trace includes the derivation steps in the encrypted output
	Trace bool
	// NotifyErrors reports the failures on the Errors channel
	NotifyErrors bool
	// ReportProgress reports the result of every file on the Progress channel
	ReportProgress bool
	// DeleteCompleted removes the input files which have been processed successfully
	DeleteCompleted bool
}

// batchTap turns batch files into work units and reports their results
type batchTap struct {
	key    *obfuscate.Key
	opts   Options
	root   string
	target string

	requests obfuscate.RequestChannel
	errors   chan error
	progress chan *Result
	done     chan struct{}
	wg       sync.WaitGroup

	// guards the notification channels against the sends after shutdown
	chMux        sync.RWMutex
	closed       bool
	requestsOnce sync.Once
}

func newBatchTap(key *obfuscate.Key, root, target string, opts Options) (*batchTap, error) {
	if key == nil {
		return nil, ErrNilKey
	}
	tg, err := createDirIfNotExist(target)
	if err != nil {
		return nil, err
	}
	return &batchTap{
		key:      key,
		opts:     opts,
		root:     root,
		target:   tg,
		requests: make(obfuscate.RequestChannel),
		errors:   make(chan error),
		progress: make(chan *Result),
		done:     make(chan struct{}),
	}, nil
}

// Requests returns the channel from which the engine receives the work units
func (b *batchTap) Requests() obfuscate.RequestChannel {
	return b.requests
}

// Errors returns a read-only channel on which you will receive the failure notifications.
//
// The channel only receives errors if the tap has been created with NotifyErrors on.
// It gets closed once the tap is closed.
func (b *batchTap) Errors() <-chan error {
	return b.errors
}

// Progress returns a read-only channel on which you will receive the result of every batch file.
//
// The channel only receives results if the tap has been created with ReportProgress on.
// It gets closed once the tap is closed.
func (b *batchTap) Progress() <-chan *Result {
	return b.progress
}

func (b *batchTap) closeRequests() {
	b.requestsOnce.Do(func() {
		close(b.requests)
	})
}

// shutdown stops the background routines and closes all the channels
func (b *batchTap) shutdown() {
	close(b.done)
	b.wg.Wait()
	b.chMux.Lock()
	defer b.chMux.Unlock()
	b.closed = true
	b.closeRequests()
	close(b.errors)
	close(b.progress)
}

func (b *batchTap) reportError(err error) {
	if !b.opts.NotifyErrors {
		return
	}
	b.chMux.RLock()
	defer b.chMux.RUnlock()
	if b.closed {
		return
	}
	select {
	case b.errors <- err:
	case <-b.done:
	}
}

func (b *batchTap) reportProgress(r *Result) {
	if !b.opts.ReportProgress {
		return
	}
	b.chMux.RLock()
	defer b.chMux.RUnlock()
	if b.closed {
		return
	}
	select {
	case b.progress <- r:
	case <-b.done:
	}
}

// dispatch pushes the batch file into the request channel.
// It returns false if the tap has been closed in the meantime.
func (b *batchTap) dispatch(path, subDir string) bool {
	inputFullPath, err := filepath.Abs(path)
	if err != nil {
		b.reportError(fmt.Errorf("failed to resolve '%s': %w", path, err))
		return true
	}
	input, err := os.Open(inputFullPath)
	if err != nil {
		b.reportError(fmt.Errorf("failed to open '%s': %w", path, err))
		return true
	}

	name := filepath.Base(inputFullPath)
	outName := outputName(name, b.opts.Mode)
	output, outputFullPath, err := b.createOutputFile(outName, subDir)
	if err != nil {
		_ = input.Close()
		b.reportError(fmt.Errorf("failed to create '%s': %w", outputFullPath, err))
		return true
	}

	t := obfuscate.NewTask(b.opts.Mode, input, output)
	if b.opts.Trace {
		_ = t.EnableTrace()
	}
	w := obfuscate.NewWorkUnit(t, b.key, b.whenDone)
	w.Metadata[inputMetadataKey] = name
	w.Metadata[outputMetadataKey] = outName
	w.Metadata[inputFullMetadataKey] = inputFullPath
	w.Metadata[outputFullMetadataKey] = outputFullPath

	select {
	case b.requests <- w:
		return true
	case <-b.done:
		_ = input.Close()
		_ = output.Close()
		_ = os.Remove(outputFullPath)
		return false
	}
}

// whenDone is a callback method which will get called by the engine once the
// processing of a work unit has been finished
func (b *batchTap) whenDone(w *obfuscate.WorkUnit) {
	input, output := parseMetadata(w.Metadata)
	status := w.Task.Status()

	if err := w.Task.CloseInput(); err != nil {
		b.reportError(fmt.Errorf("failed to close '%s': %w", input.Name, err))
	}
	if err := w.Task.CloseOutputs(); err != nil {
		b.reportError(fmt.Errorf("failed to close '%s': %w", output.Name, err))
	}

	if status != obfuscate.Completed {
		if err := os.Remove(output.Path); err != nil && !os.IsNotExist(err) {
			b.reportError(fmt.Errorf("failed to remove '%s': %w", output.Name, err))
		}
	} else if b.opts.DeleteCompleted {
		if err := os.Remove(input.Path); err != nil {
			b.reportError(fmt.Errorf("failed to remove '%s': %w", input.Name, err))
		} else if b.root != "" {
			b.removeEmptyParents(filepath.Dir(input.Path))
		}
	}

	b.reportProgress(&Result{
		Status:  status,
		Error:   w.Error,
		Entries: w.Task.Entries(),
		Input:   input,
		Output:  output,
	})
}

func (b *batchTap) createOutputFile(name, subDir string) (*os.File, string, error) {
	abs, err := createDirIfNotExist(filepath.Join(b.target, subDir))
	if err != nil {
		return nil, name, err
	}
	abs = filepath.Join(abs, name)
	output, err := os.Create(abs)
	return output, abs, err
}

// removeEmptyParents removes the empty directories between dir and the root of the tap
func (b *batchTap) removeEmptyParents(dir string) {
	for dir != b.root && strings.HasPrefix(dir, b.root) {
		if !isDirEmpty(dir) {
			return
		}
		if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
			b.reportError(fmt.Errorf("failed to remove '%s' directory: %w", dir, err))
			return
		}
		dir = filepath.Dir(dir)
	}
}

func parseMetadata(metadata obfuscate.MetadataMap) (File, File) {
	return File{
			Name: metadata[inputMetadataKey].(string),
			Path: metadata[inputFullMetadataKey].(string),
		},
		File{
			Name: metadata[outputMetadataKey].(string),
			Path: metadata[outputFullMetadataKey].(string),
		}
}

// outputName "route.toml" becomes "route.enc.toml" once encrypted, and "route.dec.toml" once decrypted back
func outputName(name string, mode obfuscate.Operation) string {
	base := strings.TrimSuffix(name, batchExtension)
	if mode == obfuscate.Encode {
		return base + encryptedSuffix + batchExtension
	}
	return strings.TrimSuffix(base, encryptedSuffix) + decryptedSuffix + batchExtension
}

func isBatchFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, batchExtension) && !strings.HasPrefix(name, ".")
}

func createDirIfNotExist(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir, err
	}
	fi, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return abs, os.MkdirAll(abs, os.ModePerm)
	}
	if err != nil {
		return abs, err
	}
	if !fi.IsDir() {
		return abs, ErrInvalidDirectory
	}
	return abs, nil
}

func isDirEmpty(name string) bool {
	entries, err := os.ReadDir(name)
	if err != nil {
		return false
	}
	return len(entries) == 0
}
