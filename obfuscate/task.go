package obfuscate

import (
	"context"
	"io"
	"sync"
)

// Operation represents the operation which needs to be done by a Task
type Operation int8

const (
	// Encode encrypts a plain batch document
	Encode Operation = iota
	// Decode decrypts an encrypted batch document
	Decode
)

// String returns the string representation of the operation
func (o Operation) String() string {
	if o == Encode {
		return "encode"
	}
	return "decode"
}

// Task is a unit of batch encryption/decryption work
type Task struct {
	mode  Operation
	input io.Reader
	trace bool

	status  Status
	entries int

	mux        sync.Mutex
	inProgress bool
	outputs    []io.Writer
}

// NewTask creates a new Task object
func NewTask(mode Operation, input io.Reader, output io.Writer) *Task {
	return &Task{
		mode:    mode,
		input:   input,
		outputs: []io.Writer{output},
		status:  Queued,
	}
}

// EnableTrace includes the derivation steps of every coordinate in the output of an Encode task.
// Calling this function on an in-progress Task will return ErrOperationInProgress error
func (t *Task) EnableTrace() error {
	t.mux.Lock()
	defer t.mux.Unlock()
	if t.inProgress {
		return ErrOperationInProgress
	}
	t.trace = true
	return nil
}

// AddOutput adds a new output to the Task.
// Calling this function on an in-progress Task will return ErrOperationInProgress error
func (t *Task) AddOutput(output io.Writer) error {
	t.mux.Lock()
	defer t.mux.Unlock()
	if t.inProgress {
		return ErrOperationInProgress
	}
	t.outputs = append(t.outputs, output)
	return nil
}

// CloseInput closes the input Reader.
// If the reader is not an io.Closer, calling this function will have no effect
func (t *Task) CloseInput() error {
	t.mux.Lock()
	defer t.mux.Unlock()
	if t.inProgress {
		return ErrOperationInProgress
	}
	if input, ok := t.input.(io.Closer); ok && input != nil {
		return input.Close()
	}
	return nil
}

// CloseOutputs closes all the output Writers.
// If an output is not an io.Closer, it will be skipped
func (t *Task) CloseOutputs() error {
	t.mux.Lock()
	defer t.mux.Unlock()
	if t.inProgress {
		return ErrOperationInProgress
	}
	for _, out := range t.outputs {
		if output, ok := out.(io.Closer); ok && output != nil {
			if err := output.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Mode returns the operation of the task
func (t *Task) Mode() Operation {
	return t.mode
}

// Status returns the current status of the task
func (t *Task) Status() Status {
	t.mux.Lock()
	defer t.mux.Unlock()
	return t.status
}

// Entries returns the number of entries processed by the task
func (t *Task) Entries() int {
	t.mux.Lock()
	defer t.mux.Unlock()
	return t.entries
}

func (t *Task) markAsInProgress() {
	t.mux.Lock()
	defer t.mux.Unlock()
	t.inProgress = true
}

func (t *Task) markAsComplete(status Status, entries int) {
	t.mux.Lock()
	defer t.mux.Unlock()
	t.status = status
	t.entries = entries
	t.inProgress = false
}

// run executes the task with the key and returns the processing error
func (t *Task) run(ctx context.Context, key *Key) error {
	t.markAsInProgress()
	var (
		status  Status
		entries int
		err     error
	)
	if t.mode == Encode {
		status, entries, err = NewEncoder(key, t.trace, t.input, t.outputs...).EncodeContext(ctx)
	} else {
		status, entries, err = NewDecoder(key, t.input, t.outputs...).DecodeContext(ctx)
	}
	t.markAsComplete(status, entries)
	return err
}
