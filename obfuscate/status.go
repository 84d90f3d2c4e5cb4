package obfuscate

// Status the status of a batch operation
type Status int8

const (
	// Queued the batch is waiting for a worker
	Queued Status = iota
	// Completed every entry of the batch has been processed
	Completed
	// Cancelled the batch processing has been cancelled through its context
	Cancelled
	// Failed the batch could not be read, processed or written
	Failed
)

// IsFinal returns true if the batch will not be processed any further
func (s Status) IsFinal() bool {
	return s == Completed || s == Cancelled || s == Failed
}

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Queued:
		return "queued"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	}
	return "unknown"
}
