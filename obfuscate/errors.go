package obfuscate

import "errors"

var (
	errEmptyKey     = errors.New("key cannot be empty")
	errInvalidKey   = errors.New("invalid key")
	errInvalidBatch = errors.New("invalid batch document")

	// ErrOperationInProgress is the result of any invalid operation on an entity which is already being processed
	ErrOperationInProgress = errors.New("the operation is in progress")
	// ErrClosedTap will be raised if the user tries to push work units from a closed Tap
	ErrClosedTap = errors.New("cannot push from a closed tap")
)

// IsEmptyKey returns true if the error has been raised because of an empty key
func IsEmptyKey(err error) bool {
	return errors.Is(err, errEmptyKey)
}
