package taps

import "errors"

var (
	// ErrInvalidDirectory raised if the specified path is not a valid path to a directory
	ErrInvalidDirectory = errors.New("the specified path is not a directory")
	// ErrNilKey raised if a tap gets created without a key
	ErrNilKey = errors.New("the key cannot be nil")
	// ErrNoFiles raised if a file tap gets created with an empty file list
	ErrNoFiles = errors.New("no input file has been specified")
)
