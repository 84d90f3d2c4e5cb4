package obfuscate

import (
	"context"
	"io"
)

// Encoder is the type that encrypts a batch document read from an io.Reader into one or more io.Writer outputs
type Encoder struct {
	input  io.Reader
	output io.Writer
	key    *Key
	trace  bool
}

// NewEncoder creates a new Encoder object.
// If trace is true, the derivation steps of every coordinate will be written into the output.
func NewEncoder(key *Key, trace bool, input io.Reader, outputs ...io.Writer) *Encoder {
	return &Encoder{
		input:  input,
		output: io.MultiWriter(outputs...),
		key:    key,
		trace:  trace,
	}
}

// Encode encrypts the batch document into the specified io.Writer outputs.
// This methods will return an error if the key or the input document is invalid
func (e *Encoder) Encode() (Status, int, error) {
	return e.EncodeContext(context.Background())
}

// EncodeContext encrypts the batch document into the specified io.Writer outputs and checks the context
// for cancellation before processing each entry. It returns the number of processed entries.
//
// Nothing will be written into the outputs if the operation gets cancelled.
func (e *Encoder) EncodeContext(ctx context.Context) (Status, int, error) {
	if !e.key.isValid() {
		return Failed, 0, errInvalidKey
	}

	doc, err := ReadDocument(e.input)
	if err != nil {
		return Failed, 0, err
	}

	var processed int
	for i := range doc.Coordinates {
		if ctx.Err() != nil {
			return Cancelled, processed, nil
		}
		entry := &doc.Coordinates[i]
		enc := e.key.Encrypt(Coordinate{Lat: entry.Lat, Lng: entry.Lng})
		entry.Lat, entry.Lng = enc.Lat, enc.Lng
		entry.Steps = nil
		if e.trace {
			entry.Steps = newStepEntries(enc.Steps())
		}
		processed++
	}

	for i := range doc.Messages {
		if ctx.Err() != nil {
			return Cancelled, processed, nil
		}
		entry := &doc.Messages[i]
		entry.Cipher = EncryptMessage(entry.Text)
		entry.Text = ""
		processed++
	}

	if err := WriteDocument(e.output, doc); err != nil {
		return Failed, processed, err
	}
	return Completed, processed, nil
}
