package obfuscate

import (
	"context"
	"io"
)

// Decoder is the type that decrypts a batch document read from an io.Reader into one or more io.Writer outputs
type Decoder struct {
	input  io.Reader
	output io.Writer
	key    *Key
}

// NewDecoder creates a new Decoder object
func NewDecoder(key *Key, input io.Reader, outputs ...io.Writer) *Decoder {
	return &Decoder{
		input:  input,
		output: io.MultiWriter(outputs...),
		key:    key,
	}
}

// Decode decrypts the encrypted batch document into the specified Writer(s).
//
// The document must have been encrypted using the same key. Decrypting with a
// different key does not fail, it produces different coordinates.
func (d *Decoder) Decode() (Status, int, error) {
	return d.DecodeContext(context.Background())
}

// DecodeContext decrypts the encrypted batch document into the specified Writer(s) and checks the context
// for cancellation before processing each entry.
//
// Messages which cannot be decrypted are replaced with one of the DecryptMessage sentinels.
func (d *Decoder) DecodeContext(ctx context.Context) (Status, int, error) {
	if !d.key.isValid() {
		return Failed, 0, errInvalidKey
	}

	doc, err := ReadDocument(d.input)
	if err != nil {
		return Failed, 0, err
	}

	var processed int
	for i := range doc.Coordinates {
		if ctx.Err() != nil {
			return Cancelled, processed, nil
		}
		entry := &doc.Coordinates[i]
		c := d.key.Decrypt(Coordinate{Lat: entry.Lat, Lng: entry.Lng})
		entry.Lat, entry.Lng = c.Lat, c.Lng
		entry.Steps = nil
		processed++
	}

	for i := range doc.Messages {
		if ctx.Err() != nil {
			return Cancelled, processed, nil
		}
		entry := &doc.Messages[i]
		entry.Text = DecryptMessage(entry.Cipher)
		entry.Cipher = ""
		processed++
	}

	if err := WriteDocument(d.output, doc); err != nil {
		return Failed, processed, err
	}
	return Completed, processed, nil
}
