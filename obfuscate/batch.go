package obfuscate

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// Document is a batch of coordinates and messages.
//
//	[[coordinate]]
//	id = "alpha"
//	lat = 40.4093
//	lng = 49.8671
//
//	[[message]]
//	id = "m1"
//	text = "Hold position"
type Document struct {
	Coordinates []CoordinateEntry `toml:"coordinate"`
	Messages    []MessageEntry    `toml:"message"`
}

// CoordinateEntry is a coordinate of a batch document.
// Steps are only populated on encrypted documents when tracing is enabled.
type CoordinateEntry struct {
	ID    string      `toml:"id"`
	Lat   float64     `toml:"lat"`
	Lng   float64     `toml:"lng"`
	Steps []StepEntry `toml:"step,omitempty"`
}

// StepEntry is the serialised form of a DerivationStep
type StepEntry struct {
	Name    string  `toml:"name"`
	Lat     float64 `toml:"lat"`
	Lng     float64 `toml:"lng"`
	Details string  `toml:"details"`
}

// MessageEntry is a message of a batch document.
// Plain documents carry Text, encrypted documents carry Cipher.
type MessageEntry struct {
	ID     string `toml:"id"`
	Text   string `toml:"text,omitempty"`
	Cipher string `toml:"cipher,omitempty"`
}

// Len returns the number of entries in the document
func (d *Document) Len() int {
	return len(d.Coordinates) + len(d.Messages)
}

// ReadDocument decodes a TOML batch document
func ReadDocument(r io.Reader) (*Document, error) {
	var doc Document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidBatch, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %q", errInvalidBatch, undecoded[0].String())
	}
	return &doc, nil
}

// WriteDocument encodes the document as TOML
func WriteDocument(w io.Writer, doc *Document) error {
	return toml.NewEncoder(w).Encode(doc)
}

func newStepEntries(steps []DerivationStep) []StepEntry {
	entries := make([]StepEntry, len(steps))
	for i, s := range steps {
		entries[i] = StepEntry{
			Name:    s.Name,
			Lat:     s.Coordinate.Lat,
			Lng:     s.Coordinate.Lng,
			Details: s.Details,
		}
	}
	return entries
}
