// Package store persists decoys: the obfuscated public stand-ins of operation targets.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/math-2025/protected-geo/obfuscate"
)

var (
	// ErrNotFound is returned when the requested decoy does not exist
	ErrNotFound = errors.New("decoy not found")
	// ErrInvalidDecoy is returned when a decoy cannot be created or stored
	ErrInvalidDecoy = errors.New("invalid decoy")
)

var publicNames = []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta"}

// PublicName returns the rotating public name of the decoy at the given index
func PublicName(index int) string {
	n := len(publicNames)
	return "Company " + publicNames[((index%n)+n)%n]
}

// Step is the stored form of a derivation step
type Step struct {
	Name      string  `json:"name" bson:"name"`
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	Details   string  `json:"details" bson:"details"`
}

// Decoy is the publicly visible, obfuscated position of an operation target
type Decoy struct {
	ID                string    `json:"id" bson:"_id"`
	PublicName        string    `json:"publicName" bson:"public_name"`
	Latitude          float64   `json:"latitude" bson:"latitude"`
	Longitude         float64   `json:"longitude" bson:"longitude"`
	OperationTargetID string    `json:"operationTargetId" bson:"operation_target_id"`
	Steps             []Step    `json:"derivationSteps" bson:"derivation_steps"`
	OriginalLat       float64   `json:"originalLat" bson:"original_lat"`
	OriginalLng       float64   `json:"originalLng" bson:"original_lng"`
	KeyFingerprint    string    `json:"keyFingerprint" bson:"key_fingerprint"`
	CreatedAt         time.Time `json:"createdAt" bson:"created_at"`
}

// NewDecoy obfuscates the original position of the target with the key
func NewDecoy(publicName, targetID string, original obfuscate.Coordinate, key *obfuscate.Key) (*Decoy, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: the key cannot be nil", ErrInvalidDecoy)
	}
	if strings.TrimSpace(targetID) == "" {
		return nil, fmt.Errorf("%w: the operation target id cannot be empty", ErrInvalidDecoy)
	}
	if strings.TrimSpace(publicName) == "" {
		return nil, fmt.Errorf("%w: the public name cannot be empty", ErrInvalidDecoy)
	}

	enc := key.Encrypt(original)
	steps := enc.Steps()
	stored := make([]Step, len(steps))
	for i, s := range steps {
		stored[i] = Step{
			Name:      s.Name,
			Latitude:  s.Coordinate.Lat,
			Longitude: s.Coordinate.Lng,
			Details:   s.Details,
		}
	}

	return &Decoy{
		ID:                uuid.NewString(),
		PublicName:        publicName,
		Latitude:          enc.Lat,
		Longitude:         enc.Lng,
		OperationTargetID: targetID,
		Steps:             stored,
		OriginalLat:       original.Lat,
		OriginalLng:       original.Lng,
		KeyFingerprint:    key.Fingerprint(),
		CreatedAt:         time.Now().UTC(),
	}, nil
}

// Encrypted returns the public position of the decoy
func (d *Decoy) Encrypted() obfuscate.Coordinate {
	return obfuscate.Coordinate{Lat: d.Latitude, Lng: d.Longitude}
}

// Original returns the real position of the target
func (d *Decoy) Original() obfuscate.Coordinate {
	return obfuscate.Coordinate{Lat: d.OriginalLat, Lng: d.OriginalLng}
}

// Verify decrypts the public position with the key and reports whether it lands within
// the tolerance of the original position. A wrong key is never reported as an error.
func (d *Decoy) Verify(key *obfuscate.Key, tolerance float64) (obfuscate.Coordinate, bool) {
	if key == nil {
		return obfuscate.Coordinate{}, false
	}
	decrypted := key.Decrypt(d.Encrypted())
	return decrypted, obfuscate.Matches(decrypted, d.Original(), tolerance)
}

func (d *Decoy) validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil decoy", ErrInvalidDecoy)
	}
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: the id cannot be empty", ErrInvalidDecoy)
	}
	return nil
}

func (d *Decoy) clone() *Decoy {
	c := *d
	c.Steps = append([]Step(nil), d.Steps...)
	return &c
}

// Store is the interface for the decoy persistence backends
type Store interface {
	// Save creates or replaces the decoy
	Save(ctx context.Context, d *Decoy) error
	// Get returns the decoy or ErrNotFound
	Get(ctx context.Context, id string) (*Decoy, error)
	// ListByTarget returns the decoys of an operation target, oldest first
	ListByTarget(ctx context.Context, targetID string) ([]*Decoy, error)
	// Delete removes the decoy or returns ErrNotFound
	Delete(ctx context.Context, id string) error
	// DeleteByTarget removes all the decoys of an operation target and returns how many were removed
	DeleteByTarget(ctx context.Context, targetID string) (int, error)
	// Close releases the backend's resources
	Close(ctx context.Context) error
}

func sortDecoys(decoys []*Decoy) {
	sort.Slice(decoys, func(i, j int) bool {
		if decoys[i].CreatedAt.Equal(decoys[j].CreatedAt) {
			return decoys[i].ID < decoys[j].ID
		}
		return decoys[i].CreatedAt.Before(decoys[j].CreatedAt)
	})
}
