package obfuscate

import (
	"strings"

	"github.com/math-2025/protected-geo/hash"
)

// Key is a validated obfuscation key.
// It caches the pipeline seed, so a Key can be reused across many coordinates.
type Key struct {
	// seed pipeline seed derived from the secret
	seed int64
	// fingerprint hex encoded SHA224 of the secret, safe to be stored next to the obfuscated data
	fingerprint string
}

// NewKey creates an obfuscation key from the provided secret
func NewKey(secret string) (*Key, error) {
	if len(strings.TrimSpace(secret)) == 0 {
		return nil, errEmptyKey
	}

	fp, err := hash.Fingerprint(secret)
	if err != nil {
		return nil, err
	}

	return &Key{
		seed:        DeriveSeed(secret),
		fingerprint: fp,
	}, nil
}

// Seed returns the pipeline seed
func (k *Key) Seed() int64 {
	return k.seed
}

// Fingerprint returns the hex encoded SHA224 hash of the secret
func (k *Key) Fingerprint() string {
	return k.fingerprint
}

// Validate returns true if the same secret has been used to create the key
func (k *Key) Validate(secret string) bool {
	if !k.isValid() {
		return false
	}
	fp, err := hash.Fingerprint(secret)
	if err != nil {
		return false
	}
	return fp == k.fingerprint
}

// Encrypt obfuscates the coordinate with the default pipeline
func (k *Key) Encrypt(c Coordinate) EncryptedCoordinate {
	return defaultPipeline.Encrypt(c, k.seed)
}

// Decrypt reverts Encrypt
func (k *Key) Decrypt(c Coordinate) Coordinate {
	return defaultPipeline.Decrypt(c, k.seed)
}

func (k *Key) isValid() bool {
	return k != nil && len(k.fingerprint) > 0
}
