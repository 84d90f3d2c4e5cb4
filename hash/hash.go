// Package hash implements the hash functions used to derive seeds and fingerprints from keys
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf16"
)

// Rolling31 returns the absolute value of the 32 bits polynomial rolling hash (h = h*31 + c) of the input.
//
// The hash runs over UTF-16 code units and wraps around on overflow, so the result
// is in [0, 2^31]. The value is returned as int64 because |math.MinInt32| does not fit into int32.
func Rolling31(in string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(in)) {
		h = h*31 + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// SHA224 returns a 28 bytes SHA224 hash of the input
func SHA224(in []byte) ([]byte, error) {
	h := sha256.New224()
	_, err := h.Write(in)
	if err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// Fingerprint returns the hex encoded SHA224 hash of the input
func Fingerprint(in string) (string, error) {
	sum, err := SHA224([]byte(in))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}
