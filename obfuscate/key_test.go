package obfuscate

import (
	"testing"

	"github.com/math-2025/protected-geo/assert"
)

func TestNewKey(t *testing.T) {
	testCases := []struct {
		title       string
		secret      string
		expectError bool
	}{
		{
			title:       "empty_secret_is_not_valid",
			secret:      "",
			expectError: true,
		},
		{
			title:       "whitespace_secret_is_not_valid",
			secret:      "   ",
			expectError: true,
		},
		{
			title:  "single_character_secret_is_valid",
			secret: "a",
		},
		{
			title:  "long_secret_is_valid",
			secret: "a much longer operational key with spaces",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.title, func(t *testing.T) {
			key, err := NewKey(tc.secret)
			if !assert.Errors(t, tc.expectError, err, assert.Fields{"secret": tc.secret}) {
				if tc.expectError && !IsEmptyKey(err) {
					t.Errorf("expected '%v' error, actual '%v'", errEmptyKey, err)
				}
				return
			}
			if !key.isValid() {
				t.Errorf("invalid key: %+v", key)
			}
			if key.Seed() != DeriveSeed(tc.secret) {
				t.Errorf("expected seed %d, actual %d", DeriveSeed(tc.secret), key.Seed())
			}
		})
	}
}

func TestKeyValidate(t *testing.T) {
	key, err := NewKey("commander")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !key.Validate("commander") {
		t.Error("the same secret must be valid")
	}
	if key.Validate("Commander") {
		t.Error("a different secret must not be valid")
	}

	var nilKey *Key
	if nilKey.Validate("commander") {
		t.Error("a nil key must not validate any secret")
	}
}

func TestKeyEncryptMatchesEncryptCoordinates(t *testing.T) {
	key, err := NewKey("commander")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := Coordinate{Lat: 40.4093, Lng: 49.8671}
	enc := key.Encrypt(in)
	expected := EncryptCoordinates(in.Lat, in.Lng, "commander")

	fields := assert.Fields{"key": "commander"}
	assert.Exact(t, expected.Lat, enc.Lat, fields)
	assert.Exact(t, expected.Lng, enc.Lng, fields)

	back := key.Decrypt(enc.Coordinate)
	if !Matches(in, back, 1e-6) {
		t.Errorf("expected %v, actual %v", in, back)
	}
}
