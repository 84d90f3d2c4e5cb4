// Package assert includes some helper methods used for testing
package assert

import (
	"math"
	"testing"
)

// Errors checks the validity of the expected error and returns false if the assertion failed
// or no further checks are needed because an error was expected
func Errors(t *testing.T, expectError bool, err error, fields Fields) bool {
	t.Helper()

	if expectError && err == nil {
		t.Errorf("Expected an error, but received 'nil' (%s)", fields.String())
	}

	if !expectError && err != nil {
		t.Errorf("No error was expected, but received '%v' (%s)", err, fields.String())
	}

	return !expectError && err == nil
}

// Near checks that actual is within tolerance of expected and returns false if the assertion failed
func Near(t *testing.T, expected, actual, tolerance float64, fields Fields) bool {
	t.Helper()

	if math.IsNaN(actual) || math.Abs(expected-actual) > tolerance {
		t.Errorf("Expected %v (±%g), but received %v (%s)", expected, tolerance, actual, fields.String())
		return false
	}
	return true
}

// Exact checks that actual is bit for bit equal to expected and returns false if the assertion failed
func Exact(t *testing.T, expected, actual float64, fields Fields) bool {
	t.Helper()

	if math.Float64bits(expected) != math.Float64bits(actual) {
		t.Errorf("Expected exactly %v, but received %v (%s)", expected, actual, fields.String())
		return false
	}
	return true
}
