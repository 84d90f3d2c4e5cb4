package obfuscate

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Coordinate is a (latitude, longitude) pair.
// The pipeline does not constrain the domain, callers may use degrees or percentage-of-map values.
type Coordinate struct {
	Lat float64 `json:"lat" toml:"lat" bson:"lat"`
	Lng float64 `json:"lng" toml:"lng" bson:"lng"`
}

// Stage is one keyed, invertible coordinate transform of the pipeline.
//
// Forward and Inverse receive the stage seed of the stage's fixed pipeline index
// and must build their own Generator from it on every call.
type Stage interface {
	// Name returns the human readable name of the stage
	Name() string
	// Forward transforms the coordinate and returns a description of the calculation
	Forward(c Coordinate, seed int64) (Coordinate, string)
	// Inverse reverts what Forward did to a coordinate with the same seed
	Inverse(c Coordinate, seed int64) Coordinate
}

// fixed formats v with the given number of decimals.
// Exact binary ties round away from zero and negative zero prints without a sign,
// so the derivation text stays identical to the one stored with existing decoys.
func fixed(v float64, decimals int) string {
	if v == 0 {
		v = 0
	}
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return s
	}

	// |v| * 10^decimals is exact within 128 bits
	scaled := new(big.Float).SetPrec(128).SetFloat64(math.Abs(v))
	scaled.Mul(scaled, new(big.Float).SetPrec(128).SetFloat64(math.Pow10(decimals)))
	whole, _ := scaled.Int(nil)
	if scaled.Sub(scaled, new(big.Float).SetInt(whole)).Cmp(big.NewFloat(0.5)) != 0 {
		return s
	}

	digits := whole.Add(whole, big.NewInt(1)).String()
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	if decimals > 0 {
		digits = digits[:len(digits)-decimals] + "." + digits[len(digits)-decimals:]
	}
	if v < 0 {
		return "-" + digits
	}
	return digits
}

// integer formats a whole float64 value without decimals or exponent
func integer(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatCoordinate(c Coordinate) string {
	return "(" + fixed(c.Lat, 6) + ", " + fixed(c.Lng, 6) + ")"
}
