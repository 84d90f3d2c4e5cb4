package obfuscate

import (
	"fmt"
	"math"
	"strings"
)

const collatzIterations = 5

// CollatzDiffusion shifts the coordinate by offsets derived from the Collatz
// sequences of its integer parts. It does not consume the stage seed.
//
// The inverse recomputes the offsets from its own input instead of reusing the
// forward ones, so it is exact only when the forward shift keeps both integer
// parts unchanged.
type CollatzDiffusion struct{}

// Name returns the name of the stage
func (CollatzDiffusion) Name() string {
	return "Collatz Diffusion"
}

// Forward adds the latitude offset and subtracts the longitude offset
func (CollatzDiffusion) Forward(c Coordinate, _ int64) (Coordinate, string) {
	var details strings.Builder
	latOffset, lngOffset := collatzOffsets(c, &details)
	out := Coordinate{Lat: c.Lat + latOffset, Lng: c.Lng - lngOffset}

	fmt.Fprintf(&details, "Resulting Offsets:\n")
	fmt.Fprintf(&details, "  Lat Offset: ΣX %% 10000 / 100000 = %s\n", fixed(latOffset, 6))
	fmt.Fprintf(&details, "  Lng Offset: ΣY %% 10000 / 100000 = %s\n", fixed(lngOffset, 6))
	fmt.Fprintf(&details, "Output: %s", formatCoordinate(out))
	return out, details.String()
}

// Inverse subtracts the latitude offset and adds the longitude offset
func (CollatzDiffusion) Inverse(c Coordinate, _ int64) Coordinate {
	latOffset, lngOffset := collatzOffsets(c, nil)
	return Coordinate{Lat: c.Lat - latOffset, Lng: c.Lng + lngOffset}
}

// collatzOffsets runs the Collatz iterations on both integer parts and writes the
// steps into details when it is not nil.
//
// The values stay float64 so huge magnitudes are halved and tripled the same way
// the stored data was originally produced.
func collatzOffsets(c Coordinate, details *strings.Builder) (float64, float64) {
	x := math.Floor(math.Abs(c.Lat))
	y := math.Floor(math.Abs(c.Lng))
	if details != nil {
		fmt.Fprintf(details, "Input: %s\nInteger Parts: X=%s, Y=%s\n\n", formatCoordinate(c), integer(x), integer(y))
	}

	sumX, sumY := x, y
	for i := 0; i < collatzIterations; i++ {
		if details != nil {
			fmt.Fprintf(details, "Step %d:\n", i+1)
		}
		x = collatzNext(x, "X", details)
		y = collatzNext(y, "Y", details)
		sumX += x
		sumY += y
		if details != nil {
			details.WriteString("\n")
		}
	}

	return math.Mod(sumX, 10000) / 100000, math.Mod(sumY, 10000) / 100000
}

func collatzNext(v float64, axis string, details *strings.Builder) float64 {
	if math.Mod(v, 2) == 0 {
		next := v / 2
		if details != nil {
			fmt.Fprintf(details, "  %s: %s (even) -> %s / 2 = %s\n", axis, integer(v), integer(v), integer(next))
		}
		return next
	}
	next := float64(v*3) + 1
	if details != nil {
		fmt.Fprintf(details, "  %s: %s (odd) -> (3 * %s) + 1 = %s\n", axis, integer(v), integer(v), integer(next))
	}
	return next
}
