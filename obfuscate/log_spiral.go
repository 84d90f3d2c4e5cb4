package obfuscate

import (
	"fmt"
	"math"
	"strings"
)

// LogarithmicSpiral shifts the coordinate to a seeded point of the spiral r = a*e^(b*θ)
type LogarithmicSpiral struct{}

// Name returns the name of the stage
func (LogarithmicSpiral) Name() string {
	return "Logarithmic Spiral"
}

// Forward adds both offsets to the coordinate
func (LogarithmicSpiral) Forward(c Coordinate, seed int64) (Coordinate, string) {
	s := newLogSpiral(seed)
	out := Coordinate{Lat: c.Lat + s.latOffset, Lng: c.Lng + s.lngOffset}

	var details strings.Builder
	fmt.Fprintf(&details, "Input: %s\n", formatCoordinate(c))
	fmt.Fprintf(&details, "Formulas:\n  r = a * e^(b * θ)\n  lat_offset = r * cos(θ)\n  lng_offset = r * sin(θ)\n\n")
	fmt.Fprintf(&details, "Variables:\n  a=%s, b=%s, θ=%s\n\n", fixed(s.a, 4), fixed(s.b, 4), fixed(s.theta, 4))
	fmt.Fprintf(&details, "Calculation:\n")
	fmt.Fprintf(&details, "  r = %s * e^(%s * %s) = %s\n", fixed(s.a, 4), fixed(s.b, 4), fixed(s.theta, 4), fixed(s.r, 6))
	fmt.Fprintf(&details, "  lat_offset = %s * cos(%s) = %s\n", fixed(s.r, 6), fixed(s.theta, 4), fixed(s.latOffset, 6))
	fmt.Fprintf(&details, "  lng_offset = %s * sin(%s) = %s\n", fixed(s.r, 6), fixed(s.theta, 4), fixed(s.lngOffset, 6))
	fmt.Fprintf(&details, "Output: %s", formatCoordinate(out))
	return out, details.String()
}

// Inverse subtracts both offsets from the coordinate
func (LogarithmicSpiral) Inverse(c Coordinate, seed int64) Coordinate {
	s := newLogSpiral(seed)
	return Coordinate{Lat: c.Lat - s.latOffset, Lng: c.Lng - s.lngOffset}
}

type logSpiral struct {
	a, b, theta, r       float64
	latOffset, lngOffset float64
}

// newLogSpiral draws a in [0.01, 0.02), b in [0.1, 0.2) and θ in [-π, π)
func newLogSpiral(seed int64) logSpiral {
	random := NewGenerator(seed)
	a := 0.01 + float64(random.Next()*0.01)
	b := 0.1 + float64(random.Next()*0.1)
	theta := float64(random.Next()*2-1) * math.Pi
	r := a * math.Exp(b*theta)
	return logSpiral{
		a:         a,
		b:         b,
		theta:     theta,
		r:         r,
		latOffset: r * math.Cos(theta),
		lngOffset: r * math.Sin(theta),
	}
}
