package obfuscate

import (
	"fmt"
	"math"
)

// FibonacciSpiral shifts the coordinate along a seeded golden angle spiral
type FibonacciSpiral struct{}

// Name returns the name of the stage
func (FibonacciSpiral) Name() string {
	return "Fibonacci Spiral"
}

// Forward adds both offsets to the coordinate
func (FibonacciSpiral) Forward(c Coordinate, seed int64) (Coordinate, string) {
	s := newSpiral(seed)
	out := Coordinate{Lat: c.Lat + s.latOffset, Lng: c.Lng + s.lngOffset}
	details := fmt.Sprintf("Input: %s\n"+
		"Golden Angle: %s rad\n"+
		"Distance (d): %s, Angle (a): %s\n"+
		"Lat Offset: d * cos(a * GA) = %s\n"+
		"Lng Offset: d * sin(a * GA) = %s\n"+
		"Output: %s",
		formatCoordinate(c),
		fixed(s.goldenAngle, 4),
		fixed(s.distance, 4), fixed(s.angle, 4),
		fixed(s.latOffset, 6),
		fixed(s.lngOffset, 6),
		formatCoordinate(out))
	return out, details
}

// Inverse subtracts both offsets from the coordinate
func (FibonacciSpiral) Inverse(c Coordinate, seed int64) Coordinate {
	s := newSpiral(seed)
	return Coordinate{Lat: c.Lat - s.latOffset, Lng: c.Lng - s.lngOffset}
}

type spiral struct {
	goldenAngle          float64
	distance, angle      float64
	latOffset, lngOffset float64
}

func newSpiral(seed int64) spiral {
	random := NewGenerator(seed)
	// The angle multiplies the golden angle as a plain number. It is never converted to radians.
	pi := math.Pi
	ga := 137.5 * (pi / 180)
	distance := random.Next() * 0.02
	angle := random.Next() * 360
	return spiral{
		goldenAngle: ga,
		distance:    distance,
		angle:       angle,
		latOffset:   distance * math.Cos(angle*ga),
		lngOffset:   distance * math.Sin(angle*ga),
	}
}
