package obfuscate

import (
	"fmt"
	"strings"
)

// AffineTransformation scales and translates each axis by seeded coefficients close to the identity.
// It is the only stage whose inverse is a closed form independent of its input.
type AffineTransformation struct{}

// Name returns the name of the stage
func (AffineTransformation) Name() string {
	return "Affine Transformation"
}

// Forward applies lat' = a1*lat + b1 and lng' = a2*lng + b2
func (AffineTransformation) Forward(c Coordinate, seed int64) (Coordinate, string) {
	k := newAffineCoefficients(seed)
	out := Coordinate{
		Lat: float64(k.a1*c.Lat) + k.b1,
		Lng: float64(k.a2*c.Lng) + k.b2,
	}

	var details strings.Builder
	k.describe(&details, c)
	fmt.Fprintf(&details, "Forward Calculation:\n")
	fmt.Fprintf(&details, "  new_lat = (%s * %s) + %s = %s\n", fixed(c.Lat, 6), fixed(k.a1, 4), fixed(k.b1, 4), fixed(out.Lat, 6))
	fmt.Fprintf(&details, "  new_lng = (%s * %s) + %s = %s", fixed(c.Lng, 6), fixed(k.a2, 4), fixed(k.b2, 4), fixed(out.Lng, 6))
	return out, details.String()
}

// Inverse applies lat = (lat' - b1) / a1 and lng = (lng' - b2) / a2
func (AffineTransformation) Inverse(c Coordinate, seed int64) Coordinate {
	k := newAffineCoefficients(seed)
	return Coordinate{
		Lat: (c.Lat - k.b1) / k.a1,
		Lng: (c.Lng - k.b2) / k.a2,
	}
}

type affineCoefficients struct {
	a1, b1, a2, b2 float64
}

// newAffineCoefficients draws a1, b1, a2 and b2 in this order.
// a1, a2 are in [0.9, 1.1] and b1, b2 are in [-0.05, 0.05].
func newAffineCoefficients(seed int64) affineCoefficients {
	random := NewGenerator(seed)
	var k affineCoefficients
	k.a1 = 1 + float64((random.Next()-0.5)*0.2)
	k.b1 = float64(random.Next()-0.5) * 0.1
	k.a2 = 1 + float64((random.Next()-0.5)*0.2)
	k.b2 = float64(random.Next()-0.5) * 0.1
	return k
}

func (k affineCoefficients) describe(w *strings.Builder, c Coordinate) {
	fmt.Fprintf(w, "Input: %s\n", formatCoordinate(c))
	fmt.Fprintf(w, "Formulas:\n  new_lat = (lat * a1) + b1\n  new_lng = (lng * a2) + b2\n\n")
	fmt.Fprintf(w, "Variables:\n  a1=%s, b1=%s\n  a2=%s, b2=%s\n\n", fixed(k.a1, 4), fixed(k.b1, 4), fixed(k.a2, 4), fixed(k.b2, 4))
}
