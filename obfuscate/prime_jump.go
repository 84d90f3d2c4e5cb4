package obfuscate

import (
	"fmt"
	"math"
)

var jumpPrimes = [...]float64{17, 31, 53, 71, 97}

// PrimeJump moves the coordinate diagonally by the product of two seeded primes
type PrimeJump struct{}

// Name returns the name of the stage
func (PrimeJump) Name() string {
	return "Prime Jump"
}

// Forward subtracts the offset from the latitude and adds it to the longitude
func (PrimeJump) Forward(c Coordinate, seed int64) (Coordinate, string) {
	p1, p2, offset := primeJumpOffset(seed)
	out := Coordinate{Lat: c.Lat - offset, Lng: c.Lng + offset}
	details := fmt.Sprintf("Input: %s\n"+
		"Chosen Primes: p1=%s, p2=%s\n"+
		"Offset Calculation: (p1 * p2) / 100000 = %s\n"+
		"New Lat: lat - offset = %s - %s = %s\n"+
		"New Lng: lng + offset = %s + %s = %s",
		formatCoordinate(c),
		integer(p1), integer(p2),
		fixed(offset, 6),
		fixed(c.Lat, 6), fixed(offset, 6), fixed(out.Lat, 6),
		fixed(c.Lng, 6), fixed(offset, 6), fixed(out.Lng, 6))
	return out, details
}

// Inverse adds the offset to the latitude and subtracts it from the longitude
func (PrimeJump) Inverse(c Coordinate, seed int64) Coordinate {
	_, _, offset := primeJumpOffset(seed)
	return Coordinate{Lat: c.Lat + offset, Lng: c.Lng - offset}
}

func primeJumpOffset(seed int64) (float64, float64, float64) {
	random := NewGenerator(seed)
	p1 := jumpPrimes[int(math.Floor(random.Next()*float64(len(jumpPrimes))))]
	p2 := jumpPrimes[int(math.Floor(random.Next()*float64(len(jumpPrimes))))]
	return p1, p2, (p1 * p2) / 100000
}
