package obfuscate

const (
	lcgMultiplier = 48271
	lcgModulus    = 2147483647
)

// Generator is a Lehmer linear congruential pseudo-random number source.
//
// A Generator is not safe for concurrent use. Stages create a fresh instance on every call.
type Generator struct {
	state int64
}

// NewGenerator creates a new generator seeded with a stage seed
func NewGenerator(seed int64) *Generator {
	return &Generator{state: seed}
}

// Next advances the generator and returns the next value in [0, 1)
func (g *Generator) Next() float64 {
	g.state = (g.state * lcgMultiplier) % lcgModulus
	return float64(g.state) / lcgModulus
}
