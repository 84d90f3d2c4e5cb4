package obfuscate

import "math"

// DefaultTolerance is the maximum per axis difference at which a decrypted coordinate
// is considered to match the original one.
const DefaultTolerance = 1e-4

// DerivationStep is the audit record of one stage's forward output
type DerivationStep struct {
	// Name the name of the stage
	Name string
	// Coordinate the output of the stage
	Coordinate Coordinate
	// Details human readable description of the calculation
	Details string
}

// EncryptedCoordinate is the result of encrypting a coordinate
type EncryptedCoordinate struct {
	Coordinate
	steps []DerivationStep
}

// Steps returns a copy of the derivation steps in pipeline order
func (e EncryptedCoordinate) Steps() []DerivationStep {
	steps := make([]DerivationStep, len(e.steps))
	copy(steps, e.steps)
	return steps
}

// Pipeline chains coordinate stages in a fixed order
type Pipeline struct {
	stages []Stage
}

// NewPipeline creates a pipeline which runs the stages in the given order
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

var defaultPipeline = NewPipeline(
	CollatzDiffusion{},
	PrimeJump{},
	FibonacciSpiral{},
	AffineTransformation{},
	LogarithmicSpiral{},
)

// DefaultPipeline returns the five stage pipeline used to obfuscate coordinates
func DefaultPipeline() *Pipeline {
	return defaultPipeline
}

// Stages returns the names of the stages in pipeline order
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Encrypt runs every stage forward, feeding the output of each stage into the next one
func (p *Pipeline) Encrypt(c Coordinate, seed int64) EncryptedCoordinate {
	steps := make([]DerivationStep, 0, len(p.stages))
	for i, stage := range p.stages {
		var details string
		c, details = stage.Forward(c, StageSeed(seed, i))
		steps = append(steps, DerivationStep{
			Name:       stage.Name(),
			Coordinate: c,
			Details:    details,
		})
	}
	return EncryptedCoordinate{Coordinate: c, steps: steps}
}

// Decrypt runs every stage backwards from the last one to the first one.
// Each stage still receives the seed of its own index.
func (p *Pipeline) Decrypt(c Coordinate, seed int64) Coordinate {
	for i := len(p.stages) - 1; i >= 0; i-- {
		c = p.stages[i].Inverse(c, StageSeed(seed, i))
	}
	return c
}

// EncryptCoordinates obfuscates a coordinate with the default pipeline.
// Any key, including an empty one, produces a result.
func EncryptCoordinates(lat, lng float64, key string) EncryptedCoordinate {
	return defaultPipeline.Encrypt(Coordinate{Lat: lat, Lng: lng}, DeriveSeed(key))
}

// DecryptCoordinates reverts EncryptCoordinates.
//
// A wrong key is not detected: it silently produces a different coordinate.
// Use Matches to compare the result against a known original.
func DecryptCoordinates(encLat, encLng float64, key string) (float64, float64) {
	c := defaultPipeline.Decrypt(Coordinate{Lat: encLat, Lng: encLng}, DeriveSeed(key))
	return c.Lat, c.Lng
}

// Matches returns true if both axes of the coordinates differ by strictly less than the tolerance
func Matches(a, b Coordinate, tolerance float64) bool {
	return math.Abs(a.Lat-b.Lat) < tolerance && math.Abs(a.Lng-b.Lng) < tolerance
}
