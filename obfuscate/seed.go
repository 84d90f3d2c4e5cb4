package obfuscate

import (
	"strconv"

	"github.com/math-2025/protected-geo/hash"
)

// DeriveSeed turns an arbitrary key into the non-negative pipeline seed
func DeriveSeed(key string) int64 {
	return hash.Rolling31(key)
}

// StageSeed derives the seed of the stage at the given fixed pipeline index.
// The index is the stage's position in the pipeline, not the traversal order.
func StageSeed(seed int64, index int) int64 {
	return hash.Rolling31(strconv.FormatInt(seed, 10) + strconv.Itoa(index))
}
