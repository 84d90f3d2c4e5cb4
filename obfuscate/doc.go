// Package obfuscate implements the keyed, deterministic and reversible obfuscation of coordinates and messages.
//
// Coordinates go through a pipeline of five stages (Collatz diffusion, prime jump, Fibonacci spiral,
// affine transformation and logarithmic spiral). Every stage is seeded by the key and its own
// fixed index, and draws its parameters from a fresh linear congruential Generator:
//
//	enc := obfuscate.EncryptCoordinates(40.4093, 49.8671, "secret")
//	for _, step := range enc.Steps() {
//		fmt.Println(step.Name, step.Coordinate)
//	}
//
//	lat, lng := obfuscate.DecryptCoordinates(enc.Lat, enc.Lng, "secret")
//
// A wrong key is never reported as an error. Compare the decrypted coordinate with a known
// original using Matches and DefaultTolerance instead.
//
// Messages are encrypted character by character with a positional affine cipher which does not use the key:
//
//	cipher := obfuscate.EncryptMessage("AB") // [212,220]
//	text := obfuscate.DecryptMessage(cipher)
//
// The pipeline is an obfuscation scheme, not a cryptographically secure cipher.
//
// Batch documents can be processed in bulk by an Engine fed by a Tap:
//
//	engine := obfuscate.NewEngine(4, false, logger, tap)
//	engine.Start()
//	defer engine.Stop()
package obfuscate
