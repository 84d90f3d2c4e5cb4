package obfuscate_test

import (
	"fmt"
	"log"

	"github.com/math-2025/protected-geo/obfuscate"
)

func ExampleEncryptCoordinates() {
	enc := obfuscate.EncryptCoordinates(40.4093, 49.8671, "commander")
	fmt.Println(enc.Lat, enc.Lng)

	for _, step := range enc.Steps() {
		fmt.Println(step.Name)
	}
	// Output:
	// 40.006870473420875 46.37589075683223
	// Collatz Diffusion
	// Prime Jump
	// Fibonacci Spiral
	// Affine Transformation
	// Logarithmic Spiral
}

func ExampleEncryptMessage() {
	cipher := obfuscate.EncryptMessage("AB")
	fmt.Println(cipher)
	fmt.Println(obfuscate.DecryptMessage(cipher))
	fmt.Println(obfuscate.DecryptMessage("not a cipher"))
	// Output:
	// [212,220]
	// AB
	// [decryption error]
}

func ExampleKey() {
	key, err := obfuscate.NewKey("commander")
	if err != nil {
		log.Fatal(err)
	}
	original := obfuscate.Coordinate{Lat: 40.4093, Lng: 49.8671}
	enc := key.Encrypt(original)

	fmt.Println(key.Validate("commander"), key.Validate("Commander"))
	fmt.Println(obfuscate.Matches(key.Decrypt(enc.Coordinate), original, obfuscate.DefaultTolerance))
	// Output:
	// true false
	// true
}
