package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/NebulousLabs/fastrand"
	"github.com/spf13/cobra"

	"github.com/math-2025/protected-geo/obfuscate"
)

const maxReportedMismatches = 5

// randomCoordinate returns a coordinate with six decimals, within the valid degree ranges
func randomCoordinate() obfuscate.Coordinate {
	return obfuscate.Coordinate{
		Lat: float64(fastrand.Uint64n(180_000_000))/1e6 - 90,
		Lng: float64(fastrand.Uint64n(360_000_000))/1e6 - 180,
	}
}

func randomSecret() string {
	return hex.EncodeToString(fastrand.Bytes(8))
}

func (c *CLI) selfCheckCommand() *cobra.Command {
	var samples int
	cmd := &cobra.Command{
		Use:   "selfcheck",
		Short: "Round-trip random coordinates with random keys",
		Long: `Encrypt and decrypt random coordinates with random keys and report the ones which do not
come back within the verification tolerance. A few mismatches are expected: the first stage
recomputes its offsets from the transformed value, which can land on the other side of an integer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if samples <= 0 {
				return fmt.Errorf("the number of samples must be positive")
			}
			tolerance := c.config.Verify.Tolerance
			var mismatches int
			for i := 0; i < samples; i++ {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				secret := randomSecret()
				in := randomCoordinate()
				enc := obfuscate.EncryptCoordinates(in.Lat, in.Lng, secret)
				lat, lng := obfuscate.DecryptCoordinates(enc.Lat, enc.Lng, secret)
				out := obfuscate.Coordinate{Lat: lat, Lng: lng}
				if obfuscate.Matches(in, out, tolerance) {
					continue
				}
				mismatches++
				if mismatches <= maxReportedMismatches {
					c.printWarning("key %s: %s, %s came back as %s, %s", secret,
						formatFloat(in.Lat), formatFloat(in.Lng), formatFloat(out.Lat), formatFloat(out.Lng))
				}
			}
			c.printKeyValue("samples", fmt.Sprint(samples))
			c.printKeyValue("matched", fmt.Sprint(samples-mismatches))
			c.printKeyValue("mismatched", fmt.Sprint(mismatches))
			c.printInfo("%.3f%% round-trip within %g", 100*float64(samples-mismatches)/float64(samples), tolerance)
			return nil
		},
	}
	cmd.Flags().IntVarP(&samples, "samples", "n", 1000, "the number of random coordinates")
	return cmd
}
