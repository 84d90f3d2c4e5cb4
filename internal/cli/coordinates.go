package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/math-2025/protected-geo/obfuscate"
)

var errKeyMismatch = errors.New("the decrypted coordinate does not match the original")

func parseCoordinate(args []string) (obfuscate.Coordinate, error) {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return obfuscate.Coordinate{}, fmt.Errorf("invalid latitude '%s'", args[0])
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return obfuscate.Coordinate{}, fmt.Errorf("invalid longitude '%s'", args[1])
	}
	return obfuscate.Coordinate{Lat: lat, Lng: lng}, nil
}

func (c *CLI) encryptCommand() *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "encrypt LAT LNG",
		Short: "Obfuscate a coordinate",
		Long:  "Obfuscate a coordinate. Use -- before negative values, e.g. geovault encrypt -- -33.86 151.2",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseCoordinate(args)
			if err != nil {
				return err
			}
			key, err := c.key()
			if err != nil {
				return err
			}
			enc := key.Encrypt(in)
			if trace {
				c.printTrace(enc.Steps())
			}
			c.printCoordinate(enc.Lat, enc.Lng)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&trace, "trace", "t", false, "print the derivation steps")
	return cmd
}

func (c *CLI) decryptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt LAT LNG",
		Short: "Recover an obfuscated coordinate",
		Long: `Recover an obfuscated coordinate.
A wrong key is not detected, it produces a different coordinate. Use verify to check a key.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseCoordinate(args)
			if err != nil {
				return err
			}
			key, err := c.key()
			if err != nil {
				return err
			}
			out := key.Decrypt(in)
			c.printCoordinate(out.Lat, out.Lng)
			return nil
		},
	}
}

func (c *CLI) verifyCommand() *cobra.Command {
	var (
		originalLat, originalLng float64
		tolerance                float64
	)
	cmd := &cobra.Command{
		Use:   "verify LAT LNG --original-lat LAT --original-lng LNG",
		Short: "Check whether a key recovers the original coordinate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseCoordinate(args)
			if err != nil {
				return err
			}
			key, err := c.key()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("tolerance") {
				tolerance = c.config.Verify.Tolerance
			}
			out := key.Decrypt(in)
			if !obfuscate.Matches(out, obfuscate.Coordinate{Lat: originalLat, Lng: originalLng}, tolerance) {
				c.printError("the key does not match")
				return errKeyMismatch
			}
			c.printSuccess("the key matches")
			c.printCoordinate(out.Lat, out.Lng)
			return nil
		},
	}
	cmd.Flags().Float64Var(&originalLat, "original-lat", 0, "the original latitude")
	cmd.Flags().Float64Var(&originalLng, "original-lng", 0, "the original longitude")
	cmd.Flags().Float64Var(&tolerance, "tolerance", obfuscate.DefaultTolerance, "the maximum difference per axis")
	_ = cmd.MarkFlagRequired("original-lat")
	_ = cmd.MarkFlagRequired("original-lng")
	return cmd
}

func (c *CLI) traceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "trace LAT LNG",
		Short: "Show how every stage transforms a coordinate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseCoordinate(args)
			if err != nil {
				return err
			}
			key, err := c.key()
			if err != nil {
				return err
			}
			enc := key.Encrypt(in)
			c.printKeyValue("input", formatFloat(in.Lat)+", "+formatFloat(in.Lng))
			c.printTrace(enc.Steps())
			c.printKeyValue("output", formatFloat(enc.Lat)+", "+formatFloat(enc.Lng))
			return nil
		},
	}
}
