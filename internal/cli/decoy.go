package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/math-2025/protected-geo/obfuscate"
	"github.com/math-2025/protected-geo/store"
)

var errAborted = errors.New("aborted")

// withStore opens the configured store for the duration of fn
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	s, err := c.openStore(ctx, c.config.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(context.Background()); err != nil {
			c.Logger.Warn("failed to close the store", "err", err)
		}
	}()
	return fn(s)
}

func (c *CLI) decoyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decoy",
		Short: "Manage the published decoys of operation targets",
	}
	cmd.AddCommand(c.decoyCreateCommand())
	cmd.AddCommand(c.decoyShowCommand())
	cmd.AddCommand(c.decoyListCommand())
	cmd.AddCommand(c.decoyDeleteCommand())
	cmd.AddCommand(c.decoyPurgeCommand())
	cmd.AddCommand(c.decoyVerifyCommand())
	return cmd
}

func (c *CLI) decoyCreateCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create TARGET LAT LNG",
		Short: "Obfuscate the position of a target into a new decoy",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, err := parseCoordinate(args[1:])
			if err != nil {
				return err
			}
			key, err := c.key()
			if err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(s store.Store) error {
				if name == "" {
					existing, err := s.ListByTarget(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					name = store.PublicName(len(existing))
				}
				d, err := store.NewDecoy(name, args[0], original, key)
				if err != nil {
					return err
				}
				if err := s.Save(cmd.Context(), d); err != nil {
					return err
				}
				c.Logger.Debug("decoy saved", "id", d.ID, "backend", c.config.Store.Backend)
				c.printSuccess("decoy created")
				c.printDecoy(d)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "the public name of the decoy (defaults to a rotating company name)")
	return cmd
}

func (c *CLI) decoyShowCommand() *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a decoy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s store.Store) error {
				d, err := s.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				c.printDecoy(d)
				if trace {
					steps := make([]obfuscate.DerivationStep, len(d.Steps))
					for i, step := range d.Steps {
						steps[i] = obfuscate.DerivationStep{
							Name:       step.Name,
							Coordinate: obfuscate.Coordinate{Lat: step.Latitude, Lng: step.Longitude},
							Details:    step.Details,
						}
					}
					c.printTrace(steps)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&trace, "trace", "t", false, "print the derivation steps")
	return cmd
}

func (c *CLI) decoyListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list TARGET",
		Short: "List the decoys of an operation target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s store.Store) error {
				decoys, err := s.ListByTarget(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(decoys) == 0 {
					c.printInfo("no decoys for %s", args[0])
					return nil
				}
				for _, d := range decoys {
					fmt.Fprintln(c.out, styleValue.Render(d.ID)+"  "+styleTitle.Render(d.PublicName)+"  "+
						styleNumber.Render(formatFloat(d.Latitude)+", "+formatFloat(d.Longitude)))
				}
				return nil
			})
		},
	}
}

func (c *CLI) decoyDeleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a decoy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !c.askForConfirmation(fmt.Sprintf("Delete the decoy %s", args[0])) {
				return errAborted
			}
			return c.withStore(cmd.Context(), func(s store.Store) error {
				if err := s.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				c.printSuccess("decoy %s deleted", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (c *CLI) decoyPurgeCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge TARGET",
		Short: "Delete all the decoys of an operation target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !c.askForConfirmation(fmt.Sprintf("Delete all the decoys of %s", args[0])) {
				return errAborted
			}
			return c.withStore(cmd.Context(), func(s store.Store) error {
				removed, err := s.DeleteByTarget(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				c.printSuccess("%d decoys deleted", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (c *CLI) decoyVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify ID",
		Short: "Check whether a key recovers the original position of a decoy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := c.key()
			if err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(s store.Store) error {
				d, err := s.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				decrypted, ok := d.Verify(key, c.config.Verify.Tolerance)
				if !ok {
					c.printError("the key is wrong or the decryption failed")
					return errKeyMismatch
				}
				c.printSuccess("the key matches")
				c.printCoordinate(decrypted.Lat, decrypted.Lng)
				return nil
			})
		},
	}
}
