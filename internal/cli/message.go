package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/math-2025/protected-geo/obfuscate"
)

func (c *CLI) messageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Encode and decode messages",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "encrypt TEXT...",
		Short: "Encode a message into a JSON array of numbers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(c.out, obfuscate.EncryptMessage(strings.Join(args, " ")))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "decrypt CIPHER",
		Short: "Decode a JSON array of numbers back into the message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := obfuscate.DecryptMessage(args[0])
			if text == obfuscate.FormatError || text == obfuscate.DecryptionError {
				c.Logger.Warn("the cipher could not be decoded", "cipher", args[0])
			}
			fmt.Fprintln(c.out, text)
			return nil
		},
	})
	return cmd
}
