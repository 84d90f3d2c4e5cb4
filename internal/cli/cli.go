// Package cli implements the geovault command-line interface.
//
// The commands obfuscate single coordinates and messages, process batch documents,
// watch directories for new batches, manage decoys and serve the HTTP API.
// Every command supports --verbose (-v) for debug-level logging and --config (-c)
// to load the settings from a TOML file.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/math-2025/protected-geo/config"
	"github.com/math-2025/protected-geo/logging"
	"github.com/math-2025/protected-geo/store"
)

const appName = "geovault"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var (
	version = "dev"
	commit  = "none"
)

// SetVersion sets the version information displayed by --version
func SetVersion(v, c string) {
	version = v
	commit = c
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	in     *bufio.Reader
	stdin  io.Reader
	out    io.Writer
	config *config.Config

	cfgPath string
	secret  string
	verbose bool

	openStore func(context.Context, config.Store) (store.Store, error)
}

// New creates a new CLI instance which reads the prompts' answers from in, prints
// the results to out and logs to errOut.
func New(in io.Reader, out, errOut io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    logging.New(errOut, level),
		in:        bufio.NewReader(in),
		stdin:     in,
		out:       out,
		config:    config.Default(),
		openStore: store.Open,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "geovault obfuscates coordinates and messages with a secret key",
		Long: `geovault hides real coordinates behind keyed, reversible transformations.
Only the holders of the key can recover the original positions from the published decoys.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\n", appName, version, commit))
	root.SetOut(c.out)

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVarP(&c.cfgPath, "config", "c", "", "path to the TOML configuration file")
	flags.StringVarP(&c.secret, "key", "k", "", "the secret key (prompted for if omitted)")

	root.AddCommand(c.encryptCommand())
	root.AddCommand(c.decryptCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.traceCommand())
	root.AddCommand(c.messageCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.decoyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.selfCheckCommand())

	return root
}

func (c *CLI) setup(*cobra.Command, []string) error {
	cfg, err := config.Load(c.cfgPath)
	if err != nil {
		return err
	}
	c.config = cfg

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	c.Logger.Debug("configuration loaded", "path", c.cfgPath, "store", cfg.Store.Backend)
	return nil
}
