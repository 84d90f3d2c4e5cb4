package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/math-2025/protected-geo/obfuscate"
	"github.com/math-2025/protected-geo/taps"
)

type batchFlags struct {
	target  string
	trace   bool
	delete  bool
	workers uint16
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.target, "out", "o", "", "the output directory (defaults to watch.target)")
	cmd.Flags().BoolVarP(&f.trace, "trace", "t", false, "include the derivation steps in the encrypted documents")
	cmd.Flags().BoolVar(&f.delete, "delete", false, "delete the input files which have been processed successfully")
	cmd.Flags().Uint16VarP(&f.workers, "workers", "w", 0, "the number of files to process in parallel (defaults to engine.workers)")
}

func (c *CLI) batchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Encrypt or decrypt TOML batch documents",
		Long: `Encrypt or decrypt TOML batch documents of coordinates and messages.

    [[coordinate]]
    id = "alpha"
    lat = 40.4093
    lng = 49.8671

    [[message]]
    id = "m1"
    text = "Hold position"`,
	}
	cmd.AddCommand(c.batchModeCommand(obfuscate.Encode, "encrypt FILES...", "Encrypt batch documents into the output directory"))
	cmd.AddCommand(c.batchModeCommand(obfuscate.Decode, "decrypt FILES...", "Decrypt batch documents into the output directory"))
	return cmd
}

func (c *CLI) batchModeCommand(mode obfuscate.Operation, use, short string) *cobra.Command {
	var flags batchFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := c.key()
			if err != nil {
				return err
			}
			if flags.target == "" {
				flags.target = c.config.Watch.Target
			}
			if flags.workers == 0 {
				flags.workers = c.config.Engine.Workers
			}
			tap, err := taps.NewFileTap(args, flags.target, key, taps.Options{
				Mode:            mode,
				Trace:           flags.trace,
				NotifyErrors:    true,
				ReportProgress:  true,
				DeleteCompleted: flags.delete,
			})
			if err != nil {
				return err
			}
			return c.runBatch(cmd.Context(), tap, flags.workers, len(args))
		},
	}
	flags.register(cmd)
	return cmd
}

// runBatch processes every file of the tap, or stops at the first cancellation
func (c *CLI) runBatch(ctx context.Context, tap *taps.FileTap, workers uint16, total int) error {
	engine := obfuscate.NewEngine(workers, false, c.Logger, tap)
	start := time.Now()

	var (
		wg                   sync.WaitGroup
		rejected, unfinished int
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		for err := range tap.Errors() {
			rejected++
			c.Logger.Error("batch", "err", err)
		}
	}()
	go func() {
		defer wg.Done()
		for r := range tap.Progress() {
			c.printResult(r)
			if r.Status != obfuscate.Completed {
				unfinished++
			}
		}
	}()

	finished := make(chan struct{})

	engine.Start()
	go func() {
		engine.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		engine.Stop()
		<-finished
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	c.Logger.Infof("Processed %d batch files (%s)", total, time.Since(start).Round(time.Millisecond))
	if failed := rejected + unfinished; failed > 0 {
		return fmt.Errorf("%d of %d batch files failed", failed, total)
	}
	return nil
}

func (c *CLI) printResult(r *taps.Result) {
	switch r.Status {
	case obfuscate.Completed:
		c.printSuccess("%s (%d entries)", r.Input.Name, r.Entries)
		c.printFile(r.Input.Path, r.Output.Path)
	case obfuscate.Cancelled:
		c.printWarning("%s cancelled", r.Input.Name)
	default:
		c.printError("%s failed", r.Input.Name)
		c.printDetail("%v", r.Error)
	}
}

func (c *CLI) watchCommand() *cobra.Command {
	var (
		source, target string
		native, trace  bool
		deleteInputs   bool
		interval       time.Duration
		settle         time.Duration
		workers        uint16
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Encrypt every batch document dropped into the source directory",
		Long: `Watch the source directory and encrypt every new batch document into the target directory,
mirroring the sub-directories. Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := c.key()
			if err != nil {
				return err
			}
			w := c.config.Watch
			flags := cmd.Flags()
			if !flags.Changed("source") {
				source = w.Source
			}
			if !flags.Changed("target") {
				target = w.Target
			}
			if !flags.Changed("native") {
				native = w.Native
			}
			if !flags.Changed("trace") {
				trace = w.Trace
			}
			if !flags.Changed("delete") {
				deleteInputs = w.DeleteCompleted
			}
			if !flags.Changed("interval") {
				interval = w.PollingInterval.Duration
			}
			if !flags.Changed("settle") {
				settle = w.SettleTime.Duration
			}
			if !flags.Changed("workers") {
				workers = c.config.Engine.Workers
			}

			tap, err := taps.NewDirectoryWatcherTap(source, target, key, taps.WatcherOptions{
				Options: taps.Options{
					Mode:            obfuscate.Encode,
					Trace:           trace,
					NotifyErrors:    true,
					ReportProgress:  true,
					DeleteCompleted: deleteInputs,
				},
				PollingInterval: interval,
				SettleTime:      settle,
				Native:          native,
			})
			if err != nil {
				return err
			}
			return c.runWatcher(cmd.Context(), tap, workers, source, target)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&source, "source", "s", "", "the directory to watch (defaults to watch.source)")
	flags.StringVarP(&target, "target", "o", "", "the output directory (defaults to watch.target)")
	flags.BoolVar(&native, "native", false, "use the file system notifications instead of polling")
	flags.BoolVarP(&trace, "trace", "t", false, "include the derivation steps in the encrypted documents")
	flags.BoolVar(&deleteInputs, "delete", false, "delete the input files which have been processed successfully")
	flags.DurationVar(&interval, "interval", time.Second, "the polling interval")
	flags.DurationVar(&settle, "settle", 2*time.Second, "how long a file must stay untouched before being processed")
	flags.Uint16VarP(&workers, "workers", "w", 0, "the number of files to process in parallel")
	return cmd
}

func (c *CLI) runWatcher(ctx context.Context, tap *taps.DirectoryWatcherTap, workers uint16, source, target string) error {
	engine := obfuscate.NewEngine(workers, false, c.Logger, tap)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for err := range tap.Errors() {
			c.Logger.Error("watcher", "err", err)
		}
	}()
	go func() {
		defer wg.Done()
		for r := range tap.Progress() {
			c.printResult(r)
		}
	}()

	engine.Start()
	c.printInfo("watching %s %s %s. Press Ctrl+C to stop", source, iconArrow, target)
	<-ctx.Done()
	engine.Stop()
	wg.Wait()
	c.printSuccess("the engine has been stopped successfully")
	return nil
}
