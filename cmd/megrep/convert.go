package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"megrep/pkg/encoder"
	"megrep/pkg/paths"
	"megrep/pkg/pipeline"
	"megrep/pkg/results"
	"megrep/pkg/ui"
	"megrep/pkg/ui/tui"
)

var (
	// Convert command flags
	batchSize    int
	workers      int
	forceRestart bool
	useTUI       bool
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert every image under the content directory to AVIF and WebP",
	Long: `Convert every supported image under the content directory into AVIF and WebP.

Work is done in batches. After every batch the checkpoint (progress.json) is
saved, so an interrupted run picks up where it stopped. Inputs whose AVIF and
WebP outputs already exist are not encoded again. results.json is refreshed
periodically and written in full when the run ends.

Press Ctrl+C (or q in the TUI) to stop after the current batch.`,
	Example: `  # Convert with default settings
  megrep convert

  # Use a larger batch and more workers
  megrep convert --batch-size 100 --workers 8

  # Full-screen dashboard
  megrep convert --tui

  # Ignore the existing checkpoint (a backup is kept)
  megrep convert --force-restart`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().IntVarP(&batchSize, "batch-size", "b", 0, "files per batch (default from config, 50)")
	convertCmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent encodes, capped at the CPU count")
	convertCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "back up and discard the checkpoint before running")
	convertCmd.Flags().BoolVar(&useTUI, "tui", false, "use interactive terminal UI with real-time progress")
}

func runConvert(cmd *cobra.Command, args []string) error {
	extra := make(map[string]interface{})
	if cmd.Flags().Changed("batch-size") {
		extra["batch-size"] = batchSize
	}
	if cmd.Flags().Changed("workers") {
		extra["workers"] = workers
	}

	a, cleanup, err := newApp(cmd, extra, useTUI)
	if err != nil {
		return err
	}
	defer cleanup()

	enc := encoder.New(a.cfg.Formats, nil, a.log)
	if err := enc.CheckBinaries(); err != nil {
		return err
	}

	if forceRestart && a.store.Exists() {
		if err := a.store.Backup(); err != nil {
			return fmt.Errorf("failed to back up checkpoint: %w", err)
		}
		if err := a.store.Clear(); err != nil {
			return fmt.Errorf("failed to clear checkpoint: %w", err)
		}
		a.log.WithField("backup", a.store.Path()+".backup").Info("Checkpoint discarded")
		if !useTUI {
			ui.PrintWarning("Checkpoint discarded", a.store.Path()+".backup")
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{
		Resolver:      a.resolver,
		Scanner:       a.scanner,
		Encoder:       enc,
		Store:         a.store,
		Publisher:     a.publisher,
		Logger:        a.log,
		BatchSize:     a.cfg.Pipeline.BatchSize,
		Workers:       a.cfg.Pipeline.Workers,
		SnapshotEvery: a.cfg.Pipeline.SnapshotEvery,
	}

	var summary *pipeline.Summary
	if useTUI {
		summary, err = convertWithTUI(ctx, stop, opts)
	} else {
		opts.Reporter = ui.NewProgressDisplay(os.Stdout, verbose)
		p := pipeline.New(opts)
		ui.PrintInfo("Content root", a.resolver.DisplayPath(a.resolver.ContentsDir()))
		ui.PrintInfo("Workers", fmt.Sprint(p.Workers()))
		summary, err = p.Run(ctx)
	}
	if err != nil {
		a.log.WithError(err).Error("Conversion failed")
		notify(a.cfg.Notifications.Enabled, func(n *ui.Notifier) { n.SendError("megrep", err.Error()) })
		return err
	}

	reportSummary(summary, a.publisher.Path())
	if a.cfg.Notifications.Enabled && a.cfg.Notifications.OnComplete && summary.Outcome == pipeline.OutcomeCompleted {
		notify(true, func(n *ui.Notifier) {
			n.SendSuccess("megrep", fmt.Sprintf("%d converted, %d failed", summary.Tally.Successful, summary.Tally.Failed))
		})
	}
	return nil
}

// convertWithTUI runs the pipeline in the background while the dashboard
// owns the terminal. Pressing q cancels ctx, which stops the run at the
// next batch boundary.
func convertWithTUI(ctx context.Context, cancel context.CancelFunc, opts pipeline.Options) (*pipeline.Summary, error) {
	terminal := tui.NewTUI(cancel)
	opts.Reporter = terminal

	type outcome struct {
		summary *pipeline.Summary
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		summary, err := pipeline.New(opts).Run(ctx)
		if err != nil {
			terminal.Log("ERROR", "Conversion failed: %v", err)
		}
		// completed runs stay on screen until the user quits
		if err != nil || summary.Outcome != pipeline.OutcomeCompleted {
			terminal.Stop()
		}
		done <- outcome{summary, err}
	}()

	if err := terminal.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("TUI failed: %w", err)
	}

	// the user may quit the dashboard before the run unwinds
	cancel()
	res := <-done
	return res.summary, res.err
}

func reportSummary(s *pipeline.Summary, resultsPath string) {
	switch s.Outcome {
	case pipeline.OutcomeNothingFound:
		ui.PrintWarning("No images found in the content directory")
	case pipeline.OutcomeUpToDate:
		ui.PrintSuccess(fmt.Sprintf("All %d images already converted", s.Discovered))
		ui.PrintInfo("Results", resultsPath)
	case pipeline.OutcomeInterrupted:
		ui.PrintWarning(fmt.Sprintf("Interrupted after %d batches, progress saved", s.Batches))
		ui.PrintInfo("Resume with", "megrep convert")
	case pipeline.OutcomeCompleted:
		if useTUI {
			printTally(s.Tally)
		}
		ui.PrintSuccess("Conversion complete")
		ui.PrintInfo("Results", resultsPath)
	}
}

func printTally(t results.Tally) {
	ui.PrintInfo("Succeeded", fmt.Sprint(t.Successful))
	ui.PrintInfo("Failed", fmt.Sprint(t.Failed))
	ui.PrintInfo("AVIF savings", fmt.Sprintf("%d%%", t.Savings(paths.AVIF)))
	ui.PrintInfo("WebP savings", fmt.Sprintf("%d%%", t.Savings(paths.WebP)))
}

func notify(enabled bool, send func(n *ui.Notifier)) {
	if enabled {
		send(ui.NewNotifier())
	}
}
