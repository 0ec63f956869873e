package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/starlay/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Re-validate exports scripts whenever they change",
	Long: `Run the injection check once, then watch the configured exports
scripts and re-run the check on every change. Useful while developing
override scripts: errors show up as soon as the file is saved.

Examples:
  starlay watch                   # Watch with the default debounce
  starlay watch --debounce 500ms  # Slower debounce for slow editors`,
	RunE: runWatch,
}

var watchDebounce time.Duration

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "Debounce delay for change batches")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	if len(cfg.Exports.Paths) == 0 {
		return fmt.Errorf("no exports scripts configured; nothing to watch")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runOnce := func() {
		if _, _, err := buildEnvironment(ctx); err != nil {
			logger.Error(ctx, err, "exports validation failed")
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			return
		}
		fmt.Println("OK: exports scripts valid")
	}

	runOnce()

	w, err := watcher.New(watchDebounce, func(events []watcher.ChangeEvent) {
		for _, event := range events {
			logger.Info(ctx, "exports script changed", "path", event.Path, "op", event.Op)
		}
		runOnce()
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if stopErr := w.Stop(); stopErr != nil {
			logger.Warn(ctx, stopErr, "failed to stop watcher")
		}
	}()

	for _, path := range cfg.Exports.Paths {
		if err := w.AddPath(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	go w.Start(ctx)

	fmt.Printf("Watching %d exports script(s). Press Ctrl+C to stop.\n", len(cfg.Exports.Paths))

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	<-signals

	return nil
}
