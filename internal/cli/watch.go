package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/logtriage/logtriage/internal/ai"
	"github.com/logtriage/logtriage/internal/config"
	"github.com/logtriage/logtriage/internal/formatter"
)

var watchInterval time.Duration

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Watch a log file and re-triage on changes",
		Long: `Monitor a log file and re-run the triage pass whenever it changes.

Each pass is independent: the file is re-read from the start so groups
and frequencies always reflect the whole log. Press Ctrl+C to stop.

Examples:
  logtriage watch app.log
  logtriage watch --no-ai --interval 30s app.log`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().BoolVar(&analyzeNoAI, "no-ai", false, "skip the advisory call, report classification only")
	cmd.Flags().DurationVar(&watchInterval, "interval", 10*time.Second, "minimum time between triage passes")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	filename := args[0]

	if err := validateInputPath(filename); err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	if provider != nil {
		defer func() { _ = provider.Close() }()
	}

	watcher, err := createWatcher(filename)
	if err != nil {
		return err
	}
	defer cleanupWatcher(watcher)

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Watching file: %s\n", filename)
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop...\n\n")
	}

	// Initial pass so the watch starts with a current picture.
	if err := triagePass(cfg, provider, filename); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: initial pass failed: %v\n", err)
	}

	return runWatchLoop(watcher, cfg, provider, filename)
}

// runWatchLoop runs the main watch loop with signal handling
func runWatchLoop(watcher *fsnotify.Watcher, cfg *config.Config, provider ai.Provider, filename string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	var lastPass time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-signals:
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Write != fsnotify.Write {
				continue
			}
			if time.Since(lastPass) < watchInterval {
				continue
			}
			lastPass = time.Now()
			if err := triagePass(cfg, provider, filename); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: triage pass failed: %v\n", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
			}
		}
	}
}

// triagePass re-reads the file and runs one full pipeline pass, printing
// the report in terminal format.
func triagePass(cfg *config.Config, provider ai.Provider, filename string) error {
	// #nosec G304 - path is validated by runWatch
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	result, err := runPipeline(ctx, cfg, provider, string(data))
	if err != nil {
		return err
	}

	output, err := formatter.NewTerminal(colorEnabled(cfg)).Format(formatter.NewReport(result.Problems, time.Now()))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(output)
	return err
}

// createWatcher creates and configures a new file system watcher
func createWatcher(filename string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filename); err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch file: %w", err)
	}

	return watcher, nil
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}
