package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/logtriage/logtriage/internal/ai"
	"github.com/logtriage/logtriage/internal/classify"
	"github.com/logtriage/logtriage/internal/common"
	"github.com/logtriage/logtriage/internal/config"
	"github.com/logtriage/logtriage/internal/formatter"
	"github.com/logtriage/logtriage/internal/parser"
	"github.com/logtriage/logtriage/internal/pipeline"

	// Advisory providers register themselves on import.
	_ "github.com/logtriage/logtriage/internal/ai/providers/gigachat"
	_ "github.com/logtriage/logtriage/internal/ai/providers/openai"
)

var (
	analyzeStrict     bool
	analyzeMinLevel   string
	analyzeNoAI       bool
	analyzeTimeout    time.Duration
	analyzeOutputFile string
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a log file or stdin",
		Long: `Analyze a log file for recurring errors and get recommendations.

If no file is specified, reads from stdin. Records below the minimum
level are dropped; surviving records are grouped by their normalized
message before the advisory call.

Examples:
  logtriage analyze app.log
  logtriage analyze --min-level error --output csv app.log
  cat app.log | logtriage analyze --no-ai`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().BoolVar(&analyzeStrict, "strict", false, "fail on malformed timestamps instead of skipping")
	cmd.Flags().StringVar(&analyzeMinLevel, "min-level", "", "lowest log level kept (debug, trace, info, warn, error, fatal)")
	cmd.Flags().BoolVar(&analyzeNoAI, "no-ai", false, "skip the advisory call, report classification only")
	cmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Minute, "analysis timeout")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "save the report to a file instead of stdout")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flag("strict").Changed {
		cfg.Input.Strict = analyzeStrict
	}
	if analyzeMinLevel != "" {
		cfg.Input.MinLevel = analyzeMinLevel
	}
	if analyzeOutputFile != "" {
		cfg.Output.Path = analyzeOutputFile
	}

	content, err := readInput(args)
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

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	result, err := runPipeline(ctx, cfg, provider, content)
	if err != nil {
		return err
	}

	return writeReport(cfg, result.Problems)
}

// readInput reads the whole log from the file argument or stdin.
func readInput(args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	path := args[0]
	if err := validateInputPath(path); err != nil {
		return "", fmt.Errorf("invalid input path: %w", err)
	}
	// #nosec G304 - path is validated above
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// buildProvider creates the configured advisory provider, or nil when the
// advisory call is disabled.
func buildProvider(cfg *config.Config) (ai.Provider, error) {
	if analyzeNoAI || cfg.AI.Provider == "" {
		return nil, nil
	}
	provider, err := ai.GlobalRegistry().Create(cfg.AI.Provider, cfg.ProviderConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", cfg.AI.Provider, err)
	}
	return provider, nil
}

func runPipeline(ctx context.Context, cfg *config.Config, provider ai.Provider, content string) (*pipeline.Result, error) {
	tokOpts := parser.DefaultOptions()
	tokOpts.Strict = cfg.Input.Strict
	tokOpts.MinLevel = cfg.MinLogLevel()
	tokOpts.Logger = log

	clsOpts := classify.DefaultOptions()
	clsOpts.MaxExamples = cfg.Classifier.MaxExamples
	clsOpts.MaxExampleLength = cfg.Classifier.MaxExampleLength
	clsOpts.EscalationThreshold = cfg.Classifier.EscalationThreshold
	clsOpts.Logger = log

	p := pipeline.New(pipeline.Options{
		Tokenizer:  parser.New(tokOpts),
		Classifier: classify.New(clsOpts),
		Provider:   provider,
		Logger:     log,
		MinLevel:   cfg.MinLogLevel(),
	})

	return p.Run(ctx, content)
}

// writeReport renders the merged problems and writes them to the
// configured destination.
func writeReport(cfg *config.Config, problems []common.ProblemRecord) error {
	f, err := formatter.New(cfg.Output.DefaultFormat, colorEnabled(cfg))
	if err != nil {
		return err
	}

	output, err := f.Format(formatter.NewReport(problems, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	if cfg.Output.Path == "" {
		_, err = os.Stdout.Write(output)
		return err
	}

	if err := os.WriteFile(cfg.Output.Path, output, 0o600); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", cfg.Output.Path, err)
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", cfg.Output.Path)
	}
	return nil
}

func colorEnabled(cfg *config.Config) bool {
	switch cfg.Output.ColorMode {
	case "always":
		return true
	case "never":
		return false
	default:
		return !noColor
	}
}

// validateInputPath validates that a log path is safe to read
func validateInputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, must be a file")
	}

	return nil
}
