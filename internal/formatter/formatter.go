package formatter

import (
	"fmt"
	"time"

	"github.com/logtriage/logtriage/internal/common"
)

// Report is the rendering input shared by all formatters.
type Report struct {
	Summary       string                 `json:"summary"`
	TotalProblems int                    `json:"total_problems"`
	Problems      []common.ProblemRecord `json:"problems"`
}

// NewReport wraps merged problem records with the summary line used across
// all output formats.
func NewReport(problems []common.ProblemRecord, generatedAt time.Time) *Report {
	return &Report{
		Summary:       "Анализ логов от " + generatedAt.Format("2006-01-02 15:04:05"),
		TotalProblems: len(problems),
		Problems:      problems,
	}
}

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// New returns the formatter registered under the given format name.
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "json", "":
		return NewJSON(), nil
	case "csv":
		return NewCSV(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "terminal", "text":
		return NewTerminal(color), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q", format)
	}
}
