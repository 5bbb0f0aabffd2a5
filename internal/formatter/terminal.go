package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/logtriage/logtriage/internal/common"
)

// terminalFormatter formats the report as plain text for terminal display
// using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = true
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString(report.Summary + "\n\n")

	f.writeStatistics(&b, report)

	for i := range report.Problems {
		f.writeProblem(&b, i+1, &report.Problems[i])
	}

	return []byte(b.String()), nil
}

// writeStatistics writes the criticality breakdown as a tree view.
func (f *terminalFormatter) writeStatistics(b *strings.Builder, report *Report) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Statistics\n")

	var high, medium, low int
	for i := range report.Problems {
		switch report.Problems[i].Criticality {
		case common.CriticalityHigh:
			high++
		case common.CriticalityMedium:
			medium++
		default:
			low++
		}
	}

	items := []termfmt.TreeItem{
		{Label: "Total Problems", Value: fmt.Sprintf("%d", report.TotalProblems)},
		{Label: "High", Value: fmt.Sprintf("%d", high)},
		{Label: "Medium", Value: fmt.Sprintf("%d", medium)},
		{Label: "Low", Value: fmt.Sprintf("%d", low), Last: true},
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeProblem writes one merged problem with its recommendation steps.
func (f *terminalFormatter) writeProblem(b *strings.Builder, index int, p *common.ProblemRecord) {
	emoji := getCriticalityEmoji(p.Criticality, f.opts)
	fmt.Fprintf(b, "%s %d. %s\n", emoji, index, p.Message)

	items := []termfmt.TreeItem{
		{Label: "Frequency", Value: fmt.Sprintf("%d", p.Frequency)},
		{Label: "Criticality", Value: p.Criticality.String()},
	}
	if p.ExampleMessage != "" {
		items = append(items, termfmt.TreeItem{Label: "Example", Value: flattenCSVString(p.ExampleMessage)})
	}
	if p.RootCause != "" {
		items = append(items, termfmt.TreeItem{Label: "Root Cause", Value: p.RootCause})
	}
	if p.InfoNeeded != "" {
		items = append(items, termfmt.TreeItem{Label: "Info Needed", Value: p.InfoNeeded})
	}
	items = append(items, termfmt.TreeItem{Label: "Recommendation", Value: flattenCSVString(p.Recommendation), Last: true})

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// getCriticalityEmoji returns the marker for a criticality level using
// go-termfmt
func getCriticalityEmoji(c common.Criticality, opts *termfmt.TerminalOptions) string {
	switch c {
	case common.CriticalityHigh:
		return termfmt.GetEmoji("error", opts)
	case common.CriticalityMedium:
		return termfmt.GetEmoji("warning", opts)
	default:
		return termfmt.GetEmoji("info", opts)
	}
}
