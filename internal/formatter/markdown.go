package formatter

import (
	"fmt"
	"strings"
)

// markdownFormatter formats the report as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# " + report.Summary + "\n\n")
	fmt.Fprintf(&b, "Всего проблем: %d\n\n", report.TotalProblems)

	for i := range report.Problems {
		p := &report.Problems[i]

		fmt.Fprintf(&b, "#### Ошибка №%d: `%s`\n\n", i+1, p.Message)
		fmt.Fprintf(&b, "- Частота: %d\n", p.Frequency)
		fmt.Fprintf(&b, "- Критичность: %s\n", p.Criticality)
		if p.ExampleMessage != "" {
			fmt.Fprintf(&b, "- Пример: %s\n", flattenCSVString(p.ExampleMessage))
		}
		if p.RootCause != "" {
			fmt.Fprintf(&b, "- Вероятная причина: %s\n", p.RootCause)
		}
		if p.InfoNeeded != "" {
			fmt.Fprintf(&b, "- Нужна информация: %s\n", p.InfoNeeded)
		}

		b.WriteString("- Рекомендации:\n")
		for _, step := range strings.Split(p.Recommendation, "\n") {
			if step = strings.TrimSpace(step); step != "" {
				b.WriteString("  - " + step + "\n")
			}
		}
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}
