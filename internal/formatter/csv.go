package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// utf8BOM keeps Excel from misreading Cyrillic text in the export.
const utf8BOM = "\xEF\xBB\xBF"

// csvFormatter formats problem records as CSV
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(report *Report) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(utf8BOM)
	writer := csv.NewWriter(&b)

	headers := []string{
		"message",
		"original_message",
		"frequency",
		"criticality",
		"recommendation",
		"root_cause",
		"info_needed",
	}

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i := range report.Problems {
		p := &report.Problems[i]
		record := []string{
			flattenCSVString(p.Message),
			flattenCSVString(p.ExampleMessage),
			strconv.Itoa(p.Frequency),
			p.Criticality.String(),
			flattenCSVString(p.Recommendation),
			flattenCSVString(p.RootCause),
			flattenCSVString(p.InfoNeeded),
		}

		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}

// flattenCSVString folds multi-line fields into a single spreadsheet cell.
func flattenCSVString(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
