package parser

import (
	"fmt"

	"github.com/yildizm/go-logparser"

	"github.com/logtriage/logtriage/internal/common"
)

// TokenizeFallback ingests logs that do not match the structured header
// pattern, auto-detecting JSON, logfmt or plain text. Thread and origin
// are unknown in these formats; records below minLevel are dropped.
func TokenizeFallback(content string, minLevel common.LogLevel) ([]*common.LogRecord, error) {
	p := logparser.New()
	entries, err := p.ParseString(content)
	if err != nil {
		return nil, fmt.Errorf("fallback parse: %w", err)
	}

	var records []*common.LogRecord
	for _, entry := range entries {
		level := common.ParseLogLevel(entry.Level)
		if level < minLevel {
			continue
		}
		records = append(records, &common.LogRecord{
			Timestamp: entry.Timestamp,
			Level:     level,
			Message:   entry.Message,
		})
	}
	return records, nil
}
