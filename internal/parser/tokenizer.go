// Package parser tokenizes raw application logs into discrete records,
// folding multi-line stack traces into the record that produced them.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/logtriage/logtriage/internal/common"
)

const timestampLayout = "2006-01-02 15:04:05,000"

// headerRe matches the first line of a log record: timestamp, level token
// (optionally bracketed, possibly padded like "WARN "), bracketed thread
// name, origin identifier and a ":" or "-" separator before the message.
var headerRe = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3})\s+\[?([A-Za-z]+)\s*\]?\s+\[([^\]]+)\]\s+(\S+)\s*[:\-]\s*(.*)$`)

// continuationPrefixes mark lines that belong to the preceding record
// rather than starting a new one.
var continuationPrefixes = []string{"at ", "Caused by", "org.", "com."}

// Options control tokenizer policy.
type Options struct {
	// Strict aborts the whole batch when a header line carries a
	// timestamp that matches the pattern but fails to parse. When false
	// the record is skipped and a diagnostic is logged.
	Strict bool

	// MinLevel is the lowest level retained. Filtering happens at
	// header-match time, so continuation lines of a dropped record are
	// dropped with it.
	MinLevel common.LogLevel

	// Logger receives skip diagnostics. Defaults to the standard logger.
	Logger *logrus.Logger
}

// DefaultOptions keeps warning-class records and above and skips
// unparsable lines.
func DefaultOptions() Options {
	return Options{MinLevel: common.LevelWarn}
}

// Tokenizer converts raw multi-line log text into ordered LogRecords.
type Tokenizer struct {
	opts Options
	log  *logrus.Logger
}

// New creates a tokenizer with the given options.
func New(opts Options) *Tokenizer {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Tokenizer{opts: opts, log: log}
}

// Tokenize parses content into records, preserving input order. Lines that
// are neither headers nor continuations of an open record are ignored.
func (t *Tokenizer) Tokenize(content string) ([]*common.LogRecord, error) {
	var records []*common.LogRecord
	var current *common.LogRecord

	flush := func() {
		if current != nil {
			records = append(records, current)
			current = nil
		}
	}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		m := headerRe.FindStringSubmatch(line)
		if m == nil {
			if current != nil && isContinuation(line) {
				current.Message += " " + line
			}
			continue
		}

		// A new header always closes the previous record, even when the
		// new one is filtered out, so stray stack frames of a dropped
		// record never leak into its predecessor.
		flush()

		level := common.ParseLogLevel(m[2])
		if level < t.opts.MinLevel {
			continue
		}

		ts, err := time.Parse(timestampLayout, m[1])
		if err != nil {
			if t.opts.Strict {
				return nil, fmt.Errorf("parse timestamp %q: %w", m[1], err)
			}
			t.log.WithField("line", line).Debug("skipping record with unparsable timestamp")
			continue
		}

		current = &common.LogRecord{
			Timestamp:   ts,
			Level:       level,
			Thread:      m[3],
			OriginClass: m[4],
			Message:     strings.TrimSpace(m[5]),
		}
	}

	flush()
	return records, nil
}

func isContinuation(line string) bool {
	for _, p := range continuationPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
