package common

import (
	"fmt"
	"strings"
	"time"
)

// LogLevel represents the severity of a log record. The ordering matters:
// dominant-level selection takes the maximum level present in a group.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelTrace
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String methods for LogLevel
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses string to LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "TRACE":
		return LevelTrace
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR", "ERR":
		return LevelError
	case "FATAL", "EXCEPTION":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Criticality is the three-level ordinal severity assigned to a group or
// merged problem record: low < medium < high.
type Criticality int

const (
	CriticalityLow Criticality = iota
	CriticalityMedium
	CriticalityHigh
)

func (c Criticality) String() string {
	switch c {
	case CriticalityMedium:
		return "medium"
	case CriticalityHigh:
		return "high"
	default:
		return "low"
	}
}

// ParseCriticality accepts the English and Russian spellings the advisory
// service is known to emit. Unknown values default to low.
func ParseCriticality(s string) Criticality {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "высокая", "критичная", "critical":
		return CriticalityHigh
	case "medium", "средняя", "moderate":
		return CriticalityMedium
	default:
		return CriticalityLow
	}
}

// MaxCriticality returns the higher of two criticalities.
func MaxCriticality(a, b Criticality) Criticality {
	if a > b {
		return a
	}
	return b
}

// MarshalJSON serializes criticality as its string form so report field
// values stay stable across formats.
func (c Criticality) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", c.String())), nil
}

// UnmarshalJSON accepts any spelling ParseCriticality knows about.
func (c *Criticality) UnmarshalJSON(data []byte) error {
	*c = ParseCriticality(strings.Trim(string(data), `"`))
	return nil
}

// LogRecord is one tokenized log entry. The message buffer accumulates
// continuation lines while the record is still owned by the tokenizer loop;
// once appended to the output sequence it is not mutated again.
type LogRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Level       LogLevel  `json:"level"`
	Thread      string    `json:"thread"`
	OriginClass string    `json:"origin_class"`
	Message     string    `json:"message"`
}

// ExampleSeparator joins the distinct raw examples kept per classified
// error. It must stay distinguishable from MergedExampleSeparator so the
// merge engine can losslessly re-split unioned examples.
const ExampleSeparator = "\n---\n"

// MergedExampleSeparator joins examples after merge/dedup.
const MergedExampleSeparator = " | "

// ClassifiedError is the per-group classification result handed to prompt
// construction and used as the authoritative frequency source during
// correlation.
type ClassifiedError struct {
	Message         string      `json:"message"`
	ExampleMessages string      `json:"original_message"`
	Frequency       int         `json:"frequency"`
	Level           LogLevel    `json:"level"`
	OriginClass     string      `json:"class_name"`
	Criticality     Criticality `json:"criticality"`
}

// Examples returns the individual raw examples of a classified error.
func (e *ClassifiedError) Examples() []string {
	if e.ExampleMessages == "" {
		return nil
	}
	return strings.Split(e.ExampleMessages, ExampleSeparator)
}

// ProblemRecord is the recovered and merged unit ultimately reported.
// JSON field names match the report schema consumed by downstream tooling.
type ProblemRecord struct {
	Message        string      `json:"message"`
	ExampleMessage string      `json:"original_message,omitempty"`
	Frequency      int         `json:"frequency"`
	Criticality    Criticality `json:"criticality"`
	Recommendation string      `json:"recommendation"`
	RootCause      string      `json:"root_cause,omitempty"`
	InfoNeeded     string      `json:"info_needed,omitempty"`
}
