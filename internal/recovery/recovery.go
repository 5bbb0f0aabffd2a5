// Package recovery extracts structured problem records from untrusted
// advisory text. Strategies are tried in a fixed order until one yields at
// least one record; a fully unrecoverable reply produces an empty result,
// never an error.
package recovery

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/logtriage/logtriage/internal/common"
)

// Strategy tags which step of the chain produced the result.
type Strategy string

const (
	StrategyStrict  Strategy = "strict"
	StrategyRepair  Strategy = "repair"
	StrategySalvage Strategy = "salvage"
	StrategyProse   Strategy = "prose"
	StrategyNone    Strategy = "none"
)

// Result carries the recovered records, the strategy that produced them and
// the number of items skipped as malformed along the way.
type Result struct {
	Records  []common.ProblemRecord
	Strategy Strategy
	Skipped  int
}

var (
	controlCharsRe  = regexp.MustCompile(`[\x00-\x1F\x7F]+`)
	codeFenceRe     = regexp.MustCompile("```json|```")
	lineCommentRe   = regexp.MustCompile(`(?m)^\s*//.*$`)
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
	braceObjectRe   = regexp.MustCompile(`\{[^{}]*\}`)

	proseHeadingRe  = regexp.MustCompile(`#### Ошибка №\d+:`)
	proseMessageRe  = regexp.MustCompile("`([^`]+)`")
	proseFreqRe     = regexp.MustCompile(`Частота:\s*(\d+)`)
	proseCritRe     = regexp.MustCompile(`(?i)Критичность:\s*(\p{L}+)`)
	proseRecBlockRe = regexp.MustCompile(`(?s)Рекомендации:\s*[-•]?\s*(.*?)\n\n`)
	proseRecLineRe  = regexp.MustCompile(`Рекомендации:\s*[-•]?\s*(.+)`)
)

// Engine runs the recovery chain.
type Engine struct {
	log *logrus.Logger
}

// New creates an engine. A nil logger falls back to the standard logger.
func New(logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{log: logger}
}

// Recover runs the chain against one raw advisory reply.
func (e *Engine) Recover(raw string) Result {
	candidate := sanitize(raw)

	if candidate != "" {
		attempts := []struct {
			strategy Strategy
			run      func(string) ([]common.ProblemRecord, int, bool)
		}{
			{StrategyStrict, attemptStrict},
			{StrategyRepair, attemptRepair},
			{StrategySalvage, attemptSalvage},
		}
		for _, a := range attempts {
			if records, skipped, ok := a.run(candidate); ok {
				e.log.WithFields(logrus.Fields{
					"strategy": string(a.strategy),
					"records":  len(records),
					"skipped":  skipped,
				}).Debug("advisory reply recovered")
				return Result{Records: records, Strategy: a.strategy, Skipped: skipped}
			}
		}
	}

	if records, skipped, ok := attemptProse(raw); ok {
		e.log.WithField("records", len(records)).Debug("advisory reply recovered from prose")
		return Result{Records: records, Strategy: StrategyProse, Skipped: skipped}
	}

	e.log.Warn("advisory reply not recoverable by any strategy")
	return Result{Strategy: StrategyNone}
}

// sanitize strips fences, line comments and control characters, then slices
// the first "[" through the last "]" as the candidate list. An empty return
// means no bracketed list is present.
func sanitize(raw string) string {
	s := codeFenceRe.ReplaceAllString(raw, "")
	s = lineCommentRe.ReplaceAllString(s, "")
	s = controlCharsRe.ReplaceAllString(s, "")

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func attemptStrict(candidate string) ([]common.ProblemRecord, int, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &items); err != nil {
		return nil, 0, false
	}

	var records []common.ProblemRecord
	skipped := 0
	for _, item := range items {
		record, err := coerceItem(item)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, skipped, false
	}
	return records, skipped, true
}

func attemptRepair(candidate string) ([]common.ProblemRecord, int, bool) {
	repaired := trailingCommaRe.ReplaceAllString(candidate, "$1")
	if repaired == candidate {
		return nil, 0, false
	}
	return attemptStrict(repaired)
}

// attemptSalvage decodes brace-balanced non-nested objects independently
// and keeps whatever subset coerces.
func attemptSalvage(candidate string) ([]common.ProblemRecord, int, bool) {
	var records []common.ProblemRecord
	skipped := 0
	for _, obj := range braceObjectRe.FindAllString(candidate, -1) {
		repaired := trailingCommaRe.ReplaceAllString(obj, "$1")
		record, err := coerceItem([]byte(repaired))
		if err != nil {
			skipped++
			continue
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, skipped, false
	}
	return records, skipped, true
}

// attemptProse parses replies formatted as markdown sections instead of
// structured data. Each "#### Ошибка №N:" section yields one record with
// best-effort field extraction.
func attemptProse(raw string) ([]common.ProblemRecord, int, bool) {
	blocks := proseHeadingRe.Split(raw, -1)
	if len(blocks) < 2 {
		return nil, 0, false
	}

	var records []common.ProblemRecord
	for _, block := range blocks[1:] {
		record := common.ProblemRecord{
			Message:        "Неизвестно",
			Frequency:      1,
			Criticality:    common.CriticalityLow,
			Recommendation: "—",
		}
		if m := proseMessageRe.FindStringSubmatch(block); m != nil {
			record.Message = strings.TrimSpace(m[1])
		}
		if m := proseFreqRe.FindStringSubmatch(block); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				record.Frequency = n
			}
		}
		if m := proseCritRe.FindStringSubmatch(block); m != nil {
			record.Criticality = common.ParseCriticality(m[1])
		}
		if m := proseRecBlockRe.FindStringSubmatch(block); m != nil {
			record.Recommendation = strings.TrimSpace(m[1])
		} else if m := proseRecLineRe.FindStringSubmatch(block); m != nil {
			record.Recommendation = strings.TrimSpace(m[1])
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, 0, false
	}
	return records, 0, true
}
