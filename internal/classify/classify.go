// Package classify groups tokenized log records by canonical message and
// assigns each group a frequency, a dominant level and a criticality.
package classify

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/logtriage/logtriage/internal/common"
	"github.com/logtriage/logtriage/internal/normalize"
)

// Options control grouping limits and the level-to-criticality mapping.
// The mapping is copied by New, so a classifier never observes later
// mutations of the caller's table.
type Options struct {
	// MaxExamples is the number of distinct raw examples kept per group.
	MaxExamples int

	// MaxExampleLength caps each kept example, in runes, before an
	// ellipsis is appended.
	MaxExampleLength int

	// EscalationThreshold is the frequency above which warning-level
	// groups are raised to high criticality.
	EscalationThreshold int

	// CriticalityByLevel maps a group's dominant level to its base
	// criticality. Missing levels default to low.
	CriticalityByLevel map[common.LogLevel]common.Criticality

	// Logger receives noise-drop diagnostics. Defaults to the standard
	// logger.
	Logger *logrus.Logger
}

// DefaultOptions returns the standard limits and base mapping.
func DefaultOptions() Options {
	return Options{
		MaxExamples:         5,
		MaxExampleLength:    200,
		EscalationThreshold: 50,
		CriticalityByLevel: map[common.LogLevel]common.Criticality{
			common.LevelFatal: common.CriticalityHigh,
			common.LevelError: common.CriticalityHigh,
			common.LevelWarn:  common.CriticalityMedium,
		},
	}
}

// Classifier groups records and scores the groups.
type Classifier struct {
	opts   Options
	levels map[common.LogLevel]common.Criticality
	log    *logrus.Logger
}

// New creates a classifier. Zero limits fall back to the defaults.
func New(opts Options) *Classifier {
	def := DefaultOptions()
	if opts.MaxExamples <= 0 {
		opts.MaxExamples = def.MaxExamples
	}
	if opts.MaxExampleLength <= 0 {
		opts.MaxExampleLength = def.MaxExampleLength
	}
	if opts.EscalationThreshold <= 0 {
		opts.EscalationThreshold = def.EscalationThreshold
	}
	levels := make(map[common.LogLevel]common.Criticality)
	src := opts.CriticalityByLevel
	if src == nil {
		src = def.CriticalityByLevel
	}
	for k, v := range src {
		levels[k] = v
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Classifier{opts: opts, levels: levels, log: log}
}

type group struct {
	canonical string
	frequency int
	level     common.LogLevel
	origin    string
	examples  []string
	seen      map[string]bool
}

// Classify groups records by canonical message, dropping noise groups, and
// returns classified errors sorted by descending frequency. Ties break on
// the canonical message so the order is deterministic.
func (c *Classifier) Classify(records []*common.LogRecord) []*common.ClassifiedError {
	groups := make(map[string]*group)

	for _, r := range records {
		canonical := normalize.Canonical(r.Message)
		if normalize.IsNoise(canonical) {
			c.log.WithField("message", r.Message).Debug("dropping generic-error record")
			continue
		}

		g, ok := groups[canonical]
		if !ok {
			g = &group{
				canonical: canonical,
				level:     r.Level,
				origin:    r.OriginClass,
				seen:      make(map[string]bool),
			}
			groups[canonical] = g
		}

		g.frequency++
		if r.Level > g.level {
			g.level = r.Level
		}
		if len(g.examples) < c.opts.MaxExamples && !g.seen[r.Message] {
			g.seen[r.Message] = true
			g.examples = append(g.examples, truncate(r.Message, c.opts.MaxExampleLength))
		}
	}

	result := make([]*common.ClassifiedError, 0, len(groups))
	for _, g := range groups {
		result = append(result, &common.ClassifiedError{
			Message:         g.canonical,
			ExampleMessages: strings.Join(g.examples, common.ExampleSeparator),
			Frequency:       g.frequency,
			Level:           g.level,
			OriginClass:     g.origin,
			Criticality:     c.criticality(g.level, g.frequency),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Frequency != result[j].Frequency {
			return result[i].Frequency > result[j].Frequency
		}
		return result[i].Message < result[j].Message
	})
	return result
}

// criticality applies the base mapping, then escalation: error-class groups
// are always high, warning groups above the threshold are raised to high.
func (c *Classifier) criticality(level common.LogLevel, frequency int) common.Criticality {
	base, ok := c.levels[level]
	if !ok {
		base = common.CriticalityLow
	}
	if level >= common.LevelError {
		return common.CriticalityHigh
	}
	if level == common.LevelWarn && frequency > c.opts.EscalationThreshold {
		return common.CriticalityHigh
	}
	return base
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
