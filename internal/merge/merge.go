// Package merge collapses correlated problem records into one record per
// distinct message, combining frequencies, examples and recommendations.
package merge

import (
	"fmt"
	"strings"

	"github.com/logtriage/logtriage/internal/common"
)

// RecommendationPlaceholder is used when a merged group ends up with no
// recommendation steps at all; the field is always non-empty.
const RecommendationPlaceholder = "Рекомендации отсутствуют."

// Options control merge output limits.
type Options struct {
	// MaxExampleLength caps the combined example string, in runes, before
	// an ellipsis is appended.
	MaxExampleLength int
}

// DefaultOptions returns the standard limits.
func DefaultOptions() Options {
	return Options{MaxExampleLength: 500}
}

// Merger merges problem records grouped by trimmed message. Grouping by
// frequency is deliberately not supported: unrelated problems routinely
// share a count.
type Merger struct {
	opts Options
}

// New creates a merger. A zero example cap falls back to the default.
func New(opts Options) *Merger {
	if opts.MaxExampleLength <= 0 {
		opts.MaxExampleLength = DefaultOptions().MaxExampleLength
	}
	return &Merger{opts: opts}
}

// Merge returns one record per distinct trimmed message, in first-seen
// order. Frequencies are summed, criticality takes the group maximum,
// examples are unioned and recommendation steps are deduplicated by a
// stemmed key.
func (m *Merger) Merge(records []common.ProblemRecord) []common.ProblemRecord {
	var order []string
	groups := make(map[string][]common.ProblemRecord)

	for _, r := range records {
		key := strings.TrimSpace(r.Message)
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	result := make([]common.ProblemRecord, 0, len(order))
	for _, key := range order {
		members := groups[key]

		merged := common.ProblemRecord{Message: key}
		criticality := common.CriticalityLow
		for _, member := range members {
			merged.Frequency += member.Frequency
			criticality = common.MaxCriticality(criticality, member.Criticality)
		}
		merged.Criticality = criticality
		merged.ExampleMessage = m.combineExamples(members)
		merged.Recommendation = combineRecommendations(members)
		merged.RootCause = unionField(members, func(r common.ProblemRecord) string { return r.RootCause })
		merged.InfoNeeded = unionField(members, func(r common.ProblemRecord) string { return r.InfoNeeded })

		result = append(result, merged)
	}
	return result
}

// combineExamples re-splits every member's example on both known
// separators, unions the distinct parts in order and rejoins them.
func (m *Merger) combineExamples(members []common.ProblemRecord) string {
	var parts []string
	seen := make(map[string]bool)
	for _, member := range members {
		for _, chunk := range strings.Split(member.ExampleMessage, common.ExampleSeparator) {
			for _, part := range strings.Split(chunk, common.MergedExampleSeparator) {
				part = strings.TrimSpace(part)
				if part == "" || seen[part] {
					continue
				}
				seen[part] = true
				parts = append(parts, part)
			}
		}
	}

	combined := strings.Join(parts, common.MergedExampleSeparator)
	runes := []rune(combined)
	if len(runes) > m.opts.MaxExampleLength {
		combined = string(runes[:m.opts.MaxExampleLength]) + "..."
	}
	return combined
}

// combineRecommendations splits every member's recommendation into steps,
// keeps the first-seen form of each stemmed key and renumbers the
// survivors.
func combineRecommendations(members []common.ProblemRecord) string {
	var steps []string
	seen := make(map[string]bool)
	for _, member := range members {
		for _, part := range splitSteps(member.Recommendation) {
			step := stripOrdinal(part)
			if step == "" {
				continue
			}
			key := stepKey(step)
			if seen[key] {
				continue
			}
			seen[key] = true
			steps = append(steps, step)
		}
	}

	if len(steps) == 0 {
		return RecommendationPlaceholder
	}
	numbered := make([]string, len(steps))
	for i, step := range steps {
		numbered[i] = fmt.Sprintf("%d. %s", i+1, step)
	}
	return strings.Join(numbered, "\n")
}

// unionField applies the coarse split/union/join treatment shared by the
// root-cause and info-needed fields: exact-string dedup, no stemming.
func unionField(members []common.ProblemRecord, field func(common.ProblemRecord) string) string {
	var parts []string
	seen := make(map[string]bool)
	for _, member := range members {
		for _, part := range strings.Split(field(member), ";") {
			part = strings.TrimSpace(part)
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "; ")
}
