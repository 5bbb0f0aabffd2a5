package merge

import (
	"regexp"
	"strings"
)

var (
	stepSplitRe = regexp.MustCompile(`[;\n]+`)
	ordinalRe   = regexp.MustCompile(`^\d+[.)]\s*`)

	// Verb and participle suffixes, longest first so "йтесь" is not
	// mis-stripped as "тесь". Unifies imperative and infinitive forms
	// ("создайте"/"создать", "проверьте"/"проверить").
	verbSuffixes = []string{"йтесь", "итесь", "тесь", "йте", "ите", "ете", "те", "ть"}
)

// stepKeyLength bounds the dedup key; near-identical long steps that share
// a head collapse together.
const stepKeyLength = 25

func splitSteps(recommendation string) []string {
	var steps []string
	for _, part := range stepSplitRe.Split(recommendation, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			steps = append(steps, part)
		}
	}
	return steps
}

func stripOrdinal(step string) string {
	return strings.TrimSpace(ordinalRe.ReplaceAllString(step, ""))
}

// stepKey computes the dedup key of a recommendation step: lowercase,
// trailing punctuation stripped, each word crudely stemmed, words
// concatenated and truncated.
func stepKey(step string) string {
	lower := strings.ToLower(step)
	lower = strings.TrimRight(lower, ".,!")

	var b strings.Builder
	for _, word := range strings.Fields(lower) {
		b.WriteString(stemWord(word))
	}

	runes := []rune(b.String())
	if len(runes) > stepKeyLength {
		runes = runes[:stepKeyLength]
	}
	return string(runes)
}

// stemWord drops one known verb suffix, folds ё into е and trims the
// trailing soft sign and connecting vowel so forms like "проверить",
// "проверьте" and "проверите" share a stem.
func stemWord(word string) string {
	base := word
	for _, suffix := range verbSuffixes {
		if strings.HasSuffix(base, suffix) && len(base) > len(suffix) {
			base = strings.TrimSuffix(base, suffix)
			break
		}
	}
	base = strings.ReplaceAll(base, "ё", "е")
	return strings.TrimRight(base, "ьи")
}
