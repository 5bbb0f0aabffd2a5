// Package normalize maps log messages to canonical grouping keys by masking
// volatile substrings and folding known message variants.
package normalize

import "strings"

// Placeholders substituted for volatile substrings.
const (
	placeholderUUID = "<UUID>"
	placeholderNum  = "<NUM>"
	placeholderHash = "<HASH>"
	placeholderID   = "${1}=<ID>"
)

// noiseSentinels are canonical forms too generic to report; groups keyed by
// one of these are dropped by the classifier.
var noiseSentinels = []string{
	"произошла ошибка",
	"an error occurred",
}

// Canonical returns the canonical form of a log message used for grouping.
// It is a pure function of the message and idempotent:
// Canonical(Canonical(m)) == Canonical(m).
func Canonical(message string) string {
	// A leading exception-class prefix is detached first and reattached at
	// the end, so two messages with identical bodies but different
	// originating exception classes stay distinct.
	preserved := ""
	if m := prefixRe.FindStringSubmatch(message); m != nil {
		preserved = m[1]
		message = message[len(m[0]):]
	}

	message = uuidRe.ReplaceAllString(message, placeholderUUID)
	message = numRe.ReplaceAllString(message, placeholderNum)
	message = hashRe.ReplaceAllString(message, placeholderHash)
	message = idPairRe.ReplaceAllString(message, placeholderID)

	for _, rule := range equivalenceRules {
		message = rule.re.ReplaceAllString(message, rule.replacement)
	}

	// Trailing stack remnants after a ": at " marker carry no grouping
	// signal once the head of the message is known.
	if idx := strings.Index(message, ": at "); idx >= 0 {
		message = message[:idx]
	}

	// Generic Russian error sentences are keyed by the innermost frame.
	if m := genericErrorRe.FindStringSubmatch(message); m != nil {
		class := m[1]
		if dot := strings.LastIndex(class, "."); dot >= 0 {
			class = class[dot+1:]
		}
		message = "Ошибка в " + class + "." + m[2]
	}

	if preserved != "" {
		return strings.TrimSpace(preserved + ": " + message)
	}
	return strings.TrimSpace(message)
}

// IsNoise reports whether a canonical message is the generic-error sentinel
// that callers must drop instead of reporting.
func IsNoise(canonical string) bool {
	c := strings.TrimSpace(canonical)
	for _, sentinel := range noiseSentinels {
		if strings.EqualFold(c, sentinel) {
			return true
		}
	}
	return false
}
