package normalize

import "regexp"

// Masking and rewrite rules, applied in a fixed order. Later rules assume
// earlier masking already happened (the rollback equivalences match on the
// <HASH> placeholder, not on raw hex).
var (
	// Leading fully-qualified name ending in a colon, e.g.
	// "org.postgresql.util.PSQLException:".
	prefixRe = regexp.MustCompile(`^([A-Za-z_][\w$]*(?:\.[\w$]+)+):\s*`)

	// 36-character UUID-shaped substrings.
	uuidRe = regexp.MustCompile(`[a-fA-F0-9\-]{36}`)

	// Digit runs of length >= 8, unconditionally (also catches digits glued
	// to identifiers).
	numRe = regexp.MustCompile(`\d{8,}`)

	// Hex-looking runs of length >= 32.
	hashRe = regexp.MustCompile(`[a-fA-F0-9]{32,}`)

	// key=value pairs whose key contains "id".
	idPairRe = regexp.MustCompile(`(?i)([a-z0-9_-]*id[a-z0-9_-]*)\s*=\s*[a-z0-9_-]+`)

	// Generic Russian error sentence carrying a stack frame; collapsed to
	// "Ошибка в <Class>.<Method>".
	genericErrorRe = regexp.MustCompile(`Произошла ошибка.*?at\s+([\w.$]+)\.([\w$]+)\(`)
)

// equivalenceRule folds semantically identical phrasings into one canonical
// phrase.
type equivalenceRule struct {
	re          *regexp.Regexp
	replacement string
}

var equivalenceRules = []equivalenceRule{
	{
		re:          regexp.MustCompile(`(?i)An error occurred when calling original method for key\s*=?.*<HASH>.*?Transactions will be rolled back\.`),
		replacement: "Idempotent call error (rolling back transaction)",
	},
	{
		re:          regexp.MustCompile(`(?i)Rolling back transaction for key\s*<HASH>\.`),
		replacement: "Idempotent call error (rolling back transaction)",
	},
	{
		re:          regexp.MustCompile(`(?i)usage of deprecated configuration property '([^']+)'[^.]*\.?`),
		replacement: "Deprecated configuration property '$1'",
	},
	{
		re:          regexp.MustCompile(`(?i)configuration property '([^']+)' is deprecated[^.]*\.?`),
		replacement: "Deprecated configuration property '$1'",
	},
}
