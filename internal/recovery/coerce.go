package recovery

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/logtriage/logtriage/internal/common"
)

// Advisory items arrive either as keyed objects or as positional lists.
// Both variants are coerced into the one canonical record shape; unknown
// extra fields are dropped by construction.

// positionalFieldCount is the known field order: message, frequency,
// criticality, recommendation, root cause, info needed.
const positionalFieldCount = 6

type keyedItem struct {
	Message        json.RawMessage `json:"message"`
	Frequency      json.RawMessage `json:"frequency"`
	Criticality    json.RawMessage `json:"criticality"`
	Recommendation json.RawMessage `json:"recommendation"`
	RootCause      json.RawMessage `json:"root_cause"`
	InfoNeeded     json.RawMessage `json:"info_needed"`
}

// coerceItem converts one decoded item into a ProblemRecord. Items without
// a usable message are rejected; missing frequency defaults to 1 and
// missing criticality to low.
func coerceItem(item json.RawMessage) (common.ProblemRecord, error) {
	trimmed := strings.TrimSpace(string(item))
	if trimmed == "" {
		return common.ProblemRecord{}, fmt.Errorf("empty item")
	}

	var fields keyedItem
	switch trimmed[0] {
	case '{':
		if err := json.Unmarshal(item, &fields); err != nil {
			return common.ProblemRecord{}, fmt.Errorf("keyed item: %w", err)
		}
	case '[':
		var positional []json.RawMessage
		if err := json.Unmarshal(item, &positional); err != nil {
			return common.ProblemRecord{}, fmt.Errorf("positional item: %w", err)
		}
		if len(positional) > positionalFieldCount {
			positional = positional[:positionalFieldCount]
		}
		slots := []*json.RawMessage{
			&fields.Message, &fields.Frequency, &fields.Criticality,
			&fields.Recommendation, &fields.RootCause, &fields.InfoNeeded,
		}
		for i, value := range positional {
			*slots[i] = value
		}
	default:
		return common.ProblemRecord{}, fmt.Errorf("item is neither keyed nor positional")
	}

	message, err := coerceText(fields.Message, "\n")
	if err != nil {
		return common.ProblemRecord{}, fmt.Errorf("message: %w", err)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return common.ProblemRecord{}, fmt.Errorf("message missing")
	}

	frequency, err := coerceFrequency(fields.Frequency)
	if err != nil {
		return common.ProblemRecord{}, err
	}

	criticality, err := coerceText(fields.Criticality, " ")
	if err != nil {
		return common.ProblemRecord{}, fmt.Errorf("criticality: %w", err)
	}

	recommendation, err := coerceText(fields.Recommendation, "\n")
	if err != nil {
		return common.ProblemRecord{}, fmt.Errorf("recommendation: %w", err)
	}

	rootCause, err := coerceText(fields.RootCause, "; ")
	if err != nil {
		return common.ProblemRecord{}, fmt.Errorf("root_cause: %w", err)
	}

	infoNeeded, err := coerceText(fields.InfoNeeded, "; ")
	if err != nil {
		return common.ProblemRecord{}, fmt.Errorf("info_needed: %w", err)
	}

	return common.ProblemRecord{
		Message:        message,
		Frequency:      frequency,
		Criticality:    common.ParseCriticality(criticality),
		Recommendation: strings.TrimSpace(recommendation),
		RootCause:      strings.TrimSpace(rootCause),
		InfoNeeded:     strings.TrimSpace(infoNeeded),
	}, nil
}

// coerceText accepts strings, numbers and lists of either, joining list
// elements with sep. Missing and null values become "".
func coerceText(raw json.RawMessage, sep string) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, el := range list {
			part, err := coerceText(el, sep)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		return strings.Join(parts, sep), nil
	}

	return "", fmt.Errorf("unsupported value shape %s", string(raw))
}

// coerceFrequency accepts numbers, numeric strings and lists. A numeric
// list is summed; a list with any non-numeric element reduces to its
// length. Missing and null values default to 1.
func coerceFrequency(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 1, nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("frequency: non-numeric string %q", s)
		}
		return v, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		sum := 0
		for _, el := range list {
			var v float64
			if json.Unmarshal(el, &v) != nil {
				return len(list), nil
			}
			sum += int(v)
		}
		return sum, nil
	}

	return 0, fmt.Errorf("frequency: unsupported value shape %s", string(raw))
}
