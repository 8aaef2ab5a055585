package contracts

import "strings"

// ParseProducers extracts the distinct producer names of one record.
//
// The raw value is split on commas and semicolons. Inside each token the
// literal " and " is replaced by a single space, so "Bob and Harvey" stays
// one producer ("Bob Harvey"). Tokens are trimmed, blanks dropped and
// duplicates removed (case-sensitive) keeping first-seen order.
func ParseProducers(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})

	names := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		name := strings.TrimSpace(strings.ReplaceAll(token, " and ", " "))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}
