package nats

import "strings"

// DefaultPrefix is the subject prefix used when Transport.Prefix is empty.
const DefaultPrefix = "swanjson"

func namespace(prefix string, values ...string) string {
	parts := make([]string, 0, len(values)+1)
	parts = append(parts, prefix)
	for _, v := range values {
		if v == "" {
			continue
		}
		parts = append(parts, formatForNamespace(v))
	}
	return strings.Join(parts, ".")
}

// formatForNamespace makes value safe for use as a NATS subject token.
// Camel case humps become dashes, underscores become dashes, and only
// letters, digits, dots, dashes and the * and > wildcards survive.
func formatForNamespace(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 4)

	var prev rune
	for _, r := range value {
		switch {
		case r >= 'A' && r <= 'Z':
			if prev >= 'a' && prev <= 'z' {
				b.WriteByte('-')
				b.WriteRune(r + ('a' - 'A'))
			} else {
				b.WriteRune(r)
			}
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteByte('-')
		case r == '.' || r == '*' || r == '>':
			b.WriteRune(r)
		default:
			continue
		}
		prev = r
	}
	return b.String()
}
