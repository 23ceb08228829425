package swanjson

const hexDigits = "0123456789ABCDEF"

// Escape returns s escaped for use inside a JSON string, wrapped in double
// quotes when quoted is set.
func Escape(s string, quoted bool) string {
	return string(AppendEscaped(make([]byte, 0, len(s)+2), s, quoted))
}

// AppendEscaped appends the escaped form of s to dst.
//
// Backslash, double quote and solidus are prefixed with a backslash, the five
// common control characters use their short escapes, and any other byte
// below 0x20 becomes a \u00XX escape. Everything else is copied verbatim,
// which keeps multi-byte UTF-8 sequences intact since none of their bytes
// fall below 0x80.
func AppendEscaped(dst []byte, s string, quoted bool) []byte {
	if quoted {
		dst = append(dst, '"')
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\', '"', '/':
			dst = append(dst, '\\', c)
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\r':
			dst = append(dst, '\\', 'r')
		default:
			if c < ' ' {
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0x0F])
				continue
			}
			dst = append(dst, c)
		}
	}
	if quoted {
		dst = append(dst, '"')
	}
	return dst
}

// isDecimal reports whether s is a JSON number literal.
func isDecimal(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	if i == len(s) {
		return false
	}
	switch {
	case s[i] == '0':
		i++
	case s[i] >= '1' && s[i] <= '9':
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
