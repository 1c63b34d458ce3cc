// Package phone normalizes Indian mobile numbers pulled out of chat text.
package phone

import "strings"

// Normalize reduces a candidate phone string to a bare 10-digit Indian
// mobile number. The extractor's candidate wins when it is already exactly
// ten digits after stripping formatting; otherwise the fallback (usually the
// sender id from the channel) is tried with a 91 country-code strip and a
// last-ten-digits cut. Returns "" when neither source yields ten digits.
func Normalize(candidate, fallback string) string {
	if n := digitsOnly(candidate); len(n) == 10 {
		return n
	}
	return fromFallback(fallback)
}

func fromFallback(raw string) string {
	n := digitsOnly(raw)
	if len(n) == 10 {
		return n
	}
	n = strings.TrimPrefix(n, "91")
	if len(n) > 10 {
		n = n[len(n)-10:]
	}
	if len(n) == 10 {
		return n
	}
	return ""
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
