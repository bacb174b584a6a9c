package utils

import "strings"

// SanitizeISBN drops everything but digits, keeping a trailing X check digit.
func SanitizeISBN(isbn string) string {
	isbn = strings.TrimSpace(isbn)
	var cleaned strings.Builder
	for i, r := range isbn {
		switch {
		case r >= '0' && r <= '9':
			cleaned.WriteRune(r)
		case (r == 'X' || r == 'x') && i == len(isbn)-1:
			cleaned.WriteByte('X')
		}
	}
	return cleaned.String()
}

// ValidISBN reports whether a sanitized ISBN has the length of an ISBN-10 or
// ISBN-13. Only an ISBN-10 may end in X.
func ValidISBN(cleaned string) bool {
	switch len(cleaned) {
	case 10:
		return true
	case 13:
		return !strings.HasSuffix(cleaned, "X")
	}
	return false
}
