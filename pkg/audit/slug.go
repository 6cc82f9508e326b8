package audit

import "strings"

// Slug sanitizes an operation name into a filesystem-safe identifier:
// lowercase letters, digits, and single hyphens. Everything else collapses
// to a hyphen, and an empty result falls back to "call" so filenames stay
// well-formed.
func Slug(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "call"
	}
	return slug
}
