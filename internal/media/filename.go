package media

import (
	"strings"
	"unicode"
)

// DownloadFilename builds the suggested attachment name
// "<title>-by-<artist>.mp3", sanitized to a safe character set. Whitespace
// runs collapse to single hyphens and the result always ends in exactly one
// ".mp3" regardless of what the stored title carries. Title and artist are
// sanitized independently: a title that sanitizes to nothing falls back to
// "track", and the "-by-" infix appears only when the artist survives
// sanitization.
func DownloadFilename(title, artist string) string {
	base := strings.TrimSpace(title)
	if len(base) >= 4 && strings.EqualFold(base[len(base)-4:], ".mp3") {
		base = base[:len(base)-4]
	}

	base = sanitizeFilename(base)
	if base == "" {
		base = "track"
	}
	if credit := sanitizeFilename(artist); credit != "" {
		base += "-by-" + credit
	}
	return base + ".mp3"
}

// sanitizeFilename strips control characters, restricts to letters, digits,
// hyphen, underscore and dot, and collapses whitespace runs to hyphens.
func sanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false
	for _, r := range name {
		switch {
		case unicode.IsControl(r):
			// dropped
		case unicode.IsSpace(r):
			if b.Len() > 0 {
				pendingSep = true
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.':
			if pendingSep {
				b.WriteByte('-')
				pendingSep = false
			}
			b.WriteRune(r)
		case r == '-':
			if b.Len() > 0 {
				pendingSep = true
			}
		default:
			// unsafe rune, dropped
		}
	}
	return strings.Trim(b.String(), "-.")
}
