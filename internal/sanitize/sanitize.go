// Package sanitize cleans text taken from team submission files before it
// reaches the engine: node identifiers read line by line and team names
// derived from file names.
package sanitize

import (
	"regexp"
	"strings"
)

// MaxNameLength is the maximum allowed length for team names.
const MaxNameLength = 64

// MaxNodeIDLength is the maximum allowed length for a node identifier.
const MaxNodeIDLength = 256

// Pre-compiled regular expressions for performance.
var (
	// reRepeatedHyphens matches 2 or more consecutive hyphens.
	reRepeatedHyphens = regexp.MustCompile(`-{2,}`)

	// reRepeatedUnderscores matches 2 or more consecutive underscores.
	reRepeatedUnderscores = regexp.MustCompile(`_{2,}`)
)

// TeamName sanitizes a team name, keeping only safe characters
// ([a-zA-Z0-9-_.]) and enforcing a maximum length of MaxNameLength.
// Repeated hyphens and underscores are collapsed to single instances, which
// also keeps a name from spelling a reserved double-underscore marker.
func TeamName(input string) string {
	if input == "" {
		return ""
	}

	// Keep only allowed characters.
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	s := b.String()

	// Collapse repeated hyphens.
	s = reRepeatedHyphens.ReplaceAllString(s, "-")

	// Collapse repeated underscores.
	s = reRepeatedUnderscores.ReplaceAllString(s, "_")

	// Truncate to max length.
	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}

	return s
}

// NodeID cleans one line of a submission into a node identifier: control
// characters (including a trailing \r) are stripped and surrounding
// whitespace trimmed. An over-long line is truncated to MaxNodeIDLength so
// it reports as an unknown node instead of flooding error output.
func NodeID(line string) string {
	s := strings.TrimSpace(stripControlChars(line))
	if len(s) > MaxNodeIDLength {
		s = s[:MaxNodeIDLength]
	}
	return s
}

// stripControlChars removes ASCII control characters (0x00-0x1F, 0x7F).
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
