package schema

import (
	"strings"
	"unicode/utf8"
)

// NormalizeName trims a waterbody or species name and collapses inner whitespace.
// Case is preserved since lookups are case-sensitive.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// TruncateName shortens a name to at most maxWidth runes, marking the cut with "...".
// Widths below 4 leave the name unchanged.
func TruncateName(name string, maxWidth int) string {
	if maxWidth < 4 || utf8.RuneCountInString(name) <= maxWidth {
		return name
	}
	rr := []rune(name)
	return string(rr[:maxWidth-3]) + "..."
}

// PresenceFromBool maps an observation flag to a Presence value.
func PresenceFromBool(present bool) Presence {
	if present {
		return PresenceYes
	}
	return PresenceNo
}

// IsPresent reports whether the record marks the species as present.
// A record without an explicit flag counts as present.
func (p PresenceRecord) IsPresent() bool {
	return p.Present == nil || *p.Present
}
