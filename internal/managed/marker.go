// Package managed implements comments that are owned and rewritten by prcomment:
// marker identity, sanitization of embedded values and the find-or-create publish step.
package managed

import (
	"strings"
)

// MaxIdentityLength caps the identity token embedded in a marker.
const MaxIdentityLength = 50

// Marker builds the HTML comment that tags a managed comment.
//
// base is the bare marker, e.g. "<!-- sgex-deployment-status-comment -->". A non-empty
// identity token is inserted before the closing "-->" so that every token yields a marker
// that is not a substring of any other marker of the same family.
func Marker(base, identity string) string {
	token := SanitizeIdentity(identity)
	if token == "" {
		return base
	}
	prefix := FamilyPrefix(base)
	if prefix == base {
		return base + ":" + token
	}
	return prefix + ":" + token + " -->"
}

// FamilyPrefix returns the part of base shared by every identity variant, i.e. the base
// marker without its closing " -->".
func FamilyPrefix(base string) string {
	trimmed := strings.TrimSuffix(base, "-->")
	return strings.TrimRight(trimmed, " ")
}

// SanitizeIdentity keeps [A-Za-z0-9_-] and truncates the result to MaxIdentityLength.
func SanitizeIdentity(identity string) string {
	var sb strings.Builder
	for _, r := range identity {
		if sb.Len() >= MaxIdentityLength {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
