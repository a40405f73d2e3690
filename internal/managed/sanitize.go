package managed

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Length caps applied to payload fields before they are embedded in markdown.
const (
	MaxDefaultLength = 500
	MaxSHALength     = 40
	MaxBranchLength  = 100
	MaxErrorLength   = 200
	MaxLabelLength   = 100
)

var reControl = regexp.MustCompile("[\u0000-\u0008\u000B\u000C\u000E-\u001F\u007F]")

// SanitizeString caps value at maxLength runes, strips control characters other than
// tab, newline and carriage return, and escapes backticks. "<" becomes "&lt;" so payload
// text cannot open an HTML comment that reads as a marker.
func SanitizeString(value string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = MaxDefaultLength
	}
	if runes := []rune(value); len(runes) > maxLength {
		value = string(runes[:maxLength])
	}
	value = reControl.ReplaceAllString(value, "")
	return strings.NewReplacer("`", "\\`", "<", "&lt;").Replace(value)
}

// StripControl removes control characters other than tab, newline and carriage return,
// leaving markdown syntax intact. It is meant for pre-formatted trusted markdown.
func StripControl(value string) string {
	return reControl.ReplaceAllString(value, "")
}

// SanitizeInline is SanitizeString for values rendered inside a single markdown line:
// line breaks are collapsed to spaces.
func SanitizeInline(value string, maxLength int) string {
	value = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(value)
	return SanitizeString(value, maxLength)
}

// URLPolicy restricts links embedded in comments to https URLs on allow-listed hosts.
// A host entry of the form "*.example.com" matches any subdomain of example.com.
type URLPolicy struct {
	hosts []string
}

// DefaultAllowedHosts are the hosts links may point at when no policy is configured.
var DefaultAllowedHosts = []string{"github.com", "*.github.io"}

// NewURLPolicy builds a policy from host patterns, lower-cased and de-duplicated.
func NewURLPolicy(hosts []string) (URLPolicy, error) {
	seen := make(map[string]struct{}, len(hosts))
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if strings.ContainsAny(h, "/:@ ") || (strings.Contains(h, "*") && !strings.HasPrefix(h, "*.")) {
			return URLPolicy{}, fmt.Errorf("invalid allowed host pattern %q", h)
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	if len(out) == 0 {
		return URLPolicy{}, fmt.Errorf("url policy needs at least one allowed host")
	}
	return URLPolicy{hosts: out}, nil
}

// DefaultURLPolicy returns the policy built from DefaultAllowedHosts.
func DefaultURLPolicy() URLPolicy {
	p, _ := NewURLPolicy(DefaultAllowedHosts)
	return p
}

// IsZero reports whether the policy was never configured.
func (p URLPolicy) IsZero() bool { return len(p.hosts) == 0 }

// Hosts returns a copy of the allowed host patterns.
func (p URLPolicy) Hosts() []string {
	return append([]string(nil), p.hosts...)
}

// Sanitize returns raw unchanged when it is an allowed https URL and "" otherwise.
func (p URLPolicy) Sanitize(raw string) string {
	if raw == "" || strings.ContainsAny(raw, " \t\r\n()<>\"'`") || reControl.MatchString(raw) {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.User != nil || u.Host == "" {
		return ""
	}
	if !p.allows(u.Hostname()) || u.Port() != "" {
		return ""
	}
	return raw
}

func (p URLPolicy) allows(host string) bool {
	host = strings.ToLower(host)
	for _, pattern := range p.hosts {
		if suffix, ok := strings.CutPrefix(pattern, "*"); ok {
			if strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
				return true
			}
			continue
		}
		if host == pattern {
			return true
		}
	}
	return false
}
