package domain

import (
	"net/url"
	"strings"
)

// IsValidURL reports whether s carries an http or https scheme.
func IsValidURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// CleanURL trims s and adds https:// to scheme-less inputs that look like a host.
// Example: "www.example.com" -> "https://www.example.com"
func CleanURL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if IsValidURL(s) {
		return s, true
	}
	if strings.Contains(s, ".") {
		return "https://" + s, true
	}
	return "", false
}

// ExtractDomain returns the host of a URL for display.
// Example: "https://www.example.com/path" -> "www.example.com"
func ExtractDomain(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Hostname()
	}

	s := strings.TrimPrefix(raw, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}
