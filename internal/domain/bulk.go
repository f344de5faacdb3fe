package domain

import (
	"regexp"
	"strings"
)

// urlPattern stops at whitespace, Unicode separators such as NBSP and
// quotes so query strings and percent-encoded characters survive.
var urlPattern = regexp.MustCompile(`https?://[^\s\p{Z}"']+`)

// ParseBulk turns freeform pasted text into site entries, one per line.
//
// Accepted line shapes:
//   - "Google https://google.com"  -> {Google, https://google.com}
//   - "https://example.com/a?b=1"  -> {url, url}
//   - "Title - example.com"        -> {Title -, https://example.com}
//   - "example.com"                -> {https://example.com, https://example.com}
//
// Lines that yield no URL are dropped. A URL already seen in the same text
// keeps its first entry only. ParseBulk never fails.
func ParseBulk(text string) []SiteEntry {
	text = strings.TrimSpace(text)
	if text == "" {
		return []SiteEntry{}
	}

	lines := strings.Split(text, "\n")
	entries := make([]SiteEntry, 0, len(lines))
	seen := make(map[string]bool, len(lines))

	for _, line := range lines {
		entry, ok := parseBulkLine(line)
		if !ok || strings.TrimSpace(entry.URL) == "" {
			continue
		}
		if seen[entry.URL] {
			continue
		}
		seen[entry.URL] = true
		entries = append(entries, entry)
	}

	return entries
}

// parseBulkLine applies the scheme match, the last-space split and the
// whole-line fallback, in that order.
func parseBulkLine(line string) (SiteEntry, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return SiteEntry{}, false
	}

	if loc := urlPattern.FindStringIndex(line); loc != nil {
		url := line[loc[0]:loc[1]]
		title := strings.TrimSpace(line[:loc[0]])
		if title == "" {
			title = url
		}
		return SiteEntry{Title: title, URL: url}, true
	}

	if i := strings.LastIndex(line, " "); i >= 0 {
		candidate := line[i+1:]
		if looksLikeURL(candidate) {
			url := withScheme(candidate)
			title := strings.TrimSpace(line[:i])
			if title == "" {
				title = url
			}
			return SiteEntry{Title: title, URL: url}, true
		}
	}

	if looksLikeURL(line) {
		url := withScheme(line)
		return SiteEntry{Title: url, URL: url}, true
	}

	return SiteEntry{}, false
}

func looksLikeURL(s string) bool {
	return strings.Contains(s, ".") || strings.HasPrefix(s, "http")
}

func withScheme(s string) string {
	if strings.HasPrefix(s, "http") {
		return s
	}
	return "https://" + s
}

// FormatBulk renders entries back into "title url" lines. An entry whose
// title equals its URL is written as the bare URL.
func FormatBulk(entries []SiteEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		if e.Title != "" && e.Title != e.URL {
			b.WriteString(e.Title)
			b.WriteByte(' ')
		}
		b.WriteString(e.URL)
	}
	return b.String()
}
