package domain

import (
	"fmt"
	"strings"
	"time"
)

// SiteEntry is one tab of a collection.
type SiteEntry struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// CollectionConfig is the current (v2) launch configuration of a collection.
//
// Every field is optional: a collection either points at a profile, carries
// ad-hoc settings, or both. The profile wins field by field, see Resolve.
type CollectionConfig struct {
	BrowserProfileID *string      `json:"browser_profile_id,omitempty"`
	Browser          *Browser     `json:"browser,omitempty"`
	Mode             *BrowserMode `json:"mode,omitempty"`
	CustomPath       *string      `json:"custom_path,omitempty"`
}

// LegacyCollectionConfig is the v1 shape. No profile reference existed
// and browser and mode were required.
type LegacyCollectionConfig struct {
	Browser    Browser     `json:"browser"`
	Mode       BrowserMode `json:"mode"`
	CustomPath *string     `json:"custom_path,omitempty"`
}

// Upgrade converts a v1 config into the v2 shape.
func (c LegacyCollectionConfig) Upgrade() CollectionConfig {
	browser := c.Browser
	mode := c.Mode
	out := CollectionConfig{
		Browser: &browser,
		Mode:    &mode,
	}
	if c.CustomPath != nil {
		out.CustomPath = Ptr(*c.CustomPath)
	}
	return out
}

// CollectionRecord is one persisted collection.
type CollectionRecord struct {
	ID        uint64           `json:"id"`
	Name      string           `json:"name"`
	Sites     []SiteEntry      `json:"sites"`
	Config    CollectionConfig `json:"config"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// LegacyCollectionRecord is a record written by a v1 database.
type LegacyCollectionRecord struct {
	ID        uint64                 `json:"id"`
	Name      string                 `json:"name"`
	Sites     []SiteEntry            `json:"sites"`
	Config    LegacyCollectionConfig `json:"config"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Upgrade converts a v1 record into the current shape.
func (r LegacyCollectionRecord) Upgrade() CollectionRecord {
	return CollectionRecord{
		ID:        r.ID,
		Name:      r.Name,
		Sites:     r.Sites,
		Config:    r.Config.Upgrade(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// DefaultCollectionName is used when a collection is saved without a name.
func DefaultCollectionName(now time.Time) string {
	return fmt.Sprintf("Collection %d", now.Unix())
}

// NormalizeSites cleans every entry URL and falls back to the URL as title.
// It fails on the first entry whose URL cannot be cleaned.
func NormalizeSites(sites []SiteEntry) ([]SiteEntry, error) {
	out := make([]SiteEntry, 0, len(sites))
	for i, s := range sites {
		url, ok := CleanURL(s.URL)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d has url %q", ErrInvalidSite, i, s.URL)
		}
		title := strings.TrimSpace(s.Title)
		if title == "" {
			title = url
		}
		out = append(out, SiteEntry{Title: title, URL: url})
	}
	return out, nil
}

// URLs returns the URLs of the entries in order.
func URLs(sites []SiteEntry) []string {
	urls := make([]string, 0, len(sites))
	for _, s := range sites {
		urls = append(urls, s.URL)
	}
	return urls
}
