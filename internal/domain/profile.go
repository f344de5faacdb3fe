package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxProfileNameLength is counted in characters, not bytes.
const MaxProfileNameLength = 64

// BrowserProfile is a named, reusable launch preset referenced by id
// from a collection's config.
type BrowserProfile struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is stable and externally assigned.
	// Example: default-chrome, work-firefox-1
	ID string `json:"id"`

	// Name is user-editable, 1..64 characters.
	Name string `json:"name"`

	// ─────────────────────────────
	// Launch settings
	// ─────────────────────────────

	Browser    Browser     `json:"browser"`
	Mode       BrowserMode `json:"mode"`
	CustomPath *string     `json:"custom_path,omitempty"`

	// ─────────────────────────────
	// Flags
	// ─────────────────────────────

	// IsDefault is true for at most one profile. The store enforces it.
	IsDefault bool `json:"is_default"`

	// IsDetected is advisory and never read by the resolver.
	IsDetected bool `json:"is_detected"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateProfileName checks the 1..64 character rule.
func ValidateProfileName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return fmt.Errorf("%w: profile name cannot be empty", ErrInvalidProfileName)
	}
	if n > MaxProfileNameLength {
		return fmt.Errorf("%w: profile name cannot exceed %d characters", ErrInvalidProfileName, MaxProfileNameLength)
	}
	return nil
}

// NewBrowserProfile builds a validated, non-default, undetected profile.
func NewBrowserProfile(id, name string, browser Browser, mode BrowserMode, now time.Time) (*BrowserProfile, error) {
	if err := ValidateProfileName(name); err != nil {
		return nil, err
	}
	if !browser.Valid() {
		return nil, fmt.Errorf("%w: browser %s", ErrInvalidShape, browser)
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: mode %q", ErrInvalidShape, mode)
	}
	return &BrowserProfile{
		ID:        id,
		Name:      name,
		Browser:   browser,
		Mode:      mode,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ProfileMap indexes profiles by id for the resolver.
func ProfileMap(profiles []*BrowserProfile) map[string]BrowserProfile {
	m := make(map[string]BrowserProfile, len(profiles))
	for _, p := range profiles {
		if p == nil {
			continue
		}
		m[p.ID] = *p
	}
	return m
}

// DefaultProfile returns the profile flagged as default, if any.
func DefaultProfile(profiles []*BrowserProfile) (*BrowserProfile, bool) {
	for _, p := range profiles {
		if p != nil && p.IsDefault {
			return p, true
		}
	}
	return nil, false
}

// EnforceSingleDefault keeps the first default flag and clears the rest.
// It returns the number of flags cleared.
func EnforceSingleDefault(profiles []*BrowserProfile) int {
	seen, cleared := false, 0
	for _, p := range profiles {
		if p == nil || !p.IsDefault {
			continue
		}
		if seen {
			p.IsDefault = false
			cleared++
			continue
		}
		seen = true
	}
	return cleared
}
