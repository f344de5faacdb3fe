package profiles

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
)

// Mapper converts seed entries to domain profiles
type Mapper struct{}

// NewMapper creates a new mapper
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapProfiles validates every entry. Any invalid entry fails the whole file,
// with one error per bad entry. Only the first default flag is kept.
func (m *Mapper) MapProfiles(file File, now time.Time) ([]*domain.BrowserProfile, error) {
	out := make([]*domain.BrowserProfile, 0, len(file.Profiles))
	seen := make(map[string]bool, len(file.Profiles))
	var errs []error

	for i, entry := range file.Profiles {
		p, err := mapEntry(entry, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("profile #%d (%s): %w", i+1, entry.ID, err))
			continue
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("profile #%d: duplicate id %s", i+1, p.ID))
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	domain.EnforceSingleDefault(out)
	return out, nil
}

func mapEntry(e Entry, now time.Time) (*domain.BrowserProfile, error) {
	id := strings.TrimSpace(e.ID)
	if id == "" {
		return nil, errors.New("id is required")
	}

	customPath := strings.TrimSpace(e.CustomPath)
	browser, err := parseBrowser(e.Browser, customPath)
	if err != nil {
		return nil, err
	}

	mode := domain.DefaultBrowserMode
	if e.Mode != "" {
		if mode, err = domain.ParseBrowserMode(e.Mode); err != nil {
			return nil, err
		}
	}

	p, err := domain.NewBrowserProfile(id, strings.TrimSpace(e.Name), browser, mode, now)
	if err != nil {
		return nil, err
	}
	if customPath != "" {
		p.CustomPath = &customPath
	}
	p.IsDefault = e.Default
	return p, nil
}

// parseBrowser accepts the fixed names case-insensitively. Custom needs a path.
func parseBrowser(name, customPath string) (domain.Browser, error) {
	kinds := []domain.BrowserKind{domain.KindChrome, domain.KindFirefox, domain.KindSafari, domain.KindEdge}
	for _, k := range kinds {
		if strings.EqualFold(name, string(k)) {
			return domain.Browser{Kind: k}, nil
		}
	}
	if strings.EqualFold(name, string(domain.KindCustom)) {
		if customPath == "" {
			return domain.Browser{}, fmt.Errorf("%w: custom browser needs custom_path", domain.ErrInvalidShape)
		}
		return domain.CustomBrowser(customPath), nil
	}
	return domain.Browser{}, fmt.Errorf("%w: unknown browser %q", domain.ErrInvalidShape, name)
}
