package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
	redisstore "github.com/MrSnakeDoc/restore-sites/internal/store/redis"
)

// ProfileInput carries the fields of a profile create or update. Nil fields
// are left unchanged on update.
type ProfileInput struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Browser    *domain.Browser     `json:"browser"`
	Mode       *domain.BrowserMode `json:"mode"`
	CustomPath *string             `json:"custom_path"`
	IsDefault  *bool               `json:"is_default"`
}

// DetectionReport is the outcome of a detection pass.
type DetectionReport struct {
	Browsers map[string]bool `json:"browsers"`
	Updated  int             `json:"updated"`
}

// ListProfiles returns every profile, oldest first.
func (s *Service) ListProfiles(ctx context.Context) ([]*domain.BrowserProfile, error) {
	return s.store.ListProfiles(ctx)
}

// GetProfile returns one profile.
func (s *Service) GetProfile(ctx context.Context, id string) (*domain.BrowserProfile, error) {
	return s.store.GetProfile(ctx, id)
}

// CreateProfile stores a new profile. A blank ID becomes
// "<browser>-<8 hex chars>" and a missing mode takes the global default.
func (s *Service) CreateProfile(ctx context.Context, in ProfileInput) (*domain.BrowserProfile, error) {
	if in.Browser == nil {
		return nil, fmt.Errorf("%w: browser is required", domain.ErrInvalidShape)
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = generateProfileID(*in.Browser)
	}

	var mode domain.BrowserMode
	if in.Mode != nil {
		mode = *in.Mode
	} else {
		var err error
		if mode, err = s.store.DefaultMode(ctx); err != nil {
			return nil, err
		}
	}

	p, err := domain.NewBrowserProfile(id, strings.TrimSpace(in.Name), *in.Browser, mode, s.now())
	if err != nil {
		return nil, err
	}
	p.CustomPath = cleanPath(in.CustomPath)
	if in.IsDefault != nil {
		p.IsDefault = *in.IsDefault
	}
	p.IsDetected = s.detector.DetectProfile(p)

	if err := s.store.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	s.index.Put(p)

	s.log.Info("profile created",
		logger.String("id", p.ID),
		logger.String("browser", p.Browser.String()),
		logger.Bool("detected", p.IsDetected))
	return p, nil
}

// UpdateProfile applies the set fields of in. ID and created_at never change.
func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*domain.BrowserProfile, error) {
	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		if err := domain.ValidateProfileName(name); err != nil {
			return nil, err
		}
		p.Name = name
	}
	if in.Browser != nil {
		if !in.Browser.Valid() {
			return nil, fmt.Errorf("%w: unknown browser %s", domain.ErrInvalidShape, in.Browser)
		}
		p.Browser = *in.Browser
	}
	if in.Mode != nil {
		if !in.Mode.Valid() {
			return nil, fmt.Errorf("%w: unknown browser mode %q", domain.ErrInvalidShape, *in.Mode)
		}
		p.Mode = *in.Mode
	}
	if in.CustomPath != nil {
		p.CustomPath = cleanPath(in.CustomPath)
	}
	if in.IsDefault != nil {
		p.IsDefault = *in.IsDefault
	}
	p.IsDetected = s.detector.DetectProfile(p)
	p.UpdatedAt = s.now()

	if err := s.store.UpdateProfile(ctx, p); err != nil {
		return nil, err
	}
	s.index.Put(p)
	return p, nil
}

// DeleteProfile reports whether the profile existed. Collections referring
// to it resolve as if they had no profile.
func (s *Service) DeleteProfile(ctx context.Context, id string) (bool, error) {
	deleted, err := s.store.DeleteProfile(ctx, id)
	if err != nil {
		return false, err
	}
	s.index.Delete(id)
	return deleted, nil
}

// DefaultMode returns the global default browser mode.
func (s *Service) DefaultMode(ctx context.Context) (domain.BrowserMode, error) {
	return s.store.DefaultMode(ctx)
}

// SetDefaultMode changes the global default browser mode.
func (s *Service) SetDefaultMode(ctx context.Context, mode domain.BrowserMode) error {
	if err := s.store.SetDefaultMode(ctx, mode); err != nil {
		return err
	}
	s.index.SetDefaultMode(mode)
	return nil
}

// SeedProfiles creates the given profiles when their ID is free. Existing
// profiles are left as they are, and an existing default keeps its flag.
func (s *Service) SeedProfiles(ctx context.Context, seed []*domain.BrowserProfile) (int, error) {
	existing, err := s.store.ListProfiles(ctx)
	if err != nil {
		return 0, err
	}
	_, hasDefault := domain.DefaultProfile(existing)

	created := 0
	for _, p := range seed {
		if p.IsDefault && hasDefault {
			p.IsDefault = false
		}
		p.IsDetected = s.detector.DetectProfile(p)

		err := s.store.CreateProfile(ctx, p)
		if errors.Is(err, redisstore.ErrDuplicateProfile) {
			s.log.Debug("seed profile already exists", logger.String("id", p.ID))
			continue
		}
		if err != nil {
			return created, err
		}
		hasDefault = hasDefault || p.IsDefault
		s.index.Put(p)
		created++
	}
	return created, nil
}

// RefreshDetection re-checks every fixed browser and every profile, and
// stores the profiles whose is_detected flag changed.
func (s *Service) RefreshDetection(ctx context.Context) (DetectionReport, error) {
	results := s.detector.DetectAll()
	now := s.now()
	s.index.SetDetected(results, now)

	report := DetectionReport{Browsers: make(map[string]bool, len(results))}
	detected := 0
	for b, ok := range results {
		report.Browsers[b.String()] = ok
		if ok {
			detected++
		}
	}

	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return report, err
	}
	for _, p := range profiles {
		found := s.detector.DetectProfile(p)
		if found == p.IsDetected {
			continue
		}
		p.IsDetected = found
		p.UpdatedAt = now
		if err := s.store.UpdateProfile(ctx, p); err != nil {
			if errors.Is(err, redisstore.ErrNotFound) {
				continue
			}
			return report, err
		}
		s.index.Put(p)
		report.Updated++
	}

	s.metrics.DetectionDone(detected)
	s.log.Info("browser detection refreshed",
		logger.Int("detected", detected),
		logger.Int("profiles_updated", report.Updated))
	return report, nil
}

func generateProfileID(b domain.Browser) string {
	return fmt.Sprintf("%s-%s", strings.ToLower(string(b.Kind)), uuid.NewString()[:8])
}

func cleanPath(p *string) *string {
	if p == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*p)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
