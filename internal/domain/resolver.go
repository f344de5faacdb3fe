package domain

// EffectiveConfig is the launch-ready result of resolution.
type EffectiveConfig struct {
	Browser Browser     `json:"browser"`
	Mode    BrowserMode `json:"mode"`
	// CustomPath is only meaningful when Browser is Custom.
	CustomPath *string `json:"custom_path,omitempty"`
}

// Resolve computes the effective config of a collection.
//
// Each field is taken from the first source that sets it:
//
//	browser:     profile -> config.Browser                -> ErrUnresolvedConfig
//	mode:        profile -> config.Mode                   -> defaultMode
//	custom_path: profile -> config.CustomPath             -> unset
//
// A BrowserProfileID that matches no profile is treated as absent.
func Resolve(cfg CollectionConfig, profiles map[string]BrowserProfile, defaultMode BrowserMode) (EffectiveConfig, error) {
	var fromProfile CollectionConfig
	if cfg.BrowserProfileID != nil {
		if p, ok := profiles[*cfg.BrowserProfileID]; ok {
			fromProfile = CollectionConfig{
				Browser:    &p.Browser,
				Mode:       &p.Mode,
				CustomPath: p.CustomPath,
			}
		}
	}

	browser, ok := firstSet(fromProfile.Browser, cfg.Browser)
	if !ok {
		return EffectiveConfig{}, ErrUnresolvedConfig
	}
	mode, _ := firstSet(fromProfile.Mode, cfg.Mode, &defaultMode)

	out := EffectiveConfig{Browser: browser, Mode: mode}
	if path, ok := firstSet(fromProfile.CustomPath, cfg.CustomPath); ok {
		out.CustomPath = &path
	}
	return out, nil
}

// ResolveLegacy resolves a v1 config. Browser is always present in v1,
// so it cannot fail.
func ResolveLegacy(cfg LegacyCollectionConfig, defaultMode BrowserMode) EffectiveConfig {
	out, _ := Resolve(cfg.Upgrade(), nil, defaultMode)
	return out
}

// firstSet returns the value of the first non-nil candidate.
func firstSet[T any](candidates ...*T) (T, bool) {
	for _, c := range candidates {
		if c != nil {
			return *c, true
		}
	}
	var zero T
	return zero, false
}
