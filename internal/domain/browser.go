package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// BrowserKind enumerates the supported browser families.
type BrowserKind string

const (
	KindChrome  BrowserKind = "Chrome"
	KindFirefox BrowserKind = "Firefox"
	KindSafari  BrowserKind = "Safari"
	KindEdge    BrowserKind = "Edge"
	KindCustom  BrowserKind = "Custom"
)

// Browser is a closed variant set: one of the fixed browsers, or Custom
// carrying a path or label.
//
// Wire form follows the persisted database:
//
//	"Chrome"                     fixed variant
//	{"Custom": "/opt/browser"}   custom variant
type Browser struct {
	Kind BrowserKind
	// Path is only set for KindCustom.
	Path string
}

func Chrome() Browser  { return Browser{Kind: KindChrome} }
func Firefox() Browser { return Browser{Kind: KindFirefox} }
func Safari() Browser  { return Browser{Kind: KindSafari} }
func Edge() Browser    { return Browser{Kind: KindEdge} }

// CustomBrowser returns the Custom variant for the given path or label.
func CustomBrowser(path string) Browser {
	return Browser{Kind: KindCustom, Path: path}
}

// IsCustom reports whether b is the Custom variant.
func (b Browser) IsCustom() bool { return b.Kind == KindCustom }

// Valid reports whether b holds one of the known variants.
func (b Browser) Valid() bool {
	switch b.Kind {
	case KindChrome, KindFirefox, KindSafari, KindEdge:
		return b.Path == ""
	case KindCustom:
		return true
	default:
		return false
	}
}

func (b Browser) String() string {
	if b.Kind == KindCustom {
		return fmt.Sprintf("Custom(%s)", b.Path)
	}
	return string(b.Kind)
}

func (b Browser) MarshalJSON() ([]byte, error) {
	switch b.Kind {
	case KindChrome, KindFirefox, KindSafari, KindEdge:
		return json.Marshal(string(b.Kind))
	case KindCustom:
		return json.Marshal(map[string]string{string(KindCustom): b.Path})
	default:
		return nil, fmt.Errorf("%w: unknown browser kind %q", ErrInvalidShape, b.Kind)
	}
}

func (b *Browser) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("%w: browser: %v", ErrInvalidShape, err)
		}
		switch kind := BrowserKind(name); kind {
		case KindChrome, KindFirefox, KindSafari, KindEdge:
			*b = Browser{Kind: kind}
			return nil
		default:
			return fmt.Errorf("%w: unknown browser %q", ErrInvalidShape, name)
		}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return fmt.Errorf("%w: browser must be a string or {\"Custom\": string}", ErrInvalidShape)
	}
	raw, ok := obj[string(KindCustom)]
	if !ok || len(obj) != 1 {
		return fmt.Errorf("%w: browser object must hold exactly one Custom key", ErrInvalidShape)
	}
	var path string
	if err := json.Unmarshal(raw, &path); err != nil {
		return fmt.Errorf("%w: Custom browser must hold a string", ErrInvalidShape)
	}
	*b = CustomBrowser(path)
	return nil
}

// BrowserMode is the window mode a browser is launched in.
type BrowserMode string

const (
	ModeNormal    BrowserMode = "Normal"
	ModeIncognito BrowserMode = "Incognito"
	ModePrivate   BrowserMode = "Private"
)

// DefaultBrowserMode is the global default written into a fresh database.
const DefaultBrowserMode = ModeIncognito

// Valid reports whether m is one of the known modes.
func (m BrowserMode) Valid() bool {
	switch m {
	case ModeNormal, ModeIncognito, ModePrivate:
		return true
	default:
		return false
	}
}

// ParseBrowserMode converts a raw string into a BrowserMode.
func ParseBrowserMode(s string) (BrowserMode, error) {
	m := BrowserMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown browser mode %q", ErrInvalidShape, s)
	}
	return m, nil
}

func (m *BrowserMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: browser mode must be a string", ErrInvalidShape)
	}
	parsed, err := ParseBrowserMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Ptr returns a pointer to v. Handy for the optional config fields.
func Ptr[T any](v T) *T { return &v }
