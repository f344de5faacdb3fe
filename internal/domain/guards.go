package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Guards over generic JSON values (the result of json.Unmarshal into any).
// They are the boundary check for data read from the store or an import,
// which may have been written by another schema version.

// IsBrowser accepts "Chrome" | "Firefox" | "Safari" | "Edge" | {"Custom": string}.
func IsBrowser(v any) bool {
	switch t := v.(type) {
	case string:
		switch BrowserKind(t) {
		case KindChrome, KindFirefox, KindSafari, KindEdge:
			return true
		}
		return false
	case map[string]any:
		if len(t) != 1 {
			return false
		}
		_, ok := t[string(KindCustom)].(string)
		return ok
	default:
		return false
	}
}

// IsBrowserMode accepts "Normal" | "Incognito" | "Private".
func IsBrowserMode(v any) bool {
	s, ok := v.(string)
	return ok && BrowserMode(s).Valid()
}

// IsSiteEntry accepts objects with string title and url.
func IsSiteEntry(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	return isString(obj["title"]) && isString(obj["url"])
}

// IsBrowserProfile accepts objects shaped like BrowserProfile with
// RFC 3339 timestamps. custom_path may be absent, null or a string.
func IsBrowserProfile(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	return isString(obj["id"]) &&
		isString(obj["name"]) &&
		IsBrowser(obj["browser"]) &&
		IsBrowserMode(obj["mode"]) &&
		isOptionalString(obj, "custom_path") &&
		isBool(obj["is_default"]) &&
		isBool(obj["is_detected"]) &&
		isTimestamp(obj["created_at"]) &&
		isTimestamp(obj["updated_at"])
}

// IsCollectionConfig accepts the v2 config shape: every field optional,
// but present fields must hold the right type.
func IsCollectionConfig(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	if b, ok := obj["browser"]; ok && b != nil && !IsBrowser(b) {
		return false
	}
	if m, ok := obj["mode"]; ok && m != nil && !IsBrowserMode(m) {
		return false
	}
	return isOptionalString(obj, "browser_profile_id") && isOptionalString(obj, "custom_path")
}

// IsLegacyCollectionConfig accepts the v1 config shape.
func IsLegacyCollectionConfig(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	return IsBrowser(obj["browser"]) && IsBrowserMode(obj["mode"]) && isOptionalString(obj, "custom_path")
}

// isCollectionRecord checks the record envelope and delegates the config to configGuard.
func isCollectionRecord(v any, configGuard func(any) bool) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	id, ok := obj["id"].(float64)
	if !ok || id < 0 || id != float64(uint64(id)) {
		return false
	}
	sites, ok := obj["sites"].([]any)
	if !ok && obj["sites"] != nil {
		return false
	}
	for _, s := range sites {
		if !IsSiteEntry(s) {
			return false
		}
	}
	return isString(obj["name"]) &&
		configGuard(obj["config"]) &&
		isTimestamp(obj["created_at"]) &&
		isTimestamp(obj["updated_at"])
}

// IsCollectionRecord accepts a v2 collection record.
func IsCollectionRecord(v any) bool { return isCollectionRecord(v, IsCollectionConfig) }

// IsLegacyCollectionRecord accepts a v1 collection record.
func IsLegacyCollectionRecord(v any) bool { return isCollectionRecord(v, IsLegacyCollectionConfig) }

// DecodeBrowserProfile guards and decodes one profile.
func DecodeBrowserProfile(raw json.RawMessage) (*BrowserProfile, error) {
	var p BrowserProfile
	if err := decodeGuarded(raw, IsBrowserProfile, &p); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return &p, nil
}

// DecodeCollectionRecord guards and decodes one v2 record.
func DecodeCollectionRecord(raw json.RawMessage) (*CollectionRecord, error) {
	var r CollectionRecord
	if err := decodeGuarded(raw, IsCollectionRecord, &r); err != nil {
		return nil, fmt.Errorf("collection: %w", err)
	}
	if r.Sites == nil {
		r.Sites = []SiteEntry{}
	}
	return &r, nil
}

// DecodeLegacyCollectionRecord guards and decodes one v1 record and upgrades it.
func DecodeLegacyCollectionRecord(raw json.RawMessage) (*CollectionRecord, error) {
	var r LegacyCollectionRecord
	if err := decodeGuarded(raw, IsLegacyCollectionRecord, &r); err != nil {
		return nil, fmt.Errorf("legacy collection: %w", err)
	}
	up := r.Upgrade()
	if up.Sites == nil {
		up.Sites = []SiteEntry{}
	}
	return &up, nil
}

func decodeGuarded(raw json.RawMessage, guard func(any) bool, dst any) error {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	if !guard(generic) {
		return ErrInvalidShape
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	return nil
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isOptionalString(obj map[string]any, key string) bool {
	v, ok := obj[key]
	return !ok || v == nil || isString(v)
}

func isTimestamp(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}
