package domain

import (
	"errors"
	"testing"
)

func testProfiles() map[string]BrowserProfile {
	return map[string]BrowserProfile{
		"work-firefox": {
			ID:      "work-firefox",
			Name:    "Work",
			Browser: Firefox(),
			Mode:    ModePrivate,
		},
		"custom-brave": {
			ID:         "custom-brave",
			Name:       "Brave",
			Browser:    CustomBrowser("/opt/brave/brave"),
			Mode:       ModeNormal,
			CustomPath: Ptr("/opt/brave/brave"),
		},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		cfg         CollectionConfig
		defaultMode BrowserMode
		want        EffectiveConfig
		wantErr     error
	}{
		{
			name:        "direct browser without profile",
			cfg:         CollectionConfig{Browser: Ptr(Chrome())},
			defaultMode: ModeIncognito,
			want:        EffectiveConfig{Browser: Chrome(), Mode: ModeIncognito},
		},
		{
			name:        "direct browser and mode",
			cfg:         CollectionConfig{Browser: Ptr(Edge()), Mode: Ptr(ModeNormal)},
			defaultMode: ModeIncognito,
			want:        EffectiveConfig{Browser: Edge(), Mode: ModeNormal},
		},
		{
			name: "profile wins over direct fields",
			cfg: CollectionConfig{
				BrowserProfileID: Ptr("work-firefox"),
				Browser:          Ptr(Chrome()),
				Mode:             Ptr(ModeNormal),
			},
			defaultMode: ModeIncognito,
			want:        EffectiveConfig{Browser: Firefox(), Mode: ModePrivate},
		},
		{
			name: "profile without custom path falls back to direct custom path",
			cfg: CollectionConfig{
				BrowserProfileID: Ptr("work-firefox"),
				CustomPath:       Ptr("/usr/bin/firefox-nightly"),
			},
			defaultMode: ModeNormal,
			want: EffectiveConfig{
				Browser:    Firefox(),
				Mode:       ModePrivate,
				CustomPath: Ptr("/usr/bin/firefox-nightly"),
			},
		},
		{
			name: "profile custom path wins",
			cfg: CollectionConfig{
				BrowserProfileID: Ptr("custom-brave"),
				CustomPath:       Ptr("/elsewhere"),
			},
			defaultMode: ModeIncognito,
			want: EffectiveConfig{
				Browser:    CustomBrowser("/opt/brave/brave"),
				Mode:       ModeNormal,
				CustomPath: Ptr("/opt/brave/brave"),
			},
		},
		{
			name: "stale profile id falls through to direct fields",
			cfg: CollectionConfig{
				BrowserProfileID: Ptr("deleted-profile"),
				Browser:          Ptr(Safari()),
			},
			defaultMode: ModePrivate,
			want:        EffectiveConfig{Browser: Safari(), Mode: ModePrivate},
		},
		{
			name:        "stale profile id and no browser",
			cfg:         CollectionConfig{BrowserProfileID: Ptr("deleted-profile")},
			defaultMode: ModeNormal,
			wantErr:     ErrUnresolvedConfig,
		},
		{
			name:        "empty config",
			cfg:         CollectionConfig{},
			defaultMode: ModeNormal,
			wantErr:     ErrUnresolvedConfig,
		},
		{
			name:        "mode only is not enough",
			cfg:         CollectionConfig{Mode: Ptr(ModeIncognito), CustomPath: Ptr("/x")},
			defaultMode: ModeNormal,
			wantErr:     ErrUnresolvedConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.cfg, testProfiles(), tt.defaultMode)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() unexpected error = %v", err)
			}
			if !effectiveEqual(got, tt.want) {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveStaleProfileMatchesRemovedField(t *testing.T) {
	configs := []CollectionConfig{
		{Browser: Ptr(Chrome())},
		{Browser: Ptr(Firefox()), Mode: Ptr(ModeNormal)},
		{Browser: Ptr(CustomBrowser("/a")), CustomPath: Ptr("/a")},
		{Mode: Ptr(ModePrivate)},
		{},
	}

	for _, cfg := range configs {
		stale := cfg
		stale.BrowserProfileID = Ptr("nope")

		want, wantErr := Resolve(cfg, testProfiles(), ModeIncognito)
		got, gotErr := Resolve(stale, testProfiles(), ModeIncognito)

		if !errors.Is(gotErr, wantErr) && gotErr != wantErr {
			t.Errorf("errors differ: stale=%v plain=%v", gotErr, wantErr)
		}
		if !effectiveEqual(got, want) {
			t.Errorf("stale = %+v, plain = %+v", got, want)
		}
	}
}

func TestResolveNilProfiles(t *testing.T) {
	got, err := Resolve(CollectionConfig{
		BrowserProfileID: Ptr("work-firefox"),
		Browser:          Ptr(Chrome()),
	}, nil, ModeNormal)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Browser != Chrome() {
		t.Errorf("Browser = %v, want Chrome", got.Browser)
	}
}

func TestResolveLegacy(t *testing.T) {
	tests := []struct {
		name string
		cfg  LegacyCollectionConfig
		want EffectiveConfig
	}{
		{
			name: "chrome incognito",
			cfg:  LegacyCollectionConfig{Browser: Chrome(), Mode: ModeIncognito},
			want: EffectiveConfig{Browser: Chrome(), Mode: ModeIncognito},
		},
		{
			name: "custom with path",
			cfg: LegacyCollectionConfig{
				Browser:    CustomBrowser("Vivaldi"),
				Mode:       ModeNormal,
				CustomPath: Ptr("/opt/vivaldi"),
			},
			want: EffectiveConfig{
				Browser:    CustomBrowser("Vivaldi"),
				Mode:       ModeNormal,
				CustomPath: Ptr("/opt/vivaldi"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveLegacy(tt.cfg, ModePrivate)
			if !effectiveEqual(got, tt.want) {
				t.Errorf("ResolveLegacy() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFirstSet(t *testing.T) {
	a, b := 1, 2

	if v, ok := firstSet[int](nil, &a, &b); !ok || v != 1 {
		t.Errorf("firstSet() = %v, %v, want 1, true", v, ok)
	}
	if v, ok := firstSet[int](nil, nil); ok || v != 0 {
		t.Errorf("firstSet() = %v, %v, want 0, false", v, ok)
	}
}

func effectiveEqual(a, b EffectiveConfig) bool {
	if a.Browser != b.Browser || a.Mode != b.Mode {
		return false
	}
	if (a.CustomPath == nil) != (b.CustomPath == nil) {
		return false
	}
	return a.CustomPath == nil || *a.CustomPath == *b.CustomPath
}
