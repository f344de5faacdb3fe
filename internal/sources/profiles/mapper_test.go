package profiles

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
)

var seedNow = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func TestMapProfiles(t *testing.T) {
	file := File{Profiles: []Entry{
		{ID: "work", Name: "Work", Browser: "firefox", Mode: "Private", Default: true},
		{ID: " brave ", Name: "Brave", Browser: "Custom", CustomPath: "/opt/brave/brave"},
		{ID: "edge", Name: "Edge", Browser: "Edge", Default: true},
	}}

	got, err := NewMapper().MapProfiles(file, seedNow)
	if err != nil {
		t.Fatalf("MapProfiles() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("MapProfiles() returned %d profiles, want 3", len(got))
	}

	if got[0].Browser != domain.Firefox() || got[0].Mode != domain.ModePrivate || !got[0].IsDefault {
		t.Errorf("work = %+v", got[0])
	}
	if got[1].ID != "brave" || got[1].Browser != domain.CustomBrowser("/opt/brave/brave") {
		t.Errorf("brave = %+v", got[1])
	}
	if got[1].CustomPath == nil || *got[1].CustomPath != "/opt/brave/brave" {
		t.Errorf("brave custom path = %v", got[1].CustomPath)
	}
	if got[2].Mode != domain.DefaultBrowserMode {
		t.Errorf("edge mode = %q, want default", got[2].Mode)
	}
	if got[2].IsDefault {
		t.Error("second default flag kept")
	}
	if !got[0].CreatedAt.Equal(seedNow) {
		t.Errorf("CreatedAt = %v", got[0].CreatedAt)
	}
}

func TestMapProfilesErrors(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{"missing id", Entry{Name: "X", Browser: "Chrome"}, "id is required"},
		{"unknown browser", Entry{ID: "x", Name: "X", Browser: "Lynx"}, "unknown browser"},
		{"custom without path", Entry{ID: "x", Name: "X", Browser: "Custom"}, "custom_path"},
		{"bad mode", Entry{ID: "x", Name: "X", Browser: "Chrome", Mode: "Loud"}, "Loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMapper().MapProfiles(File{Profiles: []Entry{tt.entry}}, seedNow)
			if err == nil {
				t.Fatal("MapProfiles() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestMapProfilesDuplicateID(t *testing.T) {
	file := File{Profiles: []Entry{
		{ID: "a", Name: "A", Browser: "Chrome"},
		{ID: "a", Name: "B", Browser: "Firefox"},
	}}

	_, err := NewMapper().MapProfiles(file, seedNow)
	if err == nil || !strings.Contains(err.Error(), "duplicate id a") {
		t.Errorf("error = %v, want duplicate id", err)
	}
}

func TestMapProfilesEmptyName(t *testing.T) {
	_, err := NewMapper().MapProfiles(File{Profiles: []Entry{{ID: "x", Browser: "Chrome"}}}, seedNow)
	if !errors.Is(err, domain.ErrInvalidProfileName) {
		t.Errorf("error = %v, want ErrInvalidProfileName", err)
	}
}
