package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNormalizeSites(t *testing.T) {
	got, err := NormalizeSites([]SiteEntry{
		{Title: " Go ", URL: "https://go.dev"},
		{Title: "", URL: "github.com"},
	})
	if err != nil {
		t.Fatalf("NormalizeSites() error = %v", err)
	}
	want := []SiteEntry{
		{Title: "Go", URL: "https://go.dev"},
		{Title: "https://github.com", URL: "https://github.com"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeSites() = %#v, want %#v", got, want)
	}

	if _, err := NormalizeSites([]SiteEntry{{Title: "x", URL: "nothing"}}); !errors.Is(err, ErrInvalidSite) {
		t.Errorf("error = %v, want ErrInvalidSite", err)
	}
}

func TestLegacyUpgradeCopiesFields(t *testing.T) {
	path := "/opt/x"
	legacy := LegacyCollectionConfig{Browser: CustomBrowser("/opt/x"), Mode: ModeNormal, CustomPath: &path}

	up := legacy.Upgrade()
	path = "/changed"

	if up.CustomPath == nil || *up.CustomPath != "/opt/x" {
		t.Errorf("CustomPath = %v, want copy of /opt/x", up.CustomPath)
	}
	if up.BrowserProfileID != nil {
		t.Error("upgraded config carries a profile id")
	}
}

func TestDefaultCollectionName(t *testing.T) {
	now := time.Unix(1700000000, 0)
	if got := DefaultCollectionName(now); got != "Collection 1700000000" {
		t.Errorf("DefaultCollectionName() = %q", got)
	}
}
