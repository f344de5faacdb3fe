package profiles

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	path := writeSeed(t, `---
profiles:
  - id: work-firefox
    name: Work
    browser: Firefox
    mode: Private
    default: true
  - id: chrome
    name: Chrome
    browser: Chrome
`)

	file, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(file.Profiles) != 2 {
		t.Fatalf("Load() returned %d profiles, want 2", len(file.Profiles))
	}
	if !file.Profiles[0].Default || file.Profiles[0].Mode != "Private" {
		t.Errorf("first entry = %+v", file.Profiles[0])
	}
}

func TestLoaderExpandsEnv(t *testing.T) {
	t.Setenv("BRAVE_HOME", "/opt/brave")
	path := writeSeed(t, `profiles:
  - id: brave
    name: Brave
    browser: Custom
    custom_path: ${BRAVE_HOME}/brave
`)

	file, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := file.Profiles[0].CustomPath; got != "/opt/brave/brave" {
		t.Errorf("CustomPath = %q, want /opt/brave/brave", got)
	}
}

func TestLoaderErrors(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Load(); err == nil {
		t.Error("Load() of a missing file should fail")
	}
	if _, err := NewLoader(writeSeed(t, "profiles: [unclosed")).Load(); err == nil {
		t.Error("Load() of broken yaml should fail")
	}
}
