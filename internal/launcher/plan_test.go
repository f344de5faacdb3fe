package launcher

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
)

func cfg(b domain.Browser, m domain.BrowserMode) domain.EffectiveConfig {
	return domain.EffectiveConfig{Browser: b, Mode: m}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		cfg      domain.EffectiveConfig
		wantName string
		wantArgs []string
	}{
		{"mac chrome incognito", "darwin", cfg(domain.Chrome(), domain.ModeIncognito), "open", []string{"-na", "Google Chrome", "--args", "--incognito", "https://a.com"}},
		{"mac safari private", "darwin", cfg(domain.Safari(), domain.ModePrivate), "open", []string{"-na", "Safari", "--args", "--private", "https://a.com"}},
		{"mac firefox private", "darwin", cfg(domain.Firefox(), domain.ModePrivate), "open", []string{"-na", "Firefox", "--args", "--private-window", "https://a.com"}},
		{"mac edge incognito", "darwin", cfg(domain.Edge(), domain.ModeIncognito), "open", []string{"-na", "Microsoft Edge", "--args", "https://a.com"}},
		{"mac custom app", "darwin", cfg(domain.CustomBrowser("/Applications/Arc.app"), domain.ModeNormal), "open", []string{"-na", "/Applications/Arc.app", "--args", "https://a.com"}},
		{"windows edge incognito", "windows", cfg(domain.Edge(), domain.ModeIncognito), "msedge.exe", []string{"--incognito", "https://a.com"}},
		{"windows firefox incognito", "windows", cfg(domain.Firefox(), domain.ModeIncognito), "firefox.exe", []string{"--private-window", "https://a.com"}},
		{"windows chrome private has no flag", "windows", cfg(domain.Chrome(), domain.ModePrivate), "chrome.exe", []string{"https://a.com"}},
		{"linux chrome normal", "linux", cfg(domain.Chrome(), domain.ModeNormal), "/opt/google/chrome/chrome", []string{"https://a.com"}},
		{"linux firefox private", "linux", cfg(domain.Firefox(), domain.ModePrivate), "firefox", []string{"--private-window", "https://a.com"}},
		{"linux custom ignores mode", "linux", cfg(domain.CustomBrowser("/opt/brave/brave"), domain.ModeIncognito), "/opt/brave/brave", []string{"https://a.com"}},
		{"custom path wins over label", "linux", domain.EffectiveConfig{Browser: domain.CustomBrowser("Brave"), Mode: domain.ModeNormal, CustomPath: domain.Ptr("/usr/bin/brave")}, "/usr/bin/brave", []string{"https://a.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Build(tt.goos, tt.cfg, []string{"https://a.com"})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if len(plan.Commands) != 1 {
				t.Fatalf("Build() commands = %d, want 1", len(plan.Commands))
			}
			got := plan.Commands[0]
			if got.Name != tt.wantName || !reflect.DeepEqual(got.Args, tt.wantArgs) {
				t.Errorf("Build() = %s %v, want %s %v", got.Name, got.Args, tt.wantName, tt.wantArgs)
			}
		})
	}
}

func TestBuildOneCommandPerURL(t *testing.T) {
	plan, err := Build("linux", cfg(domain.Firefox(), domain.ModeNormal), []string{"https://a.com", "https://b.com"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if plan.OS != "linux" || len(plan.Commands) != 2 || plan.GapMS != 500 {
		t.Fatalf("Build() = %+v", plan)
	}
	if plan.Commands[1].Args[0] != "https://b.com" {
		t.Errorf("second command args = %v", plan.Commands[1].Args)
	}

	empty, err := Build("linux", cfg(domain.Firefox(), domain.ModeNormal), nil)
	if err != nil || len(empty.Commands) != 0 {
		t.Errorf("Build(no urls) = %+v, %v", empty, err)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		goos string
		cfg  domain.EffectiveConfig
		want error
	}{
		{"safari on linux", "linux", cfg(domain.Safari(), domain.ModeNormal), ErrUnsupported},
		{"safari on windows", "windows", cfg(domain.Safari(), domain.ModePrivate), ErrUnsupported},
		{"unknown os", "plan9", cfg(domain.Chrome(), domain.ModeNormal), ErrUnsupported},
		{"custom without path", "darwin", cfg(domain.CustomBrowser(""), domain.ModeNormal), ErrNoCustomPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.goos, tt.cfg, []string{"https://a.com"}); !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDryRunLaunch(t *testing.T) {
	d := NewDryRun("linux", logger.Nop())
	ctx := context.Background()

	if err := d.Launch(ctx, cfg(domain.Chrome(), domain.ModeIncognito), []string{"https://a.com"}); err != nil {
		t.Errorf("Launch() error = %v", err)
	}
	if err := d.Launch(ctx, cfg(domain.Safari(), domain.ModeNormal), []string{"https://a.com"}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Launch() error = %v, want ErrUnsupported", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := d.Launch(cancelled, cfg(domain.Chrome(), domain.ModeNormal), []string{"https://a.com"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Launch() error = %v, want context.Canceled", err)
	}
}

func TestDiscardLaunch(t *testing.T) {
	var l Launcher = NewDiscard("windows")
	if err := l.Launch(context.Background(), cfg(domain.Edge(), domain.ModeNormal), []string{"https://a.com"}); err != nil {
		t.Errorf("Launch() error = %v", err)
	}
	if err := l.Launch(context.Background(), cfg(domain.Safari(), domain.ModeNormal), nil); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Launch() error = %v, want ErrUnsupported", err)
	}
}
