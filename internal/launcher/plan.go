package launcher

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
)

// URLGap is the pause between two launches of one restore.
const URLGap = 500 * time.Millisecond

var (
	// ErrUnsupported is returned when a browser cannot be launched on an OS.
	ErrUnsupported = errors.New("browser not supported on this OS")
	// ErrNoCustomPath is returned for a custom browser without a path.
	ErrNoCustomPath = errors.New("custom browser has no path")
)

// Command is one process invocation.
type Command struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

// Plan is the ordered list of invocations opening every URL of a restore,
// one URL per invocation, GapMS apart.
type Plan struct {
	OS       string    `json:"os"`
	Commands []Command `json:"commands"`
	GapMS    int64     `json:"gap_ms"`
}

var macApps = map[domain.BrowserKind]string{
	domain.KindChrome:  "Google Chrome",
	domain.KindFirefox: "Firefox",
	domain.KindSafari:  "Safari",
	domain.KindEdge:    "Microsoft Edge",
}

var windowsBins = map[domain.BrowserKind]string{
	domain.KindChrome:  "chrome.exe",
	domain.KindFirefox: "firefox.exe",
	domain.KindEdge:    "msedge.exe",
}

var linuxBins = map[domain.BrowserKind]string{
	domain.KindChrome:  "/opt/google/chrome/chrome",
	domain.KindFirefox: "firefox",
	domain.KindEdge:    "microsoft-edge",
}

// Build computes the invocations for cfg on goos. It has no side effects.
func Build(goos string, cfg domain.EffectiveConfig, urls []string) (Plan, error) {
	plan := Plan{
		OS:       goos,
		Commands: make([]Command, 0, len(urls)),
		GapMS:    URLGap.Milliseconds(),
	}

	name, prefix, err := program(goos, cfg)
	if err != nil {
		return plan, err
	}
	flags := modeFlags(goos, cfg.Browser.Kind, cfg.Mode)

	for _, u := range urls {
		args := make([]string, 0, len(prefix)+len(flags)+1)
		args = append(args, prefix...)
		args = append(args, flags...)
		args = append(args, u)
		plan.Commands = append(plan.Commands, Command{Name: name, Args: args})
	}
	return plan, nil
}

// program returns the executable and the arguments preceding the flags.
func program(goos string, cfg domain.EffectiveConfig) (string, []string, error) {
	var custom string
	if cfg.Browser.IsCustom() {
		custom = cfg.Browser.Path
		if cfg.CustomPath != nil && *cfg.CustomPath != "" {
			custom = *cfg.CustomPath
		}
		if custom == "" {
			return "", nil, ErrNoCustomPath
		}
	}

	switch goos {
	case "darwin":
		app := custom
		if app == "" {
			app = macApps[cfg.Browser.Kind]
		}
		if app == "" {
			return "", nil, fmt.Errorf("%w: %s on %s", ErrUnsupported, cfg.Browser, goos)
		}
		return "open", []string{"-na", app, "--args"}, nil
	case "windows", "linux":
		if custom != "" {
			return custom, nil, nil
		}
		bins := linuxBins
		if goos == "windows" {
			bins = windowsBins
		}
		if bin, ok := bins[cfg.Browser.Kind]; ok {
			return bin, nil, nil
		}
	}
	return "", nil, fmt.Errorf("%w: %s on %s", ErrUnsupported, cfg.Browser, goos)
}

func modeFlags(goos string, kind domain.BrowserKind, mode domain.BrowserMode) []string {
	switch mode {
	case domain.ModeIncognito:
		switch kind {
		case domain.KindChrome:
			return []string{"--incognito"}
		case domain.KindEdge:
			if goos != "darwin" {
				return []string{"--incognito"}
			}
		case domain.KindFirefox:
			return []string{"--private-window"}
		}
	case domain.ModePrivate:
		switch kind {
		case domain.KindFirefox:
			return []string{"--private-window"}
		case domain.KindSafari:
			if goos == "darwin" {
				return []string{"--private"}
			}
		}
	}
	return nil
}
