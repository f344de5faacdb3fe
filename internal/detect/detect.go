// Package detect reports which browsers are installed on the host.
package detect

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
)

// candidates lists where a browser may live on one OS: binaries looked up
// on PATH first, then fixed install paths.
type candidates struct {
	bins  []string
	paths []string
}

var installs = map[string]map[domain.BrowserKind]candidates{
	"linux": {
		domain.KindChrome: {
			bins:  []string{"google-chrome"},
			paths: []string{"/opt/google/chrome/chrome", "/usr/bin/google-chrome", "/usr/bin/google-chrome-stable"},
		},
		domain.KindFirefox: {
			bins:  []string{"firefox"},
			paths: []string{"/usr/bin/firefox", "/usr/bin/firefox-esr", "/opt/firefox/firefox"},
		},
		domain.KindEdge: {
			bins:  []string{"microsoft-edge"},
			paths: []string{"/usr/bin/microsoft-edge", "/usr/bin/microsoft-edge-stable"},
		},
	},
	"darwin": {
		domain.KindChrome:  {paths: []string{"/Applications/Google Chrome.app"}},
		domain.KindFirefox: {paths: []string{"/Applications/Firefox.app"}},
		domain.KindSafari:  {paths: []string{"/Applications/Safari.app"}},
		domain.KindEdge:    {paths: []string{"/Applications/Microsoft Edge.app"}},
	},
	"windows": {
		domain.KindChrome: {paths: []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		}},
		domain.KindFirefox: {paths: []string{
			`C:\Program Files\Mozilla Firefox\firefox.exe`,
			`C:\Program Files (x86)\Mozilla Firefox\firefox.exe`,
		}},
		domain.KindEdge: {paths: []string{
			`C:\Program Files\Microsoft\Edge\Application\msedge.exe`,
			`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
		}},
	},
}

// Builtin lists the fixed browsers, in the order they are reported.
var Builtin = []domain.Browser{domain.Chrome(), domain.Firefox(), domain.Safari(), domain.Edge()}

// Detector checks install locations. Safe for concurrent use.
type Detector struct {
	goos     string
	stat     func(string) (os.FileInfo, error)
	lookPath func(string) (string, error)
}

// Option customizes a Detector.
type Option func(*Detector)

// WithOS overrides runtime.GOOS.
func WithOS(goos string) Option { return func(d *Detector) { d.goos = goos } }

// WithStat overrides os.Stat.
func WithStat(stat func(string) (os.FileInfo, error)) Option {
	return func(d *Detector) { d.stat = stat }
}

// WithLookPath overrides exec.LookPath.
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(d *Detector) { d.lookPath = lookPath }
}

// New returns a Detector for the running host.
func New(opts ...Option) *Detector {
	d := &Detector{
		goos:     runtime.GOOS,
		stat:     os.Stat,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OS returns the operating system the detector checks for.
func (d *Detector) OS() string { return d.goos }

// Detect reports whether b is installed. A custom browser is installed when
// its path exists.
func (d *Detector) Detect(b domain.Browser) bool {
	if b.IsCustom() {
		return d.exists(b.Path)
	}

	c, ok := installs[d.goos][b.Kind]
	if !ok {
		return false
	}
	for _, bin := range c.bins {
		if _, err := d.lookPath(bin); err == nil {
			return true
		}
	}
	for _, p := range c.paths {
		if d.exists(p) {
			return true
		}
	}
	return false
}

// DetectProfile checks the browser of a profile. A custom_path, when set,
// takes precedence over the custom browser's own path.
func (d *Detector) DetectProfile(p *domain.BrowserProfile) bool {
	if p.Browser.IsCustom() && p.CustomPath != nil && *p.CustomPath != "" {
		return d.exists(*p.CustomPath)
	}
	return d.Detect(p.Browser)
}

// DetectAll checks every fixed browser.
func (d *Detector) DetectAll() map[domain.Browser]bool {
	out := make(map[domain.Browser]bool, len(Builtin))
	for _, b := range Builtin {
		out[b] = d.Detect(b)
	}
	return out
}

func (d *Detector) exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := d.stat(path)
	return err == nil
}
