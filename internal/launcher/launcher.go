// Package launcher turns an effective config and URLs into browser
// invocations. Processes are never spawned here.
package launcher

import (
	"context"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
)

// Launcher opens URLs with a resolved config.
type Launcher interface {
	Launch(ctx context.Context, cfg domain.EffectiveConfig, urls []string) error
}

// DryRun logs the plan it would run.
type DryRun struct {
	goos string
	log  logger.Logger
}

// NewDryRun returns a dry-run launcher building plans for goos.
func NewDryRun(goos string, log logger.Logger) *DryRun {
	return &DryRun{goos: goos, log: log}
}

// Launch implements Launcher.
func (d *DryRun) Launch(ctx context.Context, cfg domain.EffectiveConfig, urls []string) error {
	plan, err := Build(d.goos, cfg, urls)
	if err != nil {
		return err
	}

	for i, cmd := range plan.Commands {
		if err := ctx.Err(); err != nil {
			return err
		}
		site := ""
		if i < len(urls) {
			site = domain.ExtractDomain(urls[i])
		}
		d.log.Info("dry-run launch",
			logger.String("site", site),
			logger.String("os", plan.OS),
			logger.String("browser", cfg.Browser.String()),
			logger.String("mode", string(cfg.Mode)),
			logger.Int("step", i+1),
			logger.String("name", cmd.Name),
			logger.Strings("args", cmd.Args))
	}
	return nil
}

// Discard validates the plan and drops it, for hosts that run plans
// themselves from the API response.
type Discard struct {
	goos string
}

// NewDiscard returns a launcher that only validates plans for goos.
func NewDiscard(goos string) *Discard { return &Discard{goos: goos} }

// Launch implements Launcher.
func (d *Discard) Launch(_ context.Context, cfg domain.EffectiveConfig, urls []string) error {
	_, err := Build(d.goos, cfg, urls)
	return err
}
