package deps

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/restore-sites/internal/index"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
	"github.com/MrSnakeDoc/restore-sites/internal/metrics"
	"github.com/MrSnakeDoc/restore-sites/internal/service"
	"github.com/MrSnakeDoc/restore-sites/internal/version"
)

// Pinger reports whether the backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Build        version.Info
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to reach the API and the probes
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	MaxBodyBytes int64            // cap on request bodies, 0 = unlimited

	Service  *service.Service
	Store    Pinger
	Index    *index.ProfileIndex
	Metrics  *metrics.Metrics
	LaunchOS string
	DryRun   bool

	DetectTrigger chan struct{}                   // manual detection refresh (nil = refresh inline)
	Mutating      func(http.Handler) http.Handler // applied to write routes, usually a rate limiter
}

// Now returns TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
