package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/deps"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/respond"
	"github.com/MrSnakeDoc/restore-sites/internal/version"
)

const pingTimeout = 2 * time.Second

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	version.Info
}

// Healthz reports liveness and build info. It never touches the store.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		respond.JSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: d.Now().Sub(d.StartTime).Seconds(),
			Info:          d.Build,
		})
	}
}

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz answers 503 while the store is unreachable.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pingStore(r.Context(), d); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, readyzResponse{Error: "store unavailable"})
			return
		}
		respond.JSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}

type componentStatus struct {
	OK             bool            `json:"ok"`
	ProfilesLoaded *int            `json:"profiles_loaded,omitempty"`
	LastSync       string          `json:"last_sync,omitempty"`
	LastRun        string          `json:"last_run,omitempty"`
	Browsers       map[string]bool `json:"browsers,omitempty"`
	Mode           string          `json:"mode,omitempty"`
	OS             string          `json:"os,omitempty"`
	Impact         string          `json:"impact,omitempty"`
	Error          string          `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra details the state of the store, the profile index, browser
// detection and the launcher.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"redis":         checkRedis(r.Context(), d),
			"profile_index": checkIndex(d),
			"detection":     checkDetection(d),
			"launcher":      checkLauncher(d),
		}
		respond.JSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

// determineStatus is "critical" when neither the store nor a synced index
// can serve profiles, "degraded" when only the index can.
func determineStatus(components map[string]componentStatus) string {
	if components["redis"].OK {
		return "ok"
	}
	if components["profile_index"].OK {
		return "degraded"
	}
	return "critical"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if err := pingStore(ctx, d); err != nil {
		return componentStatus{
			Impact: "restores use the last synced profile index, writes fail",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true}
}

func checkIndex(d deps.Deps) componentStatus {
	if d.Index == nil {
		return componentStatus{Error: "index not configured"}
	}
	count := d.Index.Count()
	st := componentStatus{ProfilesLoaded: &count, LastSync: "never"}
	if last := d.Index.LastSync(); !last.IsZero() {
		st.OK = true
		st.LastSync = last.UTC().Format(time.RFC3339)
	}
	return st
}

func checkDetection(d deps.Deps) componentStatus {
	st := componentStatus{OK: true, LastRun: "never"}
	if d.Index == nil {
		return st
	}
	detected, at := d.Index.Detected()
	if !at.IsZero() {
		st.LastRun = at.UTC().Format(time.RFC3339)
	}
	if len(detected) > 0 {
		st.Browsers = make(map[string]bool, len(detected))
		for b, ok := range detected {
			st.Browsers[b.String()] = ok
		}
	}
	return st
}

func checkLauncher(d deps.Deps) componentStatus {
	mode := "validate-only"
	if d.DryRun {
		mode = "dry-run"
	}
	return componentStatus{OK: true, Mode: mode, OS: d.LaunchOS}
}

func pingStore(ctx context.Context, d deps.Deps) error {
	if d.Store == nil {
		return errStoreMissing
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return d.Store.Ping(ctx)
}

// Metrics serves the Prometheus registry.
func Metrics(d deps.Deps) http.HandlerFunc {
	h := d.Metrics.Handler()
	return h.ServeHTTP
}
