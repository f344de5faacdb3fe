package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/deps"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/respond"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
	"github.com/MrSnakeDoc/restore-sites/internal/scheduler"
	"github.com/MrSnakeDoc/restore-sites/internal/service"
)

type profilesResponse struct {
	Profiles []*domain.BrowserProfile `json:"profiles"`
	Count    int                      `json:"count"`
}

func ListProfiles(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles, err := d.Service.ListProfiles(r.Context())
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		if profiles == nil {
			profiles = []*domain.BrowserProfile{}
		}
		respond.JSON(w, http.StatusOK, profilesResponse{Profiles: profiles, Count: len(profiles)})
	}
}

func CreateProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.ProfileInput
		if !decodeJSON(w, r, &in) {
			return
		}
		p, err := d.Service.CreateProfile(r.Context(), in)
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		d.Logger.Info("profile created", logger.String("id", p.ID), logger.String("browser", p.Browser.String()))
		w.Header().Set("Location", "/api/profiles/"+p.ID)
		respond.JSON(w, http.StatusCreated, p)
	}
}

func GetProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := d.Service.GetProfile(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, p)
	}
}

func UpdateProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.ProfileInput
		if !decodeJSON(w, r, &in) {
			return
		}
		p, err := d.Service.UpdateProfile(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, p)
	}
}

func DeleteProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := d.Service.DeleteProfile(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, deletedResponse{Deleted: deleted})
	}
}

type triggerResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// DetectProfiles refreshes browser detection. With ?wait=true, or when no
// background refresher listens, it runs inline and returns the report.
// Otherwise it queues a refresh: 202 when queued, 429 when one is pending.
func DetectProfiles(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
		if wait || d.DetectTrigger == nil {
			report, err := d.Service.RefreshDetection(r.Context())
			if err != nil {
				respond.Fail(w, d.Logger, err)
				return
			}
			respond.JSON(w, http.StatusOK, report)
			return
		}

		if !scheduler.Trigger(d.DetectTrigger) {
			d.Logger.Warn("detection refresh already pending", logger.String("remote_ip", r.RemoteAddr))
			respond.JSON(w, http.StatusTooManyRequests, triggerResponse{Message: "detection refresh already pending"})
			return
		}
		d.Logger.Info("manual detection refresh triggered via endpoint", logger.String("remote_ip", r.RemoteAddr))
		respond.JSON(w, http.StatusAccepted, triggerResponse{Triggered: true, Message: "detection refresh queued"})
	}
}
