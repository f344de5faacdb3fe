package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/deps"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/respond"
)

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Sites []domain.SiteEntry `json:"sites"`
}

// ParseSites extracts site entries from pasted text.
func ParseSites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req parseRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		respond.JSON(w, http.StatusOK, parseResponse{Sites: d.Service.ParseSites(req.Text)})
	}
}

type restoreRequest struct {
	Sites  []domain.SiteEntry      `json:"sites"`
	Config domain.CollectionConfig `json:"config"`
}

// RestoreSites restores an unsaved list of sites.
func RestoreSites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req restoreRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		res, err := d.Service.RestoreSites(r.Context(), req.Sites, req.Config)
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}
