package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/deps"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/respond"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
)

type defaultModeBody struct {
	DefaultMode *domain.BrowserMode `json:"default_mode"`
}

func GetDefaultMode(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := d.Service.DefaultMode(r.Context())
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, defaultModeBody{DefaultMode: &mode})
	}
}

func SetDefaultMode(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body defaultModeBody
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.DefaultMode == nil {
			respond.Error(w, http.StatusBadRequest, "default_mode is required")
			return
		}
		if err := d.Service.SetDefaultMode(r.Context(), *body.DefaultMode); err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		d.Logger.Info("default browser mode changed", logger.String("mode", string(*body.DefaultMode)))
		respond.JSON(w, http.StatusOK, body)
	}
}
