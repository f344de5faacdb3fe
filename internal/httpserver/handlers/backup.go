package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/deps"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/respond"
)

// ExportBackup downloads the whole database as JSON.
func ExportBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		db, err := d.Service.Export(r.Context())
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		name := "restore-sites-" + d.Now().UTC().Format("20060102-150405") + ".json"
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		respond.JSON(w, http.StatusOK, db)
	}
}

// ImportBackup loads a v1 or v2 database. ?replace=true wipes the stored
// data first; the default merges.
func ImportBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		replace := false
		if raw := r.URL.Query().Get("replace"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				respond.Error(w, http.StatusBadRequest, "replace must be true or false")
				return
			}
			replace = v
		}

		data, ok := readBody(w, r)
		if !ok {
			return
		}
		report, err := d.Service.Import(r.Context(), data, replace)
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, report)
	}
}
