package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/deps"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/respond"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
	"github.com/MrSnakeDoc/restore-sites/internal/service"
)

type collectionsResponse struct {
	Collections []*domain.CollectionRecord `json:"collections"`
	Count       int                        `json:"count"`
}

type deletedResponse struct {
	Deleted bool `json:"deleted"`
}

// ListCollections lists every collection, or those whose name contains ?q=.
func ListCollections(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := d.Service.ListCollections(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		if recs == nil {
			recs = []*domain.CollectionRecord{}
		}
		respond.JSON(w, http.StatusOK, collectionsResponse{Collections: recs, Count: len(recs)})
	}
}

func CreateCollection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.CollectionInput
		if !decodeJSON(w, r, &in) {
			return
		}
		rec, err := d.Service.SaveCollection(r.Context(), in)
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		w.Header().Set("Location", "/api/collections/"+strconv.FormatUint(rec.ID, 10))
		respond.JSON(w, http.StatusCreated, rec)
	}
}

func GetCollection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := collectionID(w, r)
		if !ok {
			return
		}
		rec, err := d.Service.GetCollection(r.Context(), id)
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, rec)
	}
}

func UpdateCollection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := collectionID(w, r)
		if !ok {
			return
		}
		var in service.CollectionInput
		if !decodeJSON(w, r, &in) {
			return
		}
		rec, err := d.Service.UpdateCollection(r.Context(), id, in)
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, rec)
	}
}

func DeleteCollection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := collectionID(w, r)
		if !ok {
			return
		}
		deleted, err := d.Service.DeleteCollection(r.Context(), id)
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, deletedResponse{Deleted: deleted})
	}
}

// RestoreCollection resolves a stored collection and hands it to the launcher.
func RestoreCollection(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := collectionID(w, r)
		if !ok {
			return
		}
		res, err := d.Service.RestoreCollection(r.Context(), id)
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}

// CollectionText returns the collection in pasteable "title | url" form.
func CollectionText(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := collectionID(w, r)
		if !ok {
			return
		}
		text, err := d.Service.CollectionText(r.Context(), id)
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write([]byte(text)); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}

type statsResponse struct {
	Restores map[string]int64 `json:"restores"`
}

// RestoreStats returns how often each collection was restored.
func RestoreStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := d.Service.RestoreCounts(r.Context())
		if err != nil {
			respond.Fail(w, d.Logger, err)
			return
		}
		out := make(map[string]int64, len(counts))
		for id, n := range counts {
			out[strconv.FormatUint(id, 10)] = n
		}
		respond.JSON(w, http.StatusOK, statsResponse{Restores: out})
	}
}
