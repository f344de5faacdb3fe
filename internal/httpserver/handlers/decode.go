package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/respond"
)

var errStoreMissing = errors.New("store not configured")

// decodeJSON reads r's body into dst. On failure it writes the error
// response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	writeBodyError(w, err)
	return false
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeBodyError(w, err)
		return nil, false
	}
	return data, true
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		respond.Error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, io.EOF):
		respond.Error(w, http.StatusBadRequest, "empty body")
	default:
		respond.Error(w, http.StatusBadRequest, fmt.Sprintf("%v: %v", domain.ErrInvalidShape, err))
	}
}

// collectionID parses the {id} URL parameter.
func collectionID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "collection id must be a non-negative integer")
		return 0, false
	}
	return id, true
}
