package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestCounters(t *testing.T) {
	m := New()

	m.AddParsed(3)
	m.AddParsed(0)
	m.CollectionSaved()
	m.Restore(OutcomeLaunched)
	m.Restore(OutcomeUnresolved)
	m.Restore(OutcomeUnresolved)
	m.Skipped("collection", 2)
	m.DetectionDone(4)

	body := scrape(t, m)
	assert.Contains(t, body, "restore_sites_parsed_entries_total 3")
	assert.Contains(t, body, "restore_sites_collections_saved_total 1")
	assert.Contains(t, body, `restore_sites_restores_total{outcome="unresolved"} 2`)
	assert.Contains(t, body, `restore_sites_restores_total{outcome="launched"} 1`)
	assert.Contains(t, body, `restore_sites_skipped_records_total{kind="collection"} 2`)
	assert.Contains(t, body, "restore_sites_profiles_detected 4")
	assert.Contains(t, body, "go_goroutines")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AddParsed(1)
		m.CollectionSaved()
		m.Restore(OutcomeFailed)
		m.Skipped("profile", 1)
		m.DetectionDone(0)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
