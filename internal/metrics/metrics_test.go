package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/oncall/pkg/model"
)

func TestRegistry_RecordRequest(t *testing.T) {
	r := NewRegistry()

	r.RecordRequest(http.MethodPost, "/api/v1/roster/generate", 200, 20*time.Millisecond)
	r.RecordRequest(http.MethodPost, "/api/v1/roster/generate", 200, 30*time.Millisecond)

	got := testutil.ToFloat64(r.httpRequests.WithLabelValues(http.MethodPost, "/api/v1/roster/generate", "200"))
	assert.Equal(t, 2.0, got)
}

func TestRegistry_Generation(t *testing.T) {
	r := NewRegistry()

	r.RecordGeneration(true, time.Millisecond)
	r.RecordGeneration(false, time.Millisecond)
	r.SetUnfilledSlots(model.RolePrimary, 3)
	r.SetFillRate(87.5)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.generations.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.generations.WithLabelValues("failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.unfilledSlots.WithLabelValues("primary")))
	assert.Equal(t, 87.5, testutil.ToFloat64(r.fillRate))
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.RecordGeneration(true, time.Millisecond)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "oncall_roster_generations_total")
}
