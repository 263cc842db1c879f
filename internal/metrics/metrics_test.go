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
)

func TestRecorder(t *testing.T) {
	r := New()
	r.ObserveDuration("analyze", 250*time.Millisecond)
	r.IncError("basket")
	r.IncError("basket")
	r.IncCache("hit")
	r.SetDominantCycle("2330.TW", 41.5)
	r.IncNotification("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("basket")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheTotal.WithLabelValues("hit")))
	assert.Equal(t, 41.5, testutil.ToFloat64(r.dominantCycle.WithLabelValues("2330.TW")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.IncCache("miss")

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `quantlens_provider_cache_total{result="miss"} 1`)
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.IncError("analyze")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.errorsTotal.WithLabelValues("analyze")))
}
