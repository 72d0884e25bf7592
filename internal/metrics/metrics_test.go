package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterMetrics(reg) })

	// A second registration on the same registry must fail loudly.
	assert.Panics(t, func() { RegisterMetrics(reg) })
}

func TestRecordRegistration(t *testing.T) {
	before := testutil.ToFloat64(Registrations.WithLabelValues(StatusConflict))
	RecordRegistration(StatusConflict)
	assert.Equal(t, before+1, testutil.ToFloat64(Registrations.WithLabelValues(StatusConflict)))
}

func TestRecordLogin(t *testing.T) {
	before := testutil.ToFloat64(Logins.WithLabelValues(StatusRejected))
	RecordLogin(StatusRejected)
	RecordLogin(StatusRejected)
	assert.Equal(t, before+2, testutil.ToFloat64(Logins.WithLabelValues(StatusRejected)))
}

func TestRecordFavouriteMutation(t *testing.T) {
	before := testutil.ToFloat64(FavouriteMutations.WithLabelValues(OpRemove, StatusUnchanged))
	RecordFavouriteMutation(OpRemove, StatusUnchanged)
	assert.Equal(t, before+1, testutil.ToFloat64(FavouriteMutations.WithLabelValues(OpRemove, StatusUnchanged)))
}

func TestRecordHTTPDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "probe_seconds"}, []string{"method", "route", "code"})
	reg.MustRegister(hist)

	orig := HTTPDuration
	HTTPDuration = hist
	t.Cleanup(func() { HTTPDuration = orig })

	RecordHTTPDuration("GET", "/api/user/favourites", 200, 15*time.Millisecond)
	RecordHTTPDuration("GET", "/api/user/favourites", 401, time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(hist))
}

func TestStatusLabel(t *testing.T) {
	tests := map[int]string{
		200: "2xx",
		201: "2xx",
		304: "3xx",
		404: "4xx",
		413: "4xx",
		500: "5xx",
	}
	for code, want := range tests {
		assert.Equal(t, want, statusLabel(code), "code %d", code)
	}
}
