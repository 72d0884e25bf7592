// Package metrics holds the Prometheus collectors for account and
// favourites activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status label values.
const (
	StatusSuccess   = "success"
	StatusRejected  = "rejected"
	StatusConflict  = "conflict"
	StatusUnchanged = "unchanged"
	StatusError     = "error"
)

// Favourite mutation label values.
const (
	OpAdd    = "add"
	OpRemove = "remove"
)

// Registrations counts registration attempts that reached the store.
// Use RegisterMetrics to register this with a Prometheus registry.
var Registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shelfmark_registrations_total",
		Help: "Total number of registration attempts by outcome",
	},
	[]string{"status"},
)

// Logins counts login attempts that passed input validation.
// Use RegisterMetrics to register this with a Prometheus registry.
var Logins = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shelfmark_logins_total",
		Help: "Total number of login attempts by outcome",
	},
	[]string{"status"},
)

// FavouriteMutations counts add and remove operations on favourites.
// Use RegisterMetrics to register this with a Prometheus registry.
var FavouriteMutations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "shelfmark_favourite_mutations_total",
		Help: "Total number of favourite add/remove operations by outcome",
	},
	[]string{"op", "status"},
)

// HTTPDuration is the histogram for HTTP request duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var HTTPDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "shelfmark_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route", "code"},
)

// RegisterMetrics registers the package collectors with the given registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Registrations)
	reg.MustRegister(Logins)
	reg.MustRegister(FavouriteMutations)
	reg.MustRegister(HTTPDuration)
}

// RecordRegistration increments the registration counter.
func RecordRegistration(status string) {
	Registrations.WithLabelValues(status).Inc()
}

// RecordLogin increments the login counter.
func RecordLogin(status string) {
	Logins.WithLabelValues(status).Inc()
}

// RecordFavouriteMutation increments the favourites counter.
// Parameters:
//   - op: OpAdd or OpRemove
//   - status: StatusSuccess, StatusUnchanged or StatusError
func RecordFavouriteMutation(op, status string) {
	FavouriteMutations.WithLabelValues(op, status).Inc()
}

// RecordHTTPDuration records how long a request took. route is the chi
// route pattern, not the raw path, to keep label cardinality bounded.
func RecordHTTPDuration(method, route string, code int, d time.Duration) {
	HTTPDuration.WithLabelValues(method, route, statusLabel(code)).Observe(d.Seconds())
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
