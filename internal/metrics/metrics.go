package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingslot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pingslot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingslot_registrations_total",
			Help: "Total number of slot registrations",
		},
		[]string{"overbooked"},
	)

	UnregistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pingslot_unregistrations_total",
			Help: "Total number of slot unregistrations",
		},
	)

	InvitationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingslot_invitations_total",
			Help: "Total number of guest invitations",
		},
		[]string{"action"},
	)

	TemplateApplicationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingslot_template_applications_total",
			Help: "Total number of template applications to weeks",
		},
		[]string{"mode"},
	)

	TemplateConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pingslot_template_conflicts_total",
			Help: "Total number of template entries skipped or replaced on conflict",
		},
	)

	EvictedReservationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pingslot_evicted_reservations_total",
			Help: "Total number of reservations evicted by blocking training slots",
		},
	)

	OpenedSlotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingslot_opened_slots_total",
			Help: "Total number of ad-hoc slot open/close operations",
		},
		[]string{"action"},
	)

	ChangeEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingslot_change_events_published_total",
			Help: "Total number of collection change events published",
		},
		[]string{"collection"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pingslot_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pingslot_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordRegistration(overbooked bool) {
	if overbooked {
		RegistrationsTotal.WithLabelValues("true").Inc()
	} else {
		RegistrationsTotal.WithLabelValues("false").Inc()
	}
}

func RecordTemplateApplication(mode string, conflicts, evicted int) {
	TemplateApplicationsTotal.WithLabelValues(mode).Inc()
	TemplateConflictsTotal.Add(float64(conflicts))
	EvictedReservationsTotal.Add(float64(evicted))
}
