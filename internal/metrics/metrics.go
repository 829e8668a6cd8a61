package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitslot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitslot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitslot_booking_decisions_total",
			Help: "Booking requests by outcome and rejection reason",
		},
		[]string{"outcome", "reason"},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitslot_booking_transitions_total",
			Help: "Applied booking status transitions",
		},
		[]string{"from", "to", "actor"},
	)

	BookingsAutoCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitslot_bookings_auto_completed_total",
			Help: "Approved bookings completed by an elapsed-time sweep",
		},
		[]string{"trigger"},
	)

	OpenSlotsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fitslot_open_slots_returned",
			Help:    "Number of open start times returned per slot query",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 48},
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitslot_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitslot_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordBookingDecision counts a booking request; reason is empty for accepted ones.
func RecordBookingDecision(outcome, reason string) {
	BookingDecisionsTotal.WithLabelValues(outcome, reason).Inc()
}

func RecordTransition(from, to, actor string) {
	BookingTransitionsTotal.WithLabelValues(from, to, actor).Inc()
}

func RecordAutoCompleted(trigger string, n int64) {
	if n <= 0 {
		return
	}
	BookingsAutoCompletedTotal.WithLabelValues(trigger).Add(float64(n))
}

func RecordOpenSlots(n int) {
	OpenSlotsReturned.Observe(float64(n))
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
