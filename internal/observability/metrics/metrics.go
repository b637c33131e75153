package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking and payment flows.
type BookingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	cancellationsTotal *prometheus.CounterVec
	paymentsTotal      *prometheus.CounterVec
	paymentLatency     *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medicore",
			Subsystem: "booking",
			Name:      "bookings_total",
			Help:      "Total appointment booking attempts",
		}, []string{"status"}),
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medicore",
			Subsystem: "booking",
			Name:      "cancellations_total",
			Help:      "Total appointment cancellation attempts",
		}, []string{"status"}),
		paymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medicore",
			Subsystem: "payments",
			Name:      "attempts_total",
			Help:      "Total payment handshake steps by step and outcome",
		}, []string{"step", "status"}),
		paymentLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medicore",
			Subsystem: "payments",
			Name:      "provider_latency_seconds",
			Help:      "Latency of Stripe API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.cancellationsTotal, m.paymentsTotal, m.paymentLatency)
	return m
}

func (m *BookingMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveCancellation(status string) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(status).Inc()
}

// ObservePayment records one step of the payment handshake: create_intent or
// confirm, with outcome ok/error.
func (m *BookingMetrics) ObservePayment(step, status string) {
	if m == nil {
		return
	}
	m.paymentsTotal.WithLabelValues(step, status).Inc()
}

func (m *BookingMetrics) ObserveProviderLatency(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.paymentLatency.WithLabelValues(operation).Observe(seconds)
}
