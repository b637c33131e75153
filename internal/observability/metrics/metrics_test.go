package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveBooking("ok")
	m.ObserveCancellation("error")
	m.ObservePayment("create_intent", "ok")
	m.ObservePayment("confirm", "error")
	m.ObserveProviderLatency("create_intent", 0.25)
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooking("ok")
	m.ObserveCancellation("ok")
	m.ObservePayment("confirm", "ok")
	m.ObserveProviderLatency("confirm", 0.1)
}
