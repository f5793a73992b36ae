package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveBookingCreated()
	m.ObserveCancellation("CREDITED")
	m.ObserveCancellation("CREDITED")
	m.ObserveWebhook("approved", "confirmed")
	m.ObserveWebhookLatency("approved", 0.2)

	var families []*dto.MetricFamily
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	var credited float64
	for _, mf := range families {
		if mf.GetName() != "salon_booking_cancellations_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == "CREDITED" {
					credited = metric.GetCounter().GetValue()
				}
			}
		}
	}
	if credited != 2 {
		t.Errorf("expected 2 credited cancellations, got %v", credited)
	}
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBookingCreated()
	m.ObserveCancellation("DEBTED")
	m.ObserveWebhook("rejected", "ignored")
	m.ObserveWebhookLatency("rejected", 0.1)
}
