package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TrackingMetrics counts shipment and tracking-event writes.
type TrackingMetrics struct {
	shipmentsCreated prometheus.Counter
	eventsAppended   *prometheus.CounterVec
}

// NewTrackingMetrics registers the tracking counters on reg. A nil registerer
// yields a no-op recorder.
func NewTrackingMetrics(reg prometheus.Registerer) *TrackingMetrics {
	if reg == nil {
		return &TrackingMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shipments_created_total",
		Help: "Shipments created, including their seed tracking event.",
	})
	appended := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracking_events_appended_total",
		Help: "Tracking events appended to existing shipments, by event status.",
	}, []string{"status"})
	reg.MustRegister(created, appended)
	return &TrackingMetrics{
		shipmentsCreated: created,
		eventsAppended:   appended,
	}
}

// ShipmentCreated increments the shipment creation counter.
func (m *TrackingMetrics) ShipmentCreated() {
	if m == nil || m.shipmentsCreated == nil {
		return
	}
	m.shipmentsCreated.Inc()
}

// EventAppended increments the appended-event counter for status.
func (m *TrackingMetrics) EventAppended(status string) {
	if m == nil || m.eventsAppended == nil {
		return
	}
	m.eventsAppended.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
