package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the conversational booking flow.
type ChatMetrics struct {
	turnsTotal      *prometheus.CounterVec
	resolverLatency *prometheus.HistogramVec
	calendarWrites  *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartclean",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total chat turns by outcome",
		}, []string{"outcome"}),
		resolverLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smartclean",
			Subsystem: "chat",
			Name:      "resolver_latency_seconds",
			Help:      "Latency of intent resolver calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		calendarWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartclean",
			Subsystem: "chat",
			Name:      "calendar_writes_total",
			Help:      "Total calendar event creation attempts",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.resolverLatency, m.calendarWrites)
	return m
}

// ObserveTurn records a completed chat turn. Outcomes: greeting, selection,
// proposal, confirmed, cancelled, calendar_error, fallback, default.
func (m *ChatMetrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome).Inc()
}

func (m *ChatMetrics) ObserveResolverLatency(status string, seconds float64) {
	if m == nil {
		return
	}
	m.resolverLatency.WithLabelValues(status).Observe(seconds)
}

func (m *ChatMetrics) ObserveCalendarWrite(status string) {
	if m == nil {
		return
	}
	m.calendarWrites.WithLabelValues(status).Inc()
}
