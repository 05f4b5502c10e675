package order

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts order outcomes. A nil *Metrics records nothing.
type Metrics struct {
	Placed   prometheus.Counter
	Replayed prometheus.Counter
	Items    prometheus.Counter
	Dropped  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Placed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orderdesk",
			Name:      "orders_placed_total",
			Help:      "Orders persisted.",
		}),
		Replayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orderdesk",
			Name:      "orders_replayed_total",
			Help:      "Submissions answered from an earlier order with the same idempotency key.",
		}),
		Items: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orderdesk",
			Name:      "order_items_persisted_total",
			Help:      "Line items persisted.",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orderdesk",
			Name:      "order_items_dropped_total",
			Help:      "Requested line items skipped because the product does not exist.",
		}),
	}
	reg.MustRegister(m.Placed, m.Replayed, m.Items, m.Dropped)
	return m
}

func (m *Metrics) observePlaced(requested, persisted int) {
	if m == nil {
		return
	}
	m.Placed.Inc()
	m.Items.Add(float64(persisted))
	m.Dropped.Add(float64(requested - persisted))
}

func (m *Metrics) observeReplayed() {
	if m == nil {
		return
	}
	m.Replayed.Inc()
}
