package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LotMetrics counts parking lot mutations by operation and outcome.
type LotMetrics struct {
	mutations *prometheus.CounterVec
}

func NewLotMetrics(reg prometheus.Registerer) *LotMetrics {
	if reg == nil {
		return &LotMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parking_lot_mutations_total",
		Help: "Parking lot create, update, delete and occupancy attempts.",
	}, []string{"op", "outcome"})
	reg.MustRegister(mutations)
	return &LotMetrics{mutations: mutations}
}

// IncMutation records op with an outcome such as "success" or "not_found".
func (m *LotMetrics) IncMutation(op, outcome string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}
