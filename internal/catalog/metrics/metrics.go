package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Part id kinds used as the "kind" label.
const (
	KindAttached = "attached"
	KindDisowned = "disowned"
)

// Metrics provides observability for the catalog module.
// Tracks product/part creation counts and part id generation behaviour.
type Metrics struct {
	ProductsCreated    prometheus.Counter
	PartsCreated       prometheus.Counter
	PartsAttached      prometheus.Counter
	PartIDsGenerated   *prometheus.CounterVec
	PartIDCollisions   *prometheus.CounterVec
	PartIDExhausted    *prometheus.CounterVec
	GeneratePartIDTime prometheus.Histogram
}

// New creates a Metrics instance registered on reg. A nil reg registers on
// the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ProductsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "catalog_products_created_total",
			Help: "Total number of products created",
		}),
		PartsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "catalog_parts_created_total",
			Help: "Total number of parts created",
		}),
		PartsAttached: factory.NewCounter(prometheus.CounterOpts{
			Name: "catalog_parts_attached_total",
			Help: "Total number of part to product attachments",
		}),
		PartIDsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_part_ids_generated_total",
			Help: "Total number of part ids generated, by kind",
		}, []string{"kind"}),
		PartIDCollisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_part_id_collisions_total",
			Help: "Candidate part ids rejected because they were already reserved in their scope",
		}, []string{"kind"}),
		PartIDExhausted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_part_id_exhausted_total",
			Help: "Part id generations that gave up after the configured number of attempts",
		}, []string{"kind"}),
		GeneratePartIDTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_generate_part_id_duration_seconds",
			Help:    "Duration of part id generation including reservation round trips",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

func (m *Metrics) IncrementProductCreated() {
	m.ProductsCreated.Inc()
}

func (m *Metrics) IncrementPartCreated() {
	m.PartsCreated.Inc()
}

func (m *Metrics) IncrementPartAttached() {
	m.PartsAttached.Inc()
}

// ObservePartIDGenerated records a successful generation of the given kind.
func (m *Metrics) ObservePartIDGenerated(kind string, start time.Time) {
	m.PartIDsGenerated.WithLabelValues(kind).Inc()
	m.GeneratePartIDTime.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementPartIDCollision(kind string) {
	m.PartIDCollisions.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementPartIDExhausted(kind string) {
	m.PartIDExhausted.WithLabelValues(kind).Inc()
}
