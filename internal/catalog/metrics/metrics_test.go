package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementProductCreated()
	m.IncrementPartCreated()
	m.IncrementPartCreated()
	m.IncrementPartAttached()
	m.ObservePartIDGenerated(KindAttached, time.Now())
	m.ObservePartIDGenerated(KindDisowned, time.Now())
	m.ObservePartIDGenerated(KindDisowned, time.Now())
	m.IncrementPartIDCollision(KindAttached)
	m.IncrementPartIDExhausted(KindDisowned)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProductsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PartsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartsAttached))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartIDsGenerated.WithLabelValues(KindAttached)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PartIDsGenerated.WithLabelValues(KindDisowned)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartIDCollisions.WithLabelValues(KindAttached)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartIDExhausted.WithLabelValues(KindDisowned)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GeneratePartIDTime, "catalog_generate_part_id_duration_seconds"))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
