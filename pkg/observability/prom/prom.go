// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/layerdeck/pkg/observability"
)

// Hooks records controller and panel events as Prometheus metrics.
type Hooks struct {
	activations  *prometheus.CounterVec
	toggled      *prometheus.CounterVec
	compositions prometheus.Counter
	passes       prometheus.Counter
	passSeconds  prometheus.Histogram
	rows         prometheus.Gauge
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) (*Hooks, error) {
	h := &Hooks{
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "layerdeck_activations_total",
			Help: "Affordances applied, by action and node kind.",
		}, []string{"action", "kind"}),
		toggled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "layerdeck_renderer_writes_total",
			Help: "Renderer enabled flags written, by action.",
		}, []string{"action"}),
		compositions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "layerdeck_composition_maps_added_total",
			Help: "Composition map entries appended.",
		}),
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "layerdeck_draw_passes_total",
			Help: "Panel draw passes.",
		}),
		passSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "layerdeck_draw_pass_seconds",
			Help:    "Duration of panel draw passes.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "layerdeck_decorated_rows",
			Help: "Rows decorated in the last draw pass.",
		}),
	}

	for _, c := range []prometheus.Collector{h.activations, h.toggled, h.compositions, h.passes, h.passSeconds, h.rows} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// OnActivate implements observability.ControllerHooks.
func (h *Hooks) OnActivate(_ context.Context, action, kind string, touched int) {
	h.activations.WithLabelValues(action, kind).Inc()
	h.toggled.WithLabelValues(action).Add(float64(touched))
}

// OnCompositionAdded implements observability.ControllerHooks.
func (h *Hooks) OnCompositionAdded(context.Context, string) {
	h.compositions.Inc()
}

// OnDrawPass implements observability.PanelHooks.
func (h *Hooks) OnDrawPass(_ context.Context, _, decorated int, duration time.Duration) {
	h.passes.Inc()
	h.passSeconds.Observe(duration.Seconds())
	h.rows.Set(float64(decorated))
}

var (
	_ observability.ControllerHooks = (*Hooks)(nil)
	_ observability.PanelHooks      = (*Hooks)(nil)
)
