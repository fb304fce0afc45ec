// Package metrics exports store activity to prometheus.
package metrics

import (
	"strconv"

	"github.com/delaneyj/statetree/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements store.Hooks. One collector may serve several
// stores, their numbers add up.
type Collector struct {
	commits     *prometheus.CounterVec
	flushes     prometheus.Counter
	deliveries  prometheus.Counter
	perFlush    prometheus.Histogram
	activeNodes prometheus.Gauge
	activations prometheus.Counter
}

var _ store.Hooks = (*Collector)(nil)

func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	f := promauto.With(reg)
	return &Collector{
		commits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_total",
			Help:      "Root commits, labelled by whether a batch deferred notification.",
		}, []string{"batched"}),
		flushes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushes_total",
			Help:      "Notification passes over the tree.",
		}),
		deliveries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Subscriber callbacks invoked.",
		}),
		perFlush: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "deliveries_per_flush",
			Help:      "Subscriber callbacks invoked by a single notification pass.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		activeNodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_nodes",
			Help:      "Nodes currently kept up to date by a subscription.",
		}),
		activations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activations_total",
			Help:      "Node activations.",
		}),
	}
}

func (c *Collector) Committed(batched bool) {
	c.commits.WithLabelValues(strconv.FormatBool(batched)).Inc()
}

func (c *Collector) Emitted(delivered int) {
	c.flushes.Inc()
	c.deliveries.Add(float64(delivered))
	c.perFlush.Observe(float64(delivered))
}

func (c *Collector) Activated(*store.Node) {
	c.activations.Inc()
	c.activeNodes.Inc()
}

func (c *Collector) Deactivated(*store.Node) {
	c.activeNodes.Dec()
}
