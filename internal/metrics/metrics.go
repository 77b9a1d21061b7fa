package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Zachdehooge/teleconnection-dashboard/internal/fetcher"
)

const namespace = "teledash"

// Collector groups the dashboard's Prometheus instruments
type Collector struct {
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	records       *prometheus.GaugeVec
	renders       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_fetches_total",
			Help:      "Index source fetches by index and outcome.",
		}, []string{"index", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_fetch_duration_seconds",
			Help:      "Time spent downloading and parsing an index source.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"index"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_records",
			Help:      "Records parsed on the most recent successful fetch.",
		}, []string{"index"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_renders_total",
			Help:      "Dashboard page renders by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(c.fetches, c.fetchDuration, c.records, c.renders)
	return c
}

// ObserveFetch implements fetcher.Observer
func (c *Collector) ObserveFetch(index string, reason fetcher.Reason, records int, elapsed time.Duration) {
	outcome := "ok"
	if reason != "" {
		outcome = string(reason)
	} else if records == 0 {
		outcome = "empty"
	}
	c.fetches.WithLabelValues(index, outcome).Inc()
	c.fetchDuration.WithLabelValues(index).Observe(elapsed.Seconds())
	if reason == "" {
		c.records.WithLabelValues(index).Set(float64(records))
	}
}

// ObserveRender counts a page render
func (c *Collector) ObserveRender(err error) {
	if err != nil {
		c.renders.WithLabelValues("error").Inc()
		return
	}
	c.renders.WithLabelValues("ok").Inc()
}
