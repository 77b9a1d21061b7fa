package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Zachdehooge/teleconnection-dashboard/internal/fetcher"
)

func TestCollector_ObserveFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveFetch("AO", "", 120, 200*time.Millisecond)
	c.ObserveFetch("AO", "", 121, 100*time.Millisecond)
	c.ObserveFetch("NAO", fetcher.ReasonStatus, 0, time.Second)
	c.ObserveFetch("PNA", "", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.fetches.WithLabelValues("AO", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fetches.WithLabelValues("NAO", "status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fetches.WithLabelValues("PNA", "empty")))
	assert.Equal(t, 121.0, testutil.ToFloat64(c.records.WithLabelValues("AO")))
	assert.Equal(t, 3, testutil.CollectAndCount(c.fetchDuration))
}

func TestCollector_ObserveRender(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.ObserveRender(nil)
	c.ObserveRender(nil)
	c.ObserveRender(errors.New("template exploded"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.renders.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.renders.WithLabelValues("error")))
}

func TestCollector_ImplementsObserver(t *testing.T) {
	var _ fetcher.Observer = New(prometheus.NewRegistry())
}
