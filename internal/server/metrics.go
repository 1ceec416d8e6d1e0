package server

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/tracker"
)

// usageCollector reads the store at scrape time.
type usageCollector struct {
	store *tracker.Store

	used   *prometheus.Desc
	limit  *prometheus.Desc
	events *prometheus.Desc
	daily  *prometheus.Desc
}

func newUsageCollector(store *tracker.Store) *usageCollector {
	labels := []string{"service", "index", "period"}
	return &usageCollector{
		store: store,
		used: prometheus.NewDesc("aut_service_used",
			"Usage logged against the service in the current refresh period.", labels, nil),
		limit: prometheus.NewDesc("aut_service_limit",
			"Configured per-period quota of the service.", labels, nil),
		events: prometheus.NewDesc("aut_usage_events_total",
			"Number of usage events in the history log.", nil, nil),
		daily: prometheus.NewDesc("aut_usage_today",
			"Total amount logged today across all services.", nil, nil),
	}
}

func (c *usageCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.used
	ch <- c.limit
	ch <- c.events
	ch <- c.daily
}

func (c *usageCollector) Collect(ch chan<- prometheus.Metric) {
	now := c.store.Now()
	for _, st := range c.store.ServiceStatuses(context.Background(), now) {
		labels := []string{st.Name, strconv.Itoa(st.Index), string(st.Period)}
		ch <- prometheus.MustNewConstMetric(c.used, prometheus.GaugeValue, float64(st.Used), labels...)
		ch <- prometheus.MustNewConstMetric(c.limit, prometheus.GaugeValue, float64(st.Limit), labels...)
	}

	ch <- prometheus.MustNewConstMetric(c.events, prometheus.CounterValue,
		float64(len(c.store.ListHistory(tracker.HistoryFilter{}))))
	ch <- prometheus.MustNewConstMetric(c.daily, prometheus.GaugeValue,
		float64(c.store.DailyStats()[model.DateKey(now)]))
}
