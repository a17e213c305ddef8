// Package metrics provides Prometheus metric collection and exposure.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface the services record through.
type Recorder interface {
	RecordEventIngested(kind string, significant bool)
	RecordEventDropped()
	RecordDispatch(lists int)
	RecordMailSent()
	RecordMailFailed()
	RecordRuleRecompute(ruleType string, duration time.Duration)
	RecordListRecompute(duration time.Duration)
	RecordFeedRender()
}

// Collector implements Recorder on top of Prometheus.
type Collector struct {
	eventsIngested   *prometheus.CounterVec
	eventsDropped    prometheus.Counter
	dispatchLists    prometheus.Counter
	mailSent         prometheus.Counter
	mailFailed       prometheus.Counter
	ruleRecomputes   *prometheus.CounterVec
	recomputeLatency prometheus.Histogram
	listRecomputes   prometheus.Counter
	feedRenders      prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on the
// given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		eventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docwatch_events_ingested_total",
			Help: "Relevant document events ingested, by kind and significance.",
		}, []string{"kind", "significant"}),
		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docwatch_events_dropped_total",
			Help: "Document events classified as irrelevant and dropped.",
		}),
		dispatchLists: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docwatch_dispatch_lists_total",
			Help: "List notifications claimed by the dispatcher.",
		}),
		mailSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docwatch_mail_sent_total",
			Help: "Notification mails delivered.",
		}),
		mailFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docwatch_mail_failed_total",
			Help: "Notification mails that failed after all retries.",
		}),
		ruleRecomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docwatch_rule_recomputes_total",
			Help: "Rule cache recomputations, by rule type.",
		}, []string{"rule_type"}),
		recomputeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docwatch_recompute_latency_seconds",
			Help:    "Latency of rule cache recomputations.",
			Buckets: prometheus.DefBuckets,
		}),
		listRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docwatch_list_recomputes_total",
			Help: "List aggregate recomputations.",
		}),
		feedRenders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docwatch_feed_renders_total",
			Help: "Atom feed renders served.",
		}),
	}

	reg.MustRegister(
		c.eventsIngested,
		c.eventsDropped,
		c.dispatchLists,
		c.mailSent,
		c.mailFailed,
		c.ruleRecomputes,
		c.recomputeLatency,
		c.listRecomputes,
		c.feedRenders,
	)

	return c
}

func (c *Collector) RecordEventIngested(kind string, significant bool) {
	label := "false"
	if significant {
		label = "true"
	}
	c.eventsIngested.WithLabelValues(kind, label).Inc()
}

func (c *Collector) RecordEventDropped() {
	c.eventsDropped.Inc()
}

func (c *Collector) RecordDispatch(lists int) {
	c.dispatchLists.Add(float64(lists))
}

func (c *Collector) RecordMailSent() {
	c.mailSent.Inc()
}

func (c *Collector) RecordMailFailed() {
	c.mailFailed.Inc()
}

func (c *Collector) RecordRuleRecompute(ruleType string, duration time.Duration) {
	c.ruleRecomputes.WithLabelValues(ruleType).Inc()
	c.recomputeLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordListRecompute(duration time.Duration) {
	c.listRecomputes.Inc()
}

func (c *Collector) RecordFeedRender() {
	c.feedRenders.Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop is a Recorder that records nothing. Used in tests and tools that
// do not expose metrics.
type Nop struct{}

func (Nop) RecordEventIngested(string, bool)           {}
func (Nop) RecordEventDropped()                        {}
func (Nop) RecordDispatch(int)                         {}
func (Nop) RecordMailSent()                            {}
func (Nop) RecordMailFailed()                          {}
func (Nop) RecordRuleRecompute(string, time.Duration)  {}
func (Nop) RecordListRecompute(time.Duration)          {}
func (Nop) RecordFeedRender()                          {}
