// Package metrics exposes Prometheus counters for watchlist, social, chat and upstream activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services and the TMDB client record through.
type Recorder interface {
	RecordListChange(action string)
	RecordFollowToggle(follow bool)
	RecordMessageSent(withSpoiler bool)
	RecordUpstream(endpoint string, statusCode int, duration time.Duration)
}

type Collector struct {
	listChanges      *prometheus.CounterVec
	followToggles    *prometheus.CounterVec
	messagesSent     *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
}

// NewCollector registers all reelmate metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		listChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelmate_list_changes_total",
			Help: "Watchlist mutations by action.",
		}, []string{"action"}),
		followToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelmate_follow_toggles_total",
			Help: "Follow and unfollow requests.",
		}, []string{"direction"}),
		messagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelmate_messages_sent_total",
			Help: "Direct messages stored.",
		}, []string{"spoiler"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelmate_upstream_requests_total",
			Help: "Requests to the media metadata API by endpoint and status code.",
		}, []string{"endpoint", "status_code"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reelmate_upstream_latency_seconds",
			Help:    "Latency of media metadata API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	reg.MustRegister(
		c.listChanges,
		c.followToggles,
		c.messagesSent,
		c.upstreamRequests,
		c.upstreamLatency,
	)

	return c
}

func (c *Collector) RecordListChange(action string) {
	c.listChanges.WithLabelValues(action).Inc()
}

func (c *Collector) RecordFollowToggle(follow bool) {
	direction := "unfollow"
	if follow {
		direction = "follow"
	}
	c.followToggles.WithLabelValues(direction).Inc()
}

func (c *Collector) RecordMessageSent(withSpoiler bool) {
	c.messagesSent.WithLabelValues(strconv.FormatBool(withSpoiler)).Inc()
}

// RecordUpstream records one upstream call. statusCode 0 means the request never got a response.
func (c *Collector) RecordUpstream(endpoint string, statusCode int, duration time.Duration) {
	c.upstreamRequests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	c.upstreamLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordListChange(string)                   {}
func (Noop) RecordFollowToggle(bool)                   {}
func (Noop) RecordMessageSent(bool)                    {}
func (Noop) RecordUpstream(string, int, time.Duration) {}
