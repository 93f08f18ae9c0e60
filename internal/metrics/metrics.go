// Package metrics exposes Prometheus counters for the feed poll loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FeedFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "news_alert_feed_fetches_total",
		Help: "Feed downloads attempted by the poll loop",
	})
	FeedFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "news_alert_feed_fetch_errors_total",
		Help: "Feed downloads that failed after retries",
	})
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "news_alert_feed_fetch_duration_seconds",
		Help:    "Time spent downloading and parsing a feed, retries included",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms doubling to ~25s
	})
	StoriesEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "news_alert_stories_evaluated_total",
		Help: "Stories run through the active triggers",
	})
	StoriesMatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "news_alert_stories_matched_total",
		Help: "Stories that at least one trigger fired on",
	})
	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "news_alert_notifications_sent_total",
		Help: "Alerts delivered to chats",
	})
	RuleReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_alert_rule_reloads_total",
		Help: "Rule file reloads by outcome",
	}, []string{"result"})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveReload counts a rule reload attempt.
func ObserveReload(err error) {
	if err != nil {
		RuleReloads.WithLabelValues("error").Inc()
		return
	}
	RuleReloads.WithLabelValues("ok").Inc()
}
