// Package metrics holds the Prometheus instruments for the deploy pipeline.
// Collectors are registered with the default registry, which the router
// exposes on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DeploysTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_panel_deploys_total",
			Help: "Deploy attempts by outcome.",
		}, []string{"status"})

	DeployDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "site_panel_deploy_duration_seconds",
			Help:    "Wall time of deploy attempts, from upload staging to registry update.",
			Buckets: prometheus.DefBuckets,
		})
)

func init() {
	prometheus.MustRegister(
		DeploysTotal,
		DeployDuration,
	)
}
