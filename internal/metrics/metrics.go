// Package metrics exposes Prometheus instrumentation for the adapter:
// upstream request outcomes, scrape fallbacks and detail-cache behavior.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts catalog API and site fetches by outcome
	// (ok, transport_error, decode_error).
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "librivox",
		Name:      "upstream_requests_total",
		Help:      "Upstream catalog requests by outcome.",
	}, []string{"outcome"})

	// ScrapeFallbacks counts detail resolutions that escalated to the HTML
	// scrape path.
	ScrapeFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "librivox",
		Name:      "scrape_fallbacks_total",
		Help:      "Detail resolutions that fell back to HTML scraping.",
	})

	// CacheHits and CacheMisses track the persisted detail cache, labeled
	// by entity kind (book, reader).
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "librivox",
		Name:      "detail_cache_hits_total",
		Help:      "Detail cache hits by entity kind.",
	}, []string{"kind"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "librivox",
		Name:      "detail_cache_misses_total",
		Help:      "Detail cache misses by entity kind.",
	}, []string{"kind"})
)
