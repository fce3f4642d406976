package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler for the Prometheus metrics endpoint,
// mounted at MetricsConfig.Path (typically "/metrics").
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			// Prefer OpenMetrics when the scraper asks for it.
			EnableOpenMetrics: true,

			// A broken collector should not hide the rest.
			ErrorHandling: promhttp.ContinueOnError,
		},
	)
}

