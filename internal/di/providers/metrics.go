package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"

	"github.com/listenupapp/bookshelf-server/internal/metrics"
)

// ProvideMetrics provides the Prometheus metrics on a private registry.
func ProvideMetrics(_ do.Injector) (*metrics.Metrics, error) {
	return metrics.New(prometheus.NewRegistry()), nil
}
