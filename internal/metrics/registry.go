package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	gerrors "github.com/felixgeelhaar/secgate/internal/errors"
)

// Registry pairs a private Prometheus registry with the gate metrics
// registered on it. Each evaluation gets its own registry so that the
// textfile contains only gate metrics.
type Registry struct {
	reg *prometheus.Registry
	*Metrics
}

// NewRegistry creates a new Prometheus registry with metrics
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	return &Registry{reg: reg, Metrics: NewMetrics(reg)}
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile writes all metrics in the text exposition format for the
// node_exporter textfile collector. The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return gerrors.NewFileWriteError(path, err)
	}
	return nil
}
