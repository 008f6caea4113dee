package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the service.
type Metrics struct {
	PersonsCreated   prometheus.Counter
	PersonsUpdated   prometheus.Counter
	PersonsDeleted   prometheus.Counter
	CountriesCreated prometheus.Counter
	Exports          *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. Tests pass a fresh prometheus.NewRegistry()
// so that repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PersonsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "persons_service_persons_created_total",
			Help: "Total number of persons created",
		}),
		PersonsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "persons_service_persons_updated_total",
			Help: "Total number of persons updated",
		}),
		PersonsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "persons_service_persons_deleted_total",
			Help: "Total number of persons deleted",
		}),
		CountriesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "persons_service_countries_created_total",
			Help: "Total number of countries created",
		}),
		Exports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "persons_service_exports_total",
			Help: "Total number of person exports by format",
		}, []string{"format"}),
	}
}

// IncrementExports counts one export in the given format ("csv" or "xlsx").
func (m *Metrics) IncrementExports(format string) {
	m.Exports.WithLabelValues(format).Inc()
}
