package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Load and command results.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultStale = "stale"
)

// Collector receives dashboard telemetry. Calls happen inline with polls
// and commands, so implementations must be cheap.
type Collector interface {
	IncLoad(result string)
	IncCommand(action, result string)
	SetZones(n int)
}

type noopCollector struct{}

// Noop returns a collector that discards everything.
func Noop() Collector {
	return noopCollector{}
}

func (noopCollector) IncLoad(string)            {}
func (noopCollector) IncCommand(string, string) {}
func (noopCollector) SetZones(int)              {}

// PrometheusCollector exposes dashboard counters via Prometheus.
type PrometheusCollector struct {
	loads    *prometheus.CounterVec
	commands *prometheus.CounterVec
	zones    prometheus.Gauge
}

// NewPrometheusCollector registers the dashboard metrics with reg, or with
// the default registerer when reg is nil. Metrics already registered by an
// earlier call are reused.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	loads, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "garden_panel_zone_loads_total",
		Help: "Zone list fetches by result (ok, error, stale).",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}

	commands, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "garden_panel_zone_commands_total",
		Help: "Start/stop commands sent to the garden controller by result.",
	}, []string{"action", "result"}))
	if err != nil {
		return nil, err
	}

	var zones prometheus.Gauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "garden_panel_zones",
		Help: "Number of zone panels known to the dashboard.",
	})
	if err := reg.Register(zones); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		existing, ok := already.ExistingCollector.(prometheus.Gauge)
		if !ok {
			return nil, err
		}
		zones = existing
	}

	return &PrometheusCollector{loads: loads, commands: commands, zones: zones}, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		return existing, nil
	}
	return c, nil
}

func (c *PrometheusCollector) IncLoad(result string) {
	c.loads.WithLabelValues(result).Inc()
}

func (c *PrometheusCollector) IncCommand(action, result string) {
	c.commands.WithLabelValues(action, result).Inc()
}

func (c *PrometheusCollector) SetZones(n int) {
	c.zones.Set(float64(n))
}
