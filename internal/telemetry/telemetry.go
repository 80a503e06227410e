// Package telemetry exposes the live state of a simulation as Prometheus
// metrics.
package telemetry

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/maglev/internal/dynamo"
)

const namespace = "maglev"

// Collector records every sample it observes. Attach it with
// Simulation.AddObserver; step failures are counted through OnError.
type Collector struct {
	registry *prometheus.Registry

	position prometheus.Gauge
	velocity prometheus.Gauge
	measured prometheus.Gauge
	setpoint prometheus.Gauge
	output   prometheus.Gauge
	drive    prometheus.Gauge
	force    prometheus.Gauge
	simTime  prometheus.Gauge

	steps      prometheus.Counter
	stepErrors *prometheus.CounterVec
	trackError prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}

	return &Collector{
		registry: reg,
		position: gauge("ball_position_meters", "True ball position."),
		velocity: gauge("ball_velocity_meters_per_second", "True ball velocity."),
		measured: gauge("sensor_position_meters", "Last sensor reading."),
		setpoint: gauge("setpoint_meters", "Current setpoint."),
		output:   gauge("controller_output", "Last PID output."),
		drive:    gauge("actuator_drive", "Drive after rate and saturation limits."),
		force:    gauge("attractor_force_newtons", "Force applied by the attractor."),
		simTime:  gauge("simulated_time_seconds", "Simulated time of the last sample."),
		steps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Completed simulation steps.",
		}),
		stepErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_errors_total",
			Help:      "Rejected or failed simulation steps by kind.",
		}, []string{"kind"}),
		trackError: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tracking_error_meters",
			Help:      "Absolute distance between ball and setpoint.",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 2, 14),
		}),
	}
}

func (c *Collector) OnSample(s dynamo.Sample) {
	c.position.Set(s.Position)
	c.velocity.Set(s.Velocity)
	c.measured.Set(s.Measured)
	c.setpoint.Set(s.Setpoint)
	c.output.Set(s.Output)
	c.drive.Set(s.Drive)
	c.force.Set(s.Force)
	c.simTime.Set(s.Time)
	c.steps.Inc()
	c.trackError.Observe(math.Abs(s.Error()))
}

func (c *Collector) OnError(err error) {
	c.stepErrors.WithLabelValues(errorKind(err)).Inc()
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, dynamo.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, dynamo.ErrNumericInstability):
		return "numeric_instability"
	default:
		return "other"
	}
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
