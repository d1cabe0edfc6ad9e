// Package metrics exports frame and orbit metrics to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-orrery/internal/anim"
)

const namespace = "orrery"

// Collector records animation loop outcomes. It satisfies anim.Observer.
type Collector struct {
	registry *prometheus.Registry

	framesTotal   prometheus.Counter
	faultsTotal   *prometheus.CounterVec
	frameDuration prometheus.Histogram
	distance      prometheus.Gauge
	reloadsTotal  *prometheus.CounterVec
}

var _ anim.Observer = (*Collector)(nil)

// NewCollector creates a collector on its own registry.
func NewCollector() *Collector {
	m := &Collector{
		registry: prometheus.NewRegistry(),
		framesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Total number of rendered frames",
		}),
		faultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frame_faults_total",
				Help:      "Frames that halted the animation loop",
			},
			[]string{"kind"},
		),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent updating and rendering a frame",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .0166, .025, .05, .1},
		}),
		distance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "asteroid_earth_distance_au",
			Help:      "Distance from the asteroid to Earth in the last frame",
		}),
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Configuration reloads by result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(m.framesTotal)
	m.registry.MustRegister(m.faultsTotal)
	m.registry.MustRegister(m.frameDuration)
	m.registry.MustRegister(m.distance)
	m.registry.MustRegister(m.reloadsTotal)

	return m
}

// Registry returns the collector's registry.
func (m *Collector) Registry() *prometheus.Registry { return m.registry }

// FrameRendered records a completed frame.
func (m *Collector) FrameRendered(elapsed time.Duration, distanceAU float64) {
	m.framesTotal.Inc()
	m.frameDuration.Observe(elapsed.Seconds())
	m.distance.Set(distanceAU)
}

// FrameFaulted records a frame that halted the loop.
func (m *Collector) FrameFaulted(err error) {
	kind := "render"
	if errors.Is(err, anim.ErrFrameFault) {
		kind = "panic"
	}
	m.faultsTotal.WithLabelValues(kind).Inc()
}

// ConfigReloaded records a config reload attempt.
func (m *Collector) ConfigReloaded(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reloadsTotal.WithLabelValues(result).Inc()
}

// Handler returns the /metrics HTTP handler.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}
