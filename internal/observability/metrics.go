package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SchedulerCollector exposes world-scheduler metrics. A nil collector is
// valid and records nothing.
type SchedulerCollector struct {
	gatherer prometheus.Gatherer

	TicksTotal     prometheus.Counter
	UpdateDuration prometheus.Histogram
	PhaseDuration  *prometheus.HistogramVec
	EpochsTotal    *prometheus.CounterVec
	GameEvents     *prometheus.CounterVec
	Entities       *prometheus.GaugeVec
}

var durationBuckets = []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1}

// NewSchedulerCollector registers scheduler metrics against the provided registerer.
func NewSchedulerCollector(reg prometheus.Registerer) (*SchedulerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "world_ticks_total",
		Help: "Game ticks advanced by the world scheduler.",
	})
	if err := register(reg, ticks, "world_ticks_total"); err != nil {
		return nil, err
	}

	update := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "world_update_duration_seconds",
		Help:    "Wall time spent in one scheduler update.",
		Buckets: durationBuckets,
	})
	if err := register(reg, update, "world_update_duration_seconds"); err != nil {
		return nil, err
	}

	phase := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "world_phase_duration_seconds",
		Help:    "Wall time spent per scheduler phase.",
		Buckets: durationBuckets,
	}, []string{"phase"})
	if err := register(reg, phase, "world_phase_duration_seconds"); err != nil {
		return nil, err
	}

	epochs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "world_epochs_total",
		Help: "Epoch cascades fired, by epoch.",
	}, []string{"epoch"})
	if err := register(reg, epochs, "world_epochs_total"); err != nil {
		return nil, err
	}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "world_game_events_total",
		Help: "Game events delivered, by kind.",
	}, []string{"kind"})
	if err := register(reg, events, "world_game_events_total"); err != nil {
		return nil, err
	}

	entities := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "world_entities",
		Help: "Entities held per state table.",
	}, []string{"table"})
	if err := register(reg, entities, "world_entities"); err != nil {
		return nil, err
	}

	return &SchedulerCollector{
		gatherer:       gatherer,
		TicksTotal:     ticks,
		UpdateDuration: update,
		PhaseDuration:  phase,
		EpochsTotal:    epochs,
		GameEvents:     events,
		Entities:       entities,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *SchedulerCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *SchedulerCollector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// ObserveUpdate records one scheduler update.
func (c *SchedulerCollector) ObserveUpdate(ticks uint, d time.Duration) {
	if c == nil {
		return
	}
	c.TicksTotal.Add(float64(ticks))
	c.UpdateDuration.Observe(d.Seconds())
}

func (c *SchedulerCollector) ObservePhase(phase string, d time.Duration) {
	if c == nil {
		return
	}
	c.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (c *SchedulerCollector) IncEpoch(epoch string) {
	if c == nil {
		return
	}
	c.EpochsTotal.WithLabelValues(epoch).Inc()
}

func (c *SchedulerCollector) IncGameEvent(kind string) {
	if c == nil {
		return
	}
	c.GameEvents.WithLabelValues(kind).Inc()
}

func (c *SchedulerCollector) SetEntities(table string, n int) {
	if c == nil {
		return
	}
	c.Entities.WithLabelValues(table).Set(float64(n))
}

// register names the metric in a duplicate registration error.
func register(reg prometheus.Registerer, c prometheus.Collector, name string) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return fmt.Errorf("collector %s already registered", name)
		}
		return err
	}
	return nil
}
