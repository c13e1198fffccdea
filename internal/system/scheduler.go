package system

import (
	"context"
	"time"

	"github.com/apocgo/server/internal/core/event"
	coresys "github.com/apocgo/server/internal/core/system"
	"github.com/apocgo/server/internal/observability"
	"github.com/apocgo/server/internal/world"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/apocgo/server/internal/system"

// Scheduler advances the world. Outside battle it runs the city timeline
// through the phase runner; during battle only the battle collaborator
// and the battle clock move.
type Scheduler struct {
	world   *world.State
	cfg     Config
	runner  *coresys.Runner
	metrics *observability.SchedulerCollector
	tracer  trace.Tracer

	// ctx parents the phase spans of the update in progress.
	ctx context.Context
}

// NewScheduler wires the city-timeline systems. metrics may be nil.
func NewScheduler(ws *world.State, cfg Config, metrics *observability.SchedulerCollector) *Scheduler {
	sc := &Scheduler{
		world:   ws,
		cfg:     cfg,
		runner:  coresys.NewRunner(),
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
		ctx:     context.Background(),
	}
	sc.runner.Register(NewCitySystem(ws))
	sc.runner.Register(NewVehicleSystem(ws))
	sc.runner.Register(NewClockSystem(ws))
	sc.runner.Register(NewEpochSystem(ws, cfg, metrics))
	sc.runner.Register(NewCleanupSystem(ws))
	sc.runner.Observe = sc.observe

	if metrics != nil {
		event.Subscribe(ws.Bus, func(ev event.GameEvent) {
			metrics.IncGameEvent(ev.Kind.String())
		})
	}
	return sc
}

// Register adds an optional city-timeline system such as persistence.
func (sc *Scheduler) Register(s coresys.System) {
	sc.runner.Register(s)
}

func (sc *Scheduler) observe(s coresys.System, run func()) {
	phase := s.Phase().String()
	_, span := sc.tracer.Start(sc.ctx, "phase."+phase)
	start := time.Now()
	run()
	sc.metrics.ObservePhase(phase, time.Since(start))
	span.End()
}

// Update advances the world by ticks. It runs to completion.
func (sc *Scheduler) Update(ticks uint) {
	ws := sc.world
	start := time.Now()
	ctx, span := sc.tracer.Start(context.Background(), "scheduler.update",
		trace.WithAttributes(
			attribute.Int64("ticks", int64(ticks)),
			attribute.Bool("battle", ws.InBattle()),
		))
	defer span.End()

	if ws.InBattle() {
		ws.EnterBattleTimeline()
		ws.Battle.Update(ws, ticks)
		ws.Time.AddTicks(ticks)
		// The battle clock raises no city epochs.
		ws.Time.ClearFlags()
	} else {
		if ws.LeaveBattleTimeline() {
			ws.Log.Debug("city time restored after battle", zap.Stringer("time", ws.Time))
		}
		sc.ctx = ctx
		sc.runner.Tick(ticks)
		sc.ctx = context.Background()
	}
	sc.metrics.ObserveUpdate(ticks, time.Since(start))
}

// UpdateOne advances a single tick.
func (sc *Scheduler) UpdateOne() {
	sc.Update(1)
}

// UpdateTurbo advances to the next five-minute boundary, or a full five
// minutes when already aligned. Callers must check CanTurbo first.
func (sc *Scheduler) UpdateTurbo() {
	if !sc.CanTurbo() {
		sc.world.Log.Error("turbo update called while turbo is not allowed")
	}
	align := uint(sc.world.Time.Ticks() % world.TurboTicks)
	sc.Update(world.TurboTicks - align)
}

// CanTurbo reports whether the viewed city is free of hazards: no shots in
// flight and no active hostile armed vehicle.
func (sc *Scheduler) CanTurbo() bool {
	ws := sc.world
	city, ok := ws.CurrentCity.Get()
	if !ok {
		return true
	}
	if city.HasProjectiles() {
		return false
	}
	allowed := true
	ws.Vehicles.Each(func(_ string, v *world.Vehicle) bool {
		if v.City.ID() != city.ID || !v.OnMap || v.IsCrashed() {
			return true
		}
		t, ok := v.Type.Get()
		if !ok || t.Aggressiveness <= 0 {
			return true
		}
		owner, ok := v.Owner.Get()
		if !ok {
			return true
		}
		if owner.IsRelatedTo(ws.PlayerID) == world.RelationHostile {
			allowed = false
			return false
		}
		return true
	})
	return allowed
}
