package system

import (
	"testing"

	"github.com/apocgo/server/internal/core/event"
	"github.com/apocgo/server/internal/observability"
	"github.com/apocgo/server/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSchedulerRecordsMetrics(t *testing.T) {
	ws, _ := newTestWorld(t, nil)
	InitState(ws)
	ws.Bus.Flush()
	ws.Time = world.NewGameTime(world.TicksPerHour - 1)

	c, err := observability.NewSchedulerCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	sc := NewScheduler(ws, DefaultConfig(), c)
	sc.Update(1)
	sc.Update(9)

	if got := testutil.ToFloat64(c.TicksTotal); got != 10 {
		t.Fatalf("ticks = %v, want 10", got)
	}
	if got := testutil.ToFloat64(c.EpochsTotal.WithLabelValues("hour")); got != 1 {
		t.Fatalf("hour epochs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.EpochsTotal.WithLabelValues("five_minutes")); got != 1 {
		t.Fatalf("five minute epochs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Entities.WithLabelValues("buildings")); got != 2 {
		t.Fatalf("building gauge = %v, want 2", got)
	}

	ws.Emit(event.GameEvent{Kind: event.KindAlienDetected, Text: "Aliens detected"})
	ws.Bus.Flush()
	if got := testutil.ToFloat64(c.GameEvents.WithLabelValues("alien_detected")); got != 1 {
		t.Fatalf("game events = %v, want 1", got)
	}
}
