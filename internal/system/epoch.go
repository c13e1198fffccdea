package system

import (
	"github.com/apocgo/server/internal/core/event"
	coresys "github.com/apocgo/server/internal/core/system"
	"github.com/apocgo/server/internal/observability"
	"github.com/apocgo/server/internal/world"
	"go.uber.org/zap"
)

// EpochSystem fires the five-minute, hour, day and week cascades, in that
// order, for every boundary the clock crossed during this update. A
// boundary fires once per update however many were crossed.
// Phase 3 (Epoch).
type EpochSystem struct {
	world   *world.State
	cfg     Config
	metrics *observability.SchedulerCollector
}

func NewEpochSystem(ws *world.State, cfg Config, metrics *observability.SchedulerCollector) *EpochSystem {
	return &EpochSystem{world: ws, cfg: cfg, metrics: metrics}
}

func (s *EpochSystem) Phase() coresys.Phase { return coresys.PhaseEpoch }

func (s *EpochSystem) Update(_ uint) {
	t := s.world.Time
	if t.FiveMinutesPassed() {
		s.metrics.IncEpoch("five_minutes")
		s.endOfFiveMinutes()
		for _, tbl := range s.world.Reg.Tables() {
			s.metrics.SetEntities(tbl.Name(), tbl.Len())
		}
	}
	if t.HourPassed() {
		s.metrics.IncEpoch("hour")
		s.endOfHour()
	}
	if t.DayPassed() {
		s.metrics.IncEpoch("day")
		s.endOfDay()
	}
	if t.WeekPassed() {
		s.metrics.IncEpoch("week")
		s.endOfWeek()
	}
}

func (s *EpochSystem) endOfFiveMinutes() {
	ws := s.world
	oneEvent := s.cfg.Cascade.OneEventPerEpoch

	ws.Organisations.Each(func(_ string, o *world.Organisation) bool {
		if o.TakenOver {
			return true
		}
		return !(o.UpdateTakeOver(ws, world.TurboTicks) && oneEvent)
	})

	city, ok := ws.CurrentCity.Get()
	if !ok {
		return
	}
	ws.Buildings.Each(func(_ string, b *world.Building) bool {
		if b.City.ID() != city.ID {
			return true
		}
		wasDetected := b.Detected()
		b.UpdateDetection(ws, world.TurboTicks)
		return !(b.Detected() && !wasDetected && oneEvent)
	})
}

func (s *EpochSystem) endOfHour() {
	ws := s.world
	ws.ResearchLabs.Each(func(_ string, l *world.ResearchLab) bool {
		l.Update(ws, world.TicksPerHour)
		return true
	})
	ws.Cities.Each(func(_ string, c *world.City) bool {
		c.HourlyLoop(ws)
		return true
	})
	ws.Organisations.Each(func(_ string, o *world.Organisation) bool {
		o.UpdateInfiltration(ws)
		return true
	})
}

func (s *EpochSystem) endOfDay() {
	ws := s.world
	ws.Bases.Each(func(_ string, b *world.Base) bool {
		for _, f := range b.Facilities {
			if f.BuildTime <= 0 {
				continue
			}
			f.BuildTime--
			if f.BuildTime == 0 {
				ws.Emit(world.NewFacilityEvent(event.KindFacilityCompleted, b, f))
			}
		}
		return true
	})
	ws.Cities.Each(func(_ string, c *world.City) bool {
		c.DailyLoop(ws)
		return true
	})
	spawnIncursions(ws, s.cfg)
}

func (s *EpochSystem) endOfWeek() {
	ws := s.world
	week := ws.Time.Week()
	growth, ok := ws.UFOGrowth.Lookup(world.UFOGrowthID(ws.Difficulty, week))
	if !ok {
		growth, ok = ws.UFOGrowth.Lookup(world.UFOGrowthID(ws.Difficulty, 0))
	}
	if !ok || len(growth.Entries) == 0 {
		ws.Log.Error("no ufo growth for week", zap.Int("week", week), zap.Int("difficulty", ws.Difficulty))
		return
	}
	spawnGrowth(ws, growth)
}
