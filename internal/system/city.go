package system

import (
	coresys "github.com/apocgo/server/internal/core/system"
	"github.com/apocgo/server/internal/world"
)

// CitySystem updates every city in table order.
// Phase 0 (Cities).
type CitySystem struct {
	world *world.State
}

func NewCitySystem(ws *world.State) *CitySystem {
	return &CitySystem{world: ws}
}

func (s *CitySystem) Phase() coresys.Phase { return coresys.PhaseCities }

func (s *CitySystem) Update(ticks uint) {
	s.world.Cities.Each(func(_ string, c *world.City) bool {
		c.Update(s.world, ticks)
		return true
	})
}

// VehicleSystem updates every vehicle in table order.
// Phase 1 (Vehicles).
type VehicleSystem struct {
	world *world.State
}

func NewVehicleSystem(ws *world.State) *VehicleSystem {
	return &VehicleSystem{world: ws}
}

func (s *VehicleSystem) Phase() coresys.Phase { return coresys.PhaseVehicles }

func (s *VehicleSystem) Update(ticks uint) {
	s.world.Vehicles.Each(func(_ string, v *world.Vehicle) bool {
		v.Update(s.world, ticks)
		return true
	})
}

// ClockSystem advances city time and raises the epoch flags.
// Phase 2 (Clock).
type ClockSystem struct {
	world *world.State
}

func NewClockSystem(ws *world.State) *ClockSystem {
	return &ClockSystem{world: ws}
}

func (s *ClockSystem) Phase() coresys.Phase { return coresys.PhaseClock }

func (s *ClockSystem) Update(ticks uint) {
	s.world.Time.AddTicks(ticks)
}
