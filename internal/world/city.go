package world

import (
	"github.com/apocgo/server/internal/core/state"
	"go.uber.org/zap"
)

// DefaultPortalCount is how many portals GeneratePortals opens.
const DefaultPortalCount = 5

// projectileHitRadius is how close a shot must pass to hit a vehicle.
const projectileHitRadius = 1.0

// portalRange bounds random positions when a city has no size.
const (
	portalRangeMin = 20
	portalRangeMax = 120
)

// Portal is a dimension gate on a city map, the entry point of alien ships.
type Portal struct {
	ID       string
	Position Vec3
}

type SceneryTileType struct {
	ID           string
	Name         string
	Constitution int
	// Repairable tiles regain constitution on the hourly loop.
	Repairable bool
}

// InitialTile is a content-defined scenery placement instantiated on a new
// game.
type InitialTile struct {
	Position Vec3i
	Type     state.Ref[SceneryTileType]
}

type Scenery struct {
	ID       string
	Type     state.Ref[SceneryTileType]
	Position Vec3
	Building state.Ref[Building]
	Health   int
	Damaged  bool
}

// Projectile is an in-flight shot on a city map.
type Projectile struct {
	ID       string
	Position Vec3
	Velocity Vec3 // tiles per tick
	TTL      uint
	Damage   int
	Firer    state.Ref[Vehicle]
	// TrackedVehicle is the guided target, if any.
	TrackedVehicle state.Ref[Vehicle]
	// TrackedID is the persisted target id relinked into TrackedVehicle.
	TrackedID string
}

type City struct {
	ID   string
	Name string
	Size Vec3i

	Portals      []*Portal
	Scenery      []*Scenery
	InitialTiles []InitialTile
	Projectiles  []*Projectile

	// Map is the spatial collaborator; built by InitMap.
	Map TileMap
}

// HasProjectiles reports whether any shot is in flight.
func (c *City) HasProjectiles() bool { return len(c.Projectiles) > 0 }

// InitMap builds the spatial map if needed and places scenery and
// projectiles on it. Vehicles are placed by the caller.
func (c *City) InitMap(s *State) {
	if c.Map == nil {
		c.Map = s.NewMap()
	}
	for _, sc := range c.Scenery {
		c.Map.AddObject(ObjectScenery, sc.ID, sc.Position)
	}
	for _, p := range c.Projectiles {
		c.Map.AddObject(ObjectProjectile, p.ID, p.Position)
	}
}

// GeneratePortals opens n portals at random positions within the city.
func (c *City) GeneratePortals(s *State, n int) {
	maxX, maxY := portalRangeMax, portalRangeMax
	if c.Size.X > portalRangeMin*2 && c.Size.Y > portalRangeMin*2 {
		maxX, maxY = c.Size.X-portalRangeMin, c.Size.Y-portalRangeMin
	}
	for i := 0; i < n; i++ {
		z := float64(c.Size.Z - 1)
		if c.Size.Z <= 0 {
			z = 0
		}
		c.Portals = append(c.Portals, &Portal{
			ID: s.IDs.NewID("PORTAL_"),
			Position: Vec3{
				X: float64(randRange(s, portalRangeMin, maxX)),
				Y: float64(randRange(s, portalRangeMin, maxY)),
				Z: z,
			},
		})
	}
	s.Log.Debug("portals generated", zap.String("city", c.ID), zap.Int("count", n))
}

// Update advances projectiles. Guided shots steer toward their target.
// Shots that expire or hit a vehicle leave the map.
func (c *City) Update(s *State, ticks uint) {
	if len(c.Projectiles) == 0 {
		return
	}
	live := c.Projectiles[:0]
	for _, p := range c.Projectiles {
		if p.TTL <= ticks {
			if c.Map != nil {
				c.Map.RemoveObject(ObjectProjectile, p.ID)
			}
			continue
		}
		p.TTL -= ticks
		if v, ok := p.TrackedVehicle.Get(); ok {
			speed := p.Velocity.Length()
			dir := v.Position.Sub(p.Position)
			if l := dir.Length(); l > 0 && speed > 0 {
				p.Velocity = dir.Scale(speed / l)
			}
		}
		p.Position = p.Position.Add(p.Velocity.Scale(float64(ticks)))
		if c.Map != nil {
			if c.impact(s, p) {
				c.Map.RemoveObject(ObjectProjectile, p.ID)
				continue
			}
			c.Map.MoveObject(ObjectProjectile, p.ID, p.Position)
		}
		live = append(live, p)
	}
	for i := len(live); i < len(c.Projectiles); i++ {
		c.Projectiles[i] = nil
	}
	c.Projectiles = live
}

// impact damages the first vehicle within hit range of the shot, other than
// its firer, and reports whether the shot was spent.
func (c *City) impact(s *State, p *Projectile) bool {
	for _, id := range c.Map.Nearby(ObjectVehicle, p.Position) {
		if id == p.Firer.ID() {
			continue
		}
		v, ok := s.Vehicles.Lookup(id)
		if !ok || v.Crashed || v.Position.Sub(p.Position).Length() > projectileHitRadius {
			continue
		}
		v.ApplyDamage(s, p.Damage)
		return true
	}
	return false
}

// HourlyLoop repairs damaged scenery.
func (c *City) HourlyLoop(s *State) {
	for _, sc := range c.Scenery {
		if !sc.Damaged {
			continue
		}
		t, ok := sc.Type.Get()
		if !ok || !t.Repairable {
			continue
		}
		sc.Health += t.Constitution/4 + 1
		if sc.Health >= t.Constitution {
			sc.Health = t.Constitution
			sc.Damaged = false
		}
	}
}

// DailyLoop pays every building's income to its owner.
func (c *City) DailyLoop(s *State) {
	s.Buildings.Each(func(_ string, b *Building) bool {
		if b.City.ID() != c.ID {
			return true
		}
		owner, ok := b.Owner.Get()
		if !ok {
			return true
		}
		owner.AddBalance(s.Rules.BuildingIncome(b))
		return true
	})
}

// BuildingAt returns the building whose bounds contain the tile, if any.
func (c *City) BuildingAt(s *State, x, y int) state.Ref[Building] {
	var found state.Ref[Building]
	s.Buildings.Each(func(id string, b *Building) bool {
		if b.City.ID() == c.ID && b.Bounds.Within(x, y) {
			found = s.Buildings.Ref(id)
			return false
		}
		return true
	})
	return found
}

// randRange returns a value in [lo, hi].
func randRange(s *State, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.Rng.Intn(hi-lo+1)
}
