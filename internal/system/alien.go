package system

import (
	"github.com/apocgo/server/internal/core/event"
	"github.com/apocgo/server/internal/core/state"
	"github.com/apocgo/server/internal/world"
	"go.uber.org/zap"
)

// growthRange bounds where weekly alien ships appear in the alien city.
const (
	growthRangeMin = 20
	growthRangeMax = 120
)

// friendlyToPlayer reports whether the building's owner is the player or
// regards the player as friend or ally.
func friendlyToPlayer(ws *world.State, b *world.Building) bool {
	if b.Owner.ID() == ws.PlayerID {
		return true
	}
	owner, ok := b.Owner.Get()
	if !ok {
		return false
	}
	switch owner.IsRelatedTo(ws.PlayerID) {
	case world.RelationAllied, world.RelationFriendly:
		return true
	}
	return false
}

// pickAlienTarget rolls a random building of the city, re-rolling while the
// pick is friendly to the player. It gives up after attempts rolls.
func pickAlienTarget(ws *world.State, cityID string, attempts int) (state.Ref[world.Building], bool) {
	ids := ws.BuildingsIn(cityID)
	if len(ids) == 0 {
		return state.None[world.Building](), false
	}
	for i := 0; i < attempts; i++ {
		id := ids[ws.Rng.Intn(len(ids))]
		b, ok := ws.Buildings.Lookup(id)
		if !ok {
			continue
		}
		if !friendlyToPlayer(ws, b) {
			return ws.Buildings.Ref(id), true
		}
	}
	return state.None[world.Building](), false
}

// spawnIncursions sends the daily alien ships through random portals of the
// human city, each to infiltrate a building.
func spawnIncursions(ws *world.State, cfg Config) {
	if cfg.AlienIncursionsPerDay <= 0 {
		return
	}
	city, ok := ws.Cities.Lookup(ws.HumanCityID)
	if !ok {
		ws.Log.Error("human city missing", zap.String("city", ws.HumanCityID))
		return
	}
	typeRef := ws.VehicleTypes.Ref(cfg.IncursionVehicleType)
	if !ws.VehicleTypes.Has(cfg.IncursionVehicleType) {
		ws.Log.Error("incursion vehicle type missing", zap.String("type", cfg.IncursionVehicleType))
		return
	}
	if len(city.Portals) == 0 {
		ws.Log.Error("no portals for alien incursion", zap.String("city", city.ID))
		return
	}
	cityRef := ws.Cities.Ref(city.ID)

	for i := 0; i < cfg.AlienIncursionsPerDay; i++ {
		portal := city.Portals[ws.Rng.Intn(len(city.Portals))]
		target, ok := pickAlienTarget(ws, city.ID, cfg.IncursionAttempts)
		if !ok {
			continue
		}
		v, err := ws.CreateVehicle(typeRef, ws.Aliens(), cityRef)
		if err != nil {
			ws.Log.Error("spawn incursion vehicle", zap.Error(err))
			return
		}
		v.EquipDefaultEquipment(ws)
		v.Launch(ws, portal.Position)
		v.Missions = append(v.Missions, world.NewInfiltrateMission(target))

		ev := world.NewVehicleEvent(event.KindUfoSpotted, v)
		ev.SecondaryID = target.ID()
		ws.Emit(ev)
	}
}

// spawnGrowth launches the week's alien ships on patrol in the alien city.
func spawnGrowth(ws *world.State, growth *world.UFOGrowth) {
	city, ok := ws.Cities.Lookup(ws.AlienCityID)
	if !ok {
		ws.Log.Error("alien city missing", zap.String("city", ws.AlienCityID))
		return
	}
	cityRef := ws.Cities.Ref(city.ID)
	z := 0.0
	if city.Size.Z > 0 {
		z = float64(city.Size.Z - 1)
	}
	for _, e := range growth.Entries {
		if !ws.VehicleTypes.Has(e.Type.ID()) {
			ws.Log.Error("unknown ufo growth vehicle type",
				zap.String("growth", growth.ID), zap.String("type", e.Type.ID()))
			continue
		}
		for n := 0; n < e.Count; n++ {
			v, err := ws.CreateVehicle(e.Type, ws.Aliens(), cityRef)
			if err != nil {
				ws.Log.Error("spawn growth vehicle", zap.Error(err))
				break
			}
			v.EquipDefaultEquipment(ws)
			v.Launch(ws, world.Vec3{
				X: float64(growthRangeMin + ws.Rng.Intn(growthRangeMax-growthRangeMin+1)),
				Y: float64(growthRangeMin + ws.Rng.Intn(growthRangeMax-growthRangeMin+1)),
				Z: z,
			})
			v.Missions = append(v.Missions, world.NewPatrolMission())
		}
	}
	ws.Log.Debug("ufo growth spawned", zap.String("growth", growth.ID))
}
