package system

import (
	"math"

	"github.com/apocgo/server/internal/world"
	"go.uber.org/zap"
)

// InitState derives the runtime caches of a loaded or freshly started
// world. Running it again on the same state changes nothing.
func InitState(ws *world.State) {
	if ws.Battle != nil {
		ws.Battle.Init(ws)
	}
	if ws.CurrentCity.IsEmpty() && ws.Cities.Has(ws.HumanCityID) {
		ws.CurrentCity = ws.Cities.Ref(ws.HumanCityID)
	}

	ws.Cities.Each(func(id string, c *world.City) bool {
		c.InitMap(ws)
		for _, vid := range ws.VehiclesIn(id) {
			v, ok := ws.Vehicles.Lookup(vid)
			if !ok || v.Landed() {
				continue
			}
			c.Map.AddObject(world.ObjectVehicle, v.ID, v.Position)
			v.OnMap = true
		}
		for _, p := range c.Projectiles {
			if p.TrackedID != "" {
				p.TrackedVehicle = ws.Vehicles.Ref(p.TrackedID)
			}
		}
		if len(c.Portals) == 0 {
			c.GeneratePortals(ws, world.DefaultPortalCount)
		}
		for _, sc := range c.Scenery {
			sc.Building = c.BuildingAt(ws, int(math.Floor(sc.Position.X)), int(math.Floor(sc.Position.Y)))
		}
		return true
	})

	linkAmmo(ws)

	if ws.GravLiftSample != "" {
		ws.AgentTypes.Each(func(_ string, t *world.AgentType) bool {
			t.GravLiftSfx = ws.GravLiftSample
			return true
		})
	}

	ws.Agents.Each(func(_ string, a *world.Agent) bool {
		a.UpdateHands()
		return true
	})

	ws.UpdateTopicList()
	ws.Log.Info("world state initialised",
		zap.Int("cities", ws.Cities.Len()),
		zap.Int("vehicles", ws.Vehicles.Len()),
		zap.Int("agents", ws.Agents.Len()),
	)
}

// linkAmmo rebuilds every weapon's ammo list from the ammo types' weapon
// lists.
func linkAmmo(ws *world.State) {
	ws.AEquipmentTypes.Each(func(_ string, t *world.AEquipmentType) bool {
		t.AmmoTypes = nil
		return true
	})
	ws.AEquipmentTypes.Each(func(id string, ammo *world.AEquipmentType) bool {
		for _, w := range ammo.WeaponTypes {
			weapon, ok := w.Get()
			if !ok {
				continue
			}
			weapon.AmmoTypes = append(weapon.AmmoTypes, ws.AEquipmentTypes.Ref(id))
		}
		return true
	})
}
