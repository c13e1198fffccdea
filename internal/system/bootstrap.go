package system

import (
	"errors"
	"fmt"
	"sort"

	"github.com/apocgo/server/internal/core/event"
	"github.com/apocgo/server/internal/core/state"
	"github.com/apocgo/server/internal/world"
	"go.uber.org/zap"
)

// ErrNoBaseLayout is returned when no building of the human city can host
// the starting base.
var ErrNoBaseLayout = errors.New("no building with a base layout")

// startingVehicleEquipment is how many of each vehicle equipment type the
// starting base is stocked with.
const startingVehicleEquipment = 10

// StartGame sets up a new game on freshly loaded content: jittered attempt
// accumulators, scenery, civilian traffic, an alien crew, and midday.
func StartGame(ws *world.State, cfg Config) {
	ws.Organisations.Each(func(_ string, o *world.Organisation) bool {
		o.TicksTakeOverAttemptAccumulated = uint(ws.Rng.Intn(world.TicksPerTakeoverAttempt))
		return true
	})
	interval := int(world.DetectionInterval(ws.Difficulty))
	ws.Buildings.Each(func(_ string, b *world.Building) bool {
		b.TicksDetectionAttemptAccumulated = uint(ws.Rng.Intn(interval))
		return true
	})

	ws.Cities.Each(func(_ string, c *world.City) bool {
		for _, tile := range c.InitialTiles {
			t, ok := tile.Type.Get()
			if !ok {
				continue
			}
			c.Scenery = append(c.Scenery, &world.Scenery{
				ID:       ws.IDs.NewID("SCENERY_"),
				Type:     tile.Type,
				Position: tile.Position.Float(),
				Health:   t.Constitution,
			})
		}
		return true
	})

	spawnStartingVehicles(ws, cfg)
	placeAlienCrew(ws, cfg)

	ws.Time = world.Midday()
	ws.NewGame = true
	ws.FirstDetection = true
	ws.Log.Info("new game started", zap.Int("difficulty", ws.Difficulty), zap.Int("vehicles", ws.Vehicles.Len()))
}

// spawnStartingVehicles parks rounds of every non-player flying vehicle
// type across the human city's buildings, round-robin.
func spawnStartingVehicles(ws *world.State, cfg Config) {
	buildings := ws.BuildingsIn(ws.HumanCityID)
	if len(buildings) == 0 {
		ws.Log.Error("human city has no buildings for starting vehicles", zap.String("city", ws.HumanCityID))
		return
	}
	cityRef := ws.Cities.Ref(ws.HumanCityID)
	next := 0
	for round := 0; round < cfg.StartingVehiclesPerType; round++ {
		ws.VehicleTypes.Each(func(id string, vt *world.VehicleType) bool {
			if vt.Kind != world.VehicleFlying || vt.Manufacturer.ID() == ws.PlayerID {
				return true
			}
			home := ws.Buildings.Ref(buildings[next%len(buildings)])
			next++
			v, err := ws.CreateVehicle(ws.VehicleTypes.Ref(id), vt.Manufacturer, cityRef)
			if err != nil {
				ws.Log.Error("spawn starting vehicle", zap.Error(err))
				return true
			}
			v.HomeBuilding = home
			v.EquipDefaultEquipment(ws)
			v.Land(ws, home)
			return true
		})
	}
}

// placeAlienCrew hides the configured alien crew in a random building that
// is not friendly to the player.
func placeAlienCrew(ws *world.State, cfg Config) {
	if len(ws.Initial.AlienCrew) == 0 {
		return
	}
	target, ok := pickAlienTarget(ws, ws.HumanCityID, cfg.IncursionAttempts)
	if !ok {
		ws.Log.Warn("no building for the starting alien crew")
		return
	}
	b := target.Resolve()
	for _, roll := range ws.Initial.AlienCrew {
		if !ws.AgentTypes.Has(roll.AgentType) {
			ws.Log.Error("unknown alien crew type", zap.String("type", roll.AgentType))
			continue
		}
		spread := ws.Difficulty/2 + roll.Spread
		if spread < 1 {
			spread = 1
		}
		b.AddCrew(roll.AgentType, ws.Rng.Intn(spread)+1)
	}
	ws.Log.Debug("alien crew placed", zap.String("building", b.ID), zap.Any("crew", b.CurrentCrew))
}

// FillPlayerStartingProperty founds the player's first base in a random
// human-city building with a base layout and grants the starting kit.
func FillPlayerStartingProperty(ws *world.State) error {
	var candidates []string
	ws.Buildings.Each(func(id string, b *world.Building) bool {
		if b.City.ID() == ws.HumanCityID && !b.BaseLayout.IsEmpty() && ws.BaseLayouts.Has(b.BaseLayout.ID()) {
			candidates = append(candidates, id)
		}
		return true
	})
	if len(candidates) == 0 {
		ws.Log.Error("no building with a base layout", zap.String("city", ws.HumanCityID))
		return ErrNoBaseLayout
	}

	bid := candidates[ws.Rng.Intn(len(candidates))]
	building, _ := ws.Buildings.Lookup(bid)
	buildingRef := ws.Buildings.Ref(bid)
	layout := building.BaseLayout.Resolve()

	n := ws.IDs.Next("BASE_") + 1
	base := &world.Base{
		ID:       fmt.Sprintf("BASE_%d", n),
		Name:     fmt.Sprintf("Base %d", n),
		Building: buildingRef,
	}
	base.BuildStartingFacilities(ws, layout)
	if err := ws.Bases.Insert(base.ID, base); err != nil {
		return fmt.Errorf("found starting base: %w", err)
	}
	baseRef := ws.Bases.Ref(base.ID)
	building.Base = baseRef
	building.Owner = ws.Player()
	ws.Emit(world.NewBaseEvent(event.KindBaseFounded, base))

	ws.VehicleTypes.Each(func(id string, vt *world.VehicleType) bool {
		if !vt.EquipmentScreen {
			return true
		}
		v, err := ws.CreateVehicle(ws.VehicleTypes.Ref(id), ws.Player(), building.City)
		if err != nil {
			ws.Log.Error("grant starting vehicle", zap.Error(err))
			return true
		}
		v.HomeBuilding = buildingRef
		v.EquipDefaultEquipment(ws)
		v.Land(ws, buildingRef)
		return true
	})

	ws.VEquipmentTypes.Each(func(id string, _ *world.VEquipmentType) bool {
		base.AddVehicleEquipment(id, startingVehicleEquipment)
		return true
	})

	for _, id := range sortedKeys(ws.Initial.AgentEquipment) {
		if !ws.AEquipmentTypes.Has(id) {
			ws.Log.Error("unknown starting agent equipment", zap.String("type", id))
			continue
		}
		base.AddAgentEquipment(id, ws.Initial.AgentEquipment[id])
	}

	for _, typeID := range sortedKeys(ws.Initial.Agents) {
		t, ok := ws.AgentTypes.Lookup(typeID)
		if !ok {
			ws.Log.Error("unknown starting agent type", zap.String("type", typeID))
			continue
		}
		loadouts := ws.Initial.SoldierLoadouts
		for i := 0; i < ws.Initial.Agents[typeID]; i++ {
			a, err := ws.CreateAgent(ws.AgentTypes.Ref(typeID), ws.Player())
			if err != nil {
				ws.Log.Error("grant starting agent", zap.Error(err))
				break
			}
			a.Home = baseRef
			if kind, ok := t.Role.LabKind(); ok {
				if !base.AssignToLab(ws, ws.Agents.Ref(a.ID), kind) {
					ws.Log.Debug("no lab for starting scientist", zap.String("agent", a.ID), zap.Stringer("role", t.Role))
				}
				continue
			}
			switch {
			case len(ws.Initial.SoldierLoadouts) == 0:
				equipSoldier(ws, a, generatedLoadout(ws))
			case len(loadouts) > 0:
				equipSoldier(ws, a, loadoutRefs(ws, loadouts[0]))
				loadouts = loadouts[1:]
			}
		}
	}

	ws.Log.Info("starting base founded",
		zap.String("base", base.ID),
		zap.String("building", bid),
		zap.Int("agents", ws.Agents.Len()),
	)
	return nil
}

func loadoutRefs(ws *world.State, ids []string) []state.Ref[world.AEquipmentType] {
	out := make([]state.Ref[world.AEquipmentType], 0, len(ids))
	for _, id := range ids {
		out = append(out, ws.AEquipmentTypes.Ref(id))
	}
	return out
}

// generatedLoadout rolls a kit from the lowest equipment set, used when the
// content configures no soldier loadouts at all.
func generatedLoadout(ws *world.State) []state.Ref[world.AEquipmentType] {
	set, ok := world.EquipmentSetByScore(ws, 0)
	if !ok {
		return nil
	}
	return set.GenerateEquipmentList(ws)
}

// equipSoldier puts each item of the loadout in the slot its kind calls for.
func equipSoldier(ws *world.State, a *world.Agent, loadout []state.Ref[world.AEquipmentType]) {
	for _, ref := range loadout {
		t, ok := ref.Get()
		if !ok {
			continue
		}
		switch t.Kind {
		case world.AEquipmentArmor:
			a.AddEquipment(ref, world.ArmorSlot(t.BodyPart))
		case world.AEquipmentAmmo, world.AEquipmentMediKit, world.AEquipmentGrenade:
			a.AddEquipment(ref, world.SlotGeneral)
		default:
			a.AddEquipmentByType(ref)
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
