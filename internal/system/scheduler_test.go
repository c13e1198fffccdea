package system

import (
	"testing"

	"github.com/apocgo/server/internal/core/event"
	"github.com/apocgo/server/internal/world"
	"go.uber.org/zap/zapcore"
)

func TestChunkedUpdatesSum(t *testing.T) {
	run := func(chunks []uint) uint64 {
		ws, _ := newTestWorld(t, nil)
		InitState(ws)
		ws.Time = world.NewGameTime(0)
		sc := NewScheduler(ws, DefaultConfig(), nil)
		for _, c := range chunks {
			sc.Update(c)
		}
		return ws.Time.Ticks()
	}
	whole := run([]uint{world.TicksPerHour + 17})
	split := run([]uint{world.TurboTicks, 1, world.TicksPerHour - world.TurboTicks, 16})
	if whole != split || whole != world.TicksPerHour+17 {
		t.Fatalf("whole = %d, split = %d", whole, split)
	}
}

func TestUpdateOneAdvancesOneTick(t *testing.T) {
	ws, _ := newTestWorld(t, nil)
	ws.Time = world.NewGameTime(10)
	NewScheduler(ws, DefaultConfig(), nil).UpdateOne()
	if ws.Time.Ticks() != 11 {
		t.Fatalf("time = %d, want 11", ws.Time.Ticks())
	}
}

func TestBattleSuspendsCityTimeline(t *testing.T) {
	ws, _ := newTestWorld(t, nil)
	InitState(ws)
	ws.Time = world.NewGameTime(5000)
	sc := NewScheduler(ws, DefaultConfig(), nil)

	v, err := ws.CreateVehicle(ws.VehicleTypes.Ref(DefaultIncursionVehicleType), ws.Aliens(), ws.Cities.Ref(ws.HumanCityID))
	must(t, err)
	v.Launch(ws, world.Vec3{X: 30, Y: 30})
	v.Missions = append(v.Missions, world.NewPatrolMission())
	start := v.Position

	b := &fakeBattle{}
	ws.Battle = b
	sc.Update(300)
	sc.Update(200)

	if b.ticks != 500 {
		t.Fatalf("battle ticks = %d, want 500", b.ticks)
	}
	if v.Position != start {
		t.Fatal("vehicle moved during battle")
	}
	if ws.CityTime().Ticks() != 5000 {
		t.Fatalf("city time during battle = %d, want 5000", ws.CityTime().Ticks())
	}
	if ws.Time.Ticks() != 5500 {
		t.Fatalf("battle clock = %d, want 5500", ws.Time.Ticks())
	}

	ws.Battle = nil
	sc.Update(1)
	if ws.Time.Ticks() != 5001 {
		t.Fatalf("time after battle = %d, want 5001", ws.Time.Ticks())
	}
	if v.Position == start {
		t.Fatal("vehicle did not resume after battle")
	}
}

func TestTurboAlignment(t *testing.T) {
	ws, _ := newTestWorld(t, nil)
	ws.Time = world.NewGameTime(world.TurboTicks*3 + 100)
	sc := NewScheduler(ws, DefaultConfig(), nil)

	sc.UpdateTurbo()
	if ws.Time.Ticks() != world.TurboTicks*4 {
		t.Fatalf("time = %d, want %d", ws.Time.Ticks(), world.TurboTicks*4)
	}
	sc.UpdateTurbo()
	if ws.Time.Ticks() != world.TurboTicks*5 {
		t.Fatalf("aligned turbo advanced to %d, want %d", ws.Time.Ticks(), world.TurboTicks*5)
	}
}

func TestCanTurboHazards(t *testing.T) {
	ws, logs := newTestWorld(t, nil)
	InitState(ws)
	sc := NewScheduler(ws, DefaultConfig(), nil)
	city := ws.Cities.Ref(ws.HumanCityID).Resolve()

	if !sc.CanTurbo() {
		t.Fatal("empty city blocks turbo")
	}

	city.Projectiles = append(city.Projectiles, &world.Projectile{ID: "PROJECTILE_1", TTL: 10})
	if sc.CanTurbo() {
		t.Fatal("projectile in flight allows turbo")
	}
	city.Projectiles = nil

	v, err := ws.CreateVehicle(ws.VehicleTypes.Ref(DefaultIncursionVehicleType), ws.Aliens(), ws.Cities.Ref(city.ID))
	must(t, err)
	v.Land(ws, ws.Buildings.Ref("BUILDING_SLUMS"))
	if !sc.CanTurbo() {
		t.Fatal("landed hostile vehicle blocks turbo")
	}
	v.Launch(ws, world.Vec3{X: 50, Y: 50})
	if sc.CanTurbo() {
		t.Fatal("hostile armed vehicle on the map allows turbo")
	}
	v.Crashed = true
	if !sc.CanTurbo() {
		t.Fatal("crashed vehicle blocks turbo")
	}
	v.Crashed = false
	ws.Aliens().Resolve().SetRelation(ws.PlayerID, 0)
	if !sc.CanTurbo() {
		t.Fatal("neutral vehicle blocks turbo")
	}
	ws.Aliens().Resolve().SetRelation(ws.PlayerID, -100)

	before := ws.Time.Ticks()
	sc.UpdateTurbo()
	if ws.Time.Ticks() == before {
		t.Fatal("turbo did not advance")
	}
	if logs.FilterMessage("turbo update called while turbo is not allowed").FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Fatal("misused turbo was not logged")
	}
}

func addTakeoverTargets(t *testing.T, ws *world.State) []*world.Organisation {
	t.Helper()
	var orgs []*world.Organisation
	for _, id := range []string{"ORG_A", "ORG_B", "ORG_C"} {
		o := &world.Organisation{ID: id, Name: id, TicksTakeOverAttemptAccumulated: world.TicksPerTakeoverAttempt - world.TurboTicks}
		must(t, ws.Organisations.Insert(id, o))
		orgs = append(orgs, o)
	}
	return orgs
}

func TestFiveMinuteCascadeStopsAtFirstTakeover(t *testing.T) {
	ws, _ := newTestWorld(t, world.StaticRules{Takeover: 100})
	orgs := addTakeoverTargets(t, ws)
	ws.Time = world.NewGameTime(world.TurboTicks - 1)
	sc := NewScheduler(ws, DefaultConfig(), nil)

	sc.Update(1)
	if !orgs[0].TakenOver || orgs[1].TakenOver || orgs[2].TakenOver {
		t.Fatalf("taken over = %v %v %v, want only the first", orgs[0].TakenOver, orgs[1].TakenOver, orgs[2].TakenOver)
	}
	if orgs[1].TicksTakeOverAttemptAccumulated != world.TicksPerTakeoverAttempt-world.TurboTicks {
		t.Fatal("scan continued past the first take-over")
	}

	sc.UpdateTurbo()
	if !orgs[1].TakenOver || orgs[2].TakenOver {
		t.Fatal("second epoch should take over exactly the next organisation")
	}
}

// takeoverRules gives each organisation its own take-over chance.
type takeoverRules struct {
	world.StaticRules
	chance map[string]int
}

func (r takeoverRules) TakeoverChance(o *world.Organisation) int { return r.chance[o.ID] }

func TestFiveMinuteCascadeStopsAfterMiddleTakeover(t *testing.T) {
	ws, _ := newTestWorld(t, takeoverRules{chance: map[string]int{"ORG_B": 100, "ORG_C": 100}})
	orgs := addTakeoverTargets(t, ws)
	ws.Time = world.NewGameTime(world.TurboTicks - 1)
	NewScheduler(ws, DefaultConfig(), nil).Update(1)

	first, middle, last := orgs[0], orgs[1], orgs[2]
	if first.TakenOver || first.TicksTakeOverAttemptAccumulated != 0 {
		t.Fatalf("first: taken over %v, accumulated %d; want an attempt that failed",
			first.TakenOver, first.TicksTakeOverAttemptAccumulated)
	}
	if !middle.TakenOver {
		t.Fatal("middle organisation not taken over")
	}
	if last.TakenOver || last.TicksTakeOverAttemptAccumulated != world.TicksPerTakeoverAttempt-world.TurboTicks {
		t.Fatalf("last: taken over %v, accumulated %d; want it untouched",
			last.TakenOver, last.TicksTakeOverAttemptAccumulated)
	}
}

func TestFiveMinuteCascadeWithoutPolicy(t *testing.T) {
	ws, _ := newTestWorld(t, world.StaticRules{Takeover: 100})
	orgs := addTakeoverTargets(t, ws)
	ws.Time = world.NewGameTime(world.TurboTicks - 1)
	cfg := DefaultConfig()
	cfg.Cascade.OneEventPerEpoch = false
	NewScheduler(ws, cfg, nil).Update(1)
	for _, o := range orgs {
		if !o.TakenOver {
			t.Fatalf("%s not taken over with the policy off", o.ID)
		}
	}
}

func TestFiveMinuteCascadeStopsAtFirstDetection(t *testing.T) {
	ws, _ := newTestWorld(t, world.StaticRules{Detection: 100})
	InitState(ws)
	interval := world.DetectionInterval(ws.Difficulty)
	for _, id := range []string{"BUILDING_PLAYER", "BUILDING_SLUMS"} {
		b := ws.Buildings.Ref(id).Resolve()
		b.AddCrew("AGENTTYPE_BRAINSUCKER", 1)
		b.TicksDetectionAttemptAccumulated = interval - world.TurboTicks
	}
	ws.Time = world.NewGameTime(world.TurboTicks - 1)
	NewScheduler(ws, DefaultConfig(), nil).Update(1)

	first := ws.Buildings.Ref("BUILDING_PLAYER").Resolve()
	second := ws.Buildings.Ref("BUILDING_SLUMS").Resolve()
	if !first.Detected() || second.Detected() {
		t.Fatalf("detected = %v %v, want only the first", first.Detected(), second.Detected())
	}
}

func TestDayCascade(t *testing.T) {
	ws, _ := newTestWorld(t, nil)
	InitState(ws)
	must(t, ws.FacilityTypes.Insert("FACILITYTYPE_LAB", &world.FacilityType{ID: "FACILITYTYPE_LAB", Name: "Laboratory"}))
	must(t, ws.Bases.Insert("BASE_1", &world.Base{
		ID: "BASE_1", Name: "Base 1", Building: ws.Buildings.Ref("BUILDING_PLAYER"),
		Facilities: []*world.Facility{
			{ID: "FACILITY_1", Type: ws.FacilityTypes.Ref("FACILITYTYPE_LAB"), BuildTime: 1},
			{ID: "FACILITY_2", Type: ws.FacilityTypes.Ref("FACILITYTYPE_LAB"), BuildTime: 3},
		},
	}))

	counts := map[event.Kind]int{}
	var spotted []event.GameEvent
	event.Subscribe(ws.Bus, func(ev event.GameEvent) {
		counts[ev.Kind]++
		if ev.Kind == event.KindUfoSpotted {
			spotted = append(spotted, ev)
		}
	})

	ws.Time = world.NewGameTime(world.TicksPerDay - 1)
	NewScheduler(ws, DefaultConfig(), nil).Update(1)
	ws.Bus.Flush()

	if counts[event.KindFacilityCompleted] != 1 {
		t.Fatalf("facility events = %d, want 1", counts[event.KindFacilityCompleted])
	}
	if f := ws.Bases.Ref("BASE_1").Resolve().Facilities[1]; f.BuildTime != 2 {
		t.Fatalf("second facility build time = %d, want 2", f.BuildTime)
	}
	if len(spotted) != 5 {
		t.Fatalf("ufo events = %d, want 5", len(spotted))
	}
	for _, ev := range spotted {
		if ev.SecondaryID != "BUILDING_SLUMS" {
			t.Fatalf("ufo targets %s; the player's building must be skipped", ev.SecondaryID)
		}
		v := ws.Vehicles.Ref(ev.SubjectID).Resolve()
		if !v.OnMap || len(v.Missions) != 1 || v.Missions[0].Kind != world.MissionInfiltrateOrSubvert {
			t.Fatalf("incursion vehicle = %+v", v)
		}
	}
	if ws.Messages.Len() != 6 {
		t.Fatalf("message log = %d entries, want 6", ws.Messages.Len())
	}
}

func TestIncursionGivesUpWithoutTargets(t *testing.T) {
	ws, logs := newTestWorld(t, nil)
	ws.Civilian().Resolve().SetRelation(ws.PlayerID, 50)
	InitState(ws)
	ws.Time = world.NewGameTime(world.TicksPerDay - 1)
	NewScheduler(ws, DefaultConfig(), nil).Update(1)
	if ws.Vehicles.Len() != 0 {
		t.Fatalf("spawned %d vehicles with only friendly buildings", ws.Vehicles.Len())
	}
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 0 {
		t.Fatalf("give-up was logged as an error: %v", logs.FilterLevelExact(zapcore.ErrorLevel).All())
	}
}

func TestWeekCascadeFallsBackToDefaultGrowth(t *testing.T) {
	ws, _ := newTestWorld(t, nil)
	InitState(ws)
	must(t, ws.UFOGrowth.Insert(world.UFOGrowthID(ws.Difficulty, 0), &world.UFOGrowth{
		ID:      world.UFOGrowthID(ws.Difficulty, 0),
		Entries: []world.GrowthEntry{{Type: ws.VehicleTypes.Ref(DefaultIncursionVehicleType), Count: 3}},
	}))
	cfg := DefaultConfig()
	cfg.AlienIncursionsPerDay = 0

	ws.Time = world.NewGameTime(world.TicksPerWeek - 1)
	NewScheduler(ws, cfg, nil).Update(1)

	alien := ws.VehiclesIn(ws.AlienCityID)
	if len(alien) != 3 {
		t.Fatalf("alien city vehicles = %d, want 3", len(alien))
	}
	for _, id := range alien {
		v := ws.Vehicles.Ref(id).Resolve()
		if v.Owner.ID() != ws.AliensID || v.Missions[0].Kind != world.MissionPatrol {
			t.Fatalf("growth vehicle = %+v", v)
		}
		if v.Position.X < 20 || v.Position.X > 120 || v.Position.Y < 20 || v.Position.Y > 120 {
			t.Fatalf("growth vehicle outside spawn square: %+v", v.Position)
		}
	}
}

func TestWeekCascadeWithoutGrowthIsSkipped(t *testing.T) {
	ws, logs := newTestWorld(t, nil)
	ws.Time = world.NewGameTime(world.TicksPerWeek - 1)
	cfg := DefaultConfig()
	cfg.AlienIncursionsPerDay = 0
	NewScheduler(ws, cfg, nil).Update(1)
	if logs.FilterMessage("no ufo growth for week").FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Fatal("missing growth list not logged as an error")
	}
	if ws.Vehicles.Len() != 0 {
		t.Fatalf("spawned %d vehicles without a growth list", ws.Vehicles.Len())
	}
}

func TestWeekCascadeSkipsUnknownGrowthType(t *testing.T) {
	ws, logs := newTestWorld(t, nil)
	InitState(ws)
	// The week that starts when the clock reaches TicksPerWeek.
	id := world.UFOGrowthID(ws.Difficulty, world.NewGameTime(world.TicksPerWeek).Week())
	must(t, ws.UFOGrowth.Insert(id, &world.UFOGrowth{
		ID: id,
		Entries: []world.GrowthEntry{
			{Type: ws.VehicleTypes.Ref("VEHICLETYPE_MOD_SCOUT"), Count: 4},
			{Type: ws.VehicleTypes.Ref(DefaultIncursionVehicleType), Count: 2},
		},
	}))
	cfg := DefaultConfig()
	cfg.AlienIncursionsPerDay = 0

	ws.Time = world.NewGameTime(world.TicksPerWeek - 1)
	NewScheduler(ws, cfg, nil).Update(1)

	if n := len(ws.VehiclesIn(ws.AlienCityID)); n != 2 {
		t.Fatalf("alien city vehicles = %d, want the 2 known ships", n)
	}
	entries := logs.FilterMessage("unknown ufo growth vehicle type").FilterLevelExact(zapcore.ErrorLevel).All()
	if len(entries) != 1 || entries[0].ContextMap()["type"] != "VEHICLETYPE_MOD_SCOUT" {
		t.Fatalf("unknown growth type logs = %v", entries)
	}
}

func TestIncursionWithUnknownVehicleTypeIsSkipped(t *testing.T) {
	ws, logs := newTestWorld(t, nil)
	InitState(ws)
	cfg := DefaultConfig()
	cfg.IncursionVehicleType = "VEHICLETYPE_NOPE"

	ws.Time = world.NewGameTime(world.TicksPerDay - 1)
	NewScheduler(ws, cfg, nil).Update(1)

	if ws.Vehicles.Len() != 0 {
		t.Fatalf("spawned %d incursion vehicles of an unknown type", ws.Vehicles.Len())
	}
	if logs.FilterMessage("incursion vehicle type missing").FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Fatal("unknown incursion vehicle type not logged as an error")
	}
}

func TestIncursionWithoutPortalsIsSkipped(t *testing.T) {
	ws, logs := newTestWorld(t, nil)
	ws.Time = world.NewGameTime(world.TicksPerDay - 1)
	NewScheduler(ws, DefaultConfig(), nil).Update(1)

	if ws.Vehicles.Len() != 0 {
		t.Fatalf("spawned %d incursion vehicles without portals", ws.Vehicles.Len())
	}
	if logs.FilterMessage("no portals for alien incursion").FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Fatal("missing portals not logged as an error")
	}
}
