package world

import (
	"testing"

	"github.com/apocgo/server/internal/core/event"
)

func addVehicleType(t *testing.T, s *State, vt *VehicleType) {
	t.Helper()
	mustInsert(t, s.VehicleTypes.Insert(vt.ID, vt))
}

func TestCreateVehicleNaming(t *testing.T) {
	s, _ := newTestState(t, nil)
	addVehicleType(t, s, &VehicleType{ID: "VEHICLETYPE_HOVERCAR", Name: "Hovercar", Health: 40})

	a, err := s.CreateVehicle(s.VehicleTypes.Ref("VEHICLETYPE_HOVERCAR"), s.Civilian(), s.Cities.Ref(s.HumanCityID))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := s.CreateVehicle(s.VehicleTypes.Ref("VEHICLETYPE_HOVERCAR"), s.Civilian(), s.Cities.Ref(s.HumanCityID))
	if a.Name != "Hovercar 1" || b.Name != "Hovercar 2" {
		t.Fatalf("names = %q, %q", a.Name, b.Name)
	}
	if a.ID == b.ID || a.Health != 40 {
		t.Fatalf("vehicles = %+v %+v", a, b)
	}

	if _, err := s.CreateVehicle(s.VehicleTypes.Ref("VEHICLETYPE_NOPE"), s.Civilian(), s.Cities.Ref(s.HumanCityID)); err == nil {
		t.Fatal("unknown type accepted")
	}
}

func TestLaunchAndLand(t *testing.T) {
	s, _ := newTestState(t, nil)
	city := s.Cities.Ref(s.HumanCityID).Resolve()
	city.InitMap(s)
	addVehicleType(t, s, &VehicleType{ID: "VEHICLETYPE_VALKYRIE", Name: "Valkyrie", TopSpeed: 10})
	b := &Building{ID: "BUILDING_1", City: s.Cities.Ref(city.ID), Bounds: Rect{X0: 0, Y0: 0, X1: 4, Y1: 4}}
	mustInsert(t, s.Buildings.Insert(b.ID, b))

	v, err := s.CreateVehicle(s.VehicleTypes.Ref("VEHICLETYPE_VALKYRIE"), s.Player(), s.Cities.Ref(city.ID))
	if err != nil {
		t.Fatal(err)
	}
	v.Land(s, s.Buildings.Ref(b.ID))
	if !v.Landed() || len(b.LandedVehicles) != 1 || city.Map.Contains(ObjectVehicle, v.ID) {
		t.Fatal("landing did not park the vehicle")
	}

	v.Launch(s, Vec3{X: 50, Y: 50, Z: 5})
	if v.Landed() || !v.OnMap || len(b.LandedVehicles) != 0 || !city.Map.Contains(ObjectVehicle, v.ID) {
		t.Fatal("launch did not place the vehicle on the map")
	}

	s.RemoveVehicle(v.ID)
	if s.Vehicles.Has(v.ID) || city.Map.Contains(ObjectVehicle, v.ID) {
		t.Fatal("removed vehicle still present")
	}
}

func TestInfiltrateMissionDepositsCrew(t *testing.T) {
	s, _ := newTestState(t, nil)
	city := s.Cities.Ref(s.HumanCityID).Resolve()
	city.InitMap(s)
	addVehicleType(t, s, &VehicleType{
		ID:          "VEHICLETYPE_ALIEN_ASSAULT_SHIP",
		Name:        "Assault Ship",
		Kind:        VehicleUFO,
		TopSpeed:    TicksPerSecond,
		CrewDeposit: map[string]int{"AGENTTYPE_BRAINSUCKER": 3},
	})
	b := &Building{ID: "BUILDING_1", City: s.Cities.Ref(city.ID), Bounds: Rect{X0: 10, Y0: 10, X1: 12, Y1: 12}}
	mustInsert(t, s.Buildings.Insert(b.ID, b))

	v, _ := s.CreateVehicle(s.VehicleTypes.Ref("VEHICLETYPE_ALIEN_ASSAULT_SHIP"), s.Aliens(), s.Cities.Ref(city.ID))
	v.Launch(s, Vec3{X: 11, Y: 5})
	v.Missions = append(v.Missions, NewInfiltrateMission(s.Buildings.Ref(b.ID)))

	// One tile per tick: six ticks reach the building centre.
	for i := 0; i < 6; i++ {
		v.Update(s, 1)
	}
	if b.CurrentCrew["AGENTTYPE_BRAINSUCKER"] != 3 {
		t.Fatalf("crew = %v", b.CurrentCrew)
	}
	if len(v.Missions) != 1 || v.Missions[0].Kind != MissionPatrol {
		t.Fatalf("missions after infiltration = %+v", v.Missions)
	}
}

func TestEquipDefaultEquipment(t *testing.T) {
	s, _ := newTestState(t, nil)
	mustInsert(t, s.VEquipmentTypes.Insert("VEQUIPMENTTYPE_LASER", &VEquipmentType{ID: "VEQUIPMENTTYPE_LASER"}))
	addVehicleType(t, s, &VehicleType{
		ID: "VEHICLETYPE_HAWK",
		InitialEquipment: []InitialVEquipment{
			{SlotX: 1, Type: s.VEquipmentTypes.Ref("VEQUIPMENTTYPE_LASER")},
			{SlotX: 2, Type: s.VEquipmentTypes.Ref("VEQUIPMENTTYPE_MISSING")},
		},
	})
	v, _ := s.CreateVehicle(s.VehicleTypes.Ref("VEHICLETYPE_HAWK"), s.Player(), s.Cities.Ref(s.HumanCityID))
	v.EquipDefaultEquipment(s)
	if len(v.Equipment) != 1 || v.Equipment[0].SlotX != 1 {
		t.Fatalf("equipment = %+v", v.Equipment)
	}
}

func TestRemoveVehicleDetaches(t *testing.T) {
	s, _ := newTestState(t, nil)
	city := s.Cities.Ref(s.HumanCityID).Resolve()
	city.InitMap(s)
	addVehicleType(t, s, &VehicleType{ID: "VEHICLETYPE_HOVERCAR", Name: "Hovercar"})
	b := &Building{ID: "BUILDING_1", City: s.Cities.Ref(city.ID), Bounds: Rect{X0: 0, Y0: 0, X1: 4, Y1: 4}}
	mustInsert(t, s.Buildings.Insert(b.ID, b))

	parked, _ := s.CreateVehicle(s.VehicleTypes.Ref("VEHICLETYPE_HOVERCAR"), s.Civilian(), s.Cities.Ref(city.ID))
	parked.Land(s, s.Buildings.Ref(b.ID))
	flying, _ := s.CreateVehicle(s.VehicleTypes.Ref("VEHICLETYPE_HOVERCAR"), s.Civilian(), s.Cities.Ref(city.ID))
	flying.Launch(s, Vec3{X: 30, Y: 30})

	s.RemoveVehicle(parked.ID)
	if len(b.LandedVehicles) != 0 || s.Vehicles.Has(parked.ID) {
		t.Fatalf("parked vehicle still attached: %v", b.LandedVehicles)
	}
	if !city.Map.Contains(ObjectVehicle, flying.ID) {
		t.Fatal("removing one vehicle touched another")
	}
	s.RemoveVehicle(flying.ID)
	if city.Map.Count(ObjectVehicle) != 0 || s.Vehicles.Len() != 0 {
		t.Fatal("flying vehicle left on the map")
	}
	s.RemoveVehicle(flying.ID)
}

func TestIdleVehicleReturnsHome(t *testing.T) {
	s, _ := newTestState(t, nil)
	city := s.Cities.Ref(s.HumanCityID).Resolve()
	city.InitMap(s)
	addVehicleType(t, s, &VehicleType{ID: "VEHICLETYPE_VALKYRIE", Name: "Valkyrie", TopSpeed: TicksPerSecond})
	home := &Building{ID: "BUILDING_1", City: s.Cities.Ref(city.ID), Bounds: Rect{X0: 10, Y0: 10, X1: 12, Y1: 12}}
	mustInsert(t, s.Buildings.Insert(home.ID, home))

	v, _ := s.CreateVehicle(s.VehicleTypes.Ref("VEHICLETYPE_VALKYRIE"), s.Player(), s.Cities.Ref(city.ID))
	v.HomeBuilding = s.Buildings.Ref(home.ID)
	v.Launch(s, Vec3{X: 11, Y: 5})

	v.Update(s, 1)
	if len(v.Missions) != 1 || v.Missions[0].Kind != MissionGotoBuilding {
		t.Fatalf("missions = %+v", v.Missions)
	}
	// One tile per tick: six ticks reach the building centre.
	for i := 0; i < 5; i++ {
		v.Update(s, 1)
	}
	if !v.Landed() || v.CurrentBuilding.ID() != home.ID || len(v.Missions) != 0 {
		t.Fatalf("vehicle not home: landed=%v missions=%+v", v.Landed(), v.Missions)
	}
	if city.Map.Contains(ObjectVehicle, v.ID) {
		t.Fatal("landed vehicle still on the map")
	}

	drifter, _ := s.CreateVehicle(s.VehicleTypes.Ref("VEHICLETYPE_VALKYRIE"), s.Civilian(), s.Cities.Ref(city.ID))
	drifter.Launch(s, Vec3{X: 50, Y: 50})
	drifter.Update(s, 1)
	if len(drifter.Missions) != 0 || drifter.Position != (Vec3{X: 50, Y: 50}) {
		t.Fatal("vehicle without a home started moving")
	}
}

func TestApplyDamageCrashesVehicle(t *testing.T) {
	s, _ := newTestState(t, nil)
	addVehicleType(t, s, &VehicleType{ID: "VEHICLETYPE_INTERCEPTOR", Name: "Interceptor", Health: 30})
	v, _ := s.CreateVehicle(s.VehicleTypes.Ref("VEHICLETYPE_INTERCEPTOR"), s.Player(), s.Cities.Ref(s.HumanCityID))
	v.Missions = []*VehicleMission{NewPatrolMission()}

	v.ApplyDamage(s, 10)
	if v.Health != 20 || v.Crashed {
		t.Fatalf("vehicle after hit = health %d crashed %v", v.Health, v.Crashed)
	}
	v.ApplyDamage(s, 25)
	if v.Health != 0 || !v.IsCrashed() || v.Missions != nil {
		t.Fatalf("vehicle after fatal hit = %+v", v)
	}
	s.Bus.Flush()
	msgs := s.Messages.Entries()
	if len(msgs) != 1 || msgs[0].Kind != event.KindVehicleCrashed || msgs[0].Text != "Interceptor 1 has crashed" {
		t.Fatalf("messages = %+v", msgs)
	}
}
