package world

import (
	"github.com/apocgo/server/internal/core/event"
	"github.com/apocgo/server/internal/core/state"
	"go.uber.org/zap"
)

// VehicleKind is how a vehicle type moves around the city.
type VehicleKind int

const (
	VehicleFlying VehicleKind = iota
	VehicleGround
	VehicleUFO
)

func (k VehicleKind) String() string {
	switch k {
	case VehicleGround:
		return "ground"
	case VehicleUFO:
		return "ufo"
	default:
		return "flying"
	}
}

// VEquipmentKind is the slot class of a piece of vehicle equipment.
type VEquipmentKind int

const (
	VEquipmentWeapon VEquipmentKind = iota
	VEquipmentEngine
	VEquipmentGeneral
)

type VEquipmentType struct {
	ID           string
	Name         string
	Kind         VEquipmentKind
	Manufacturer state.Ref[Organisation]
	Weight       int
	Score        int
}

// InitialVEquipment is one entry of a vehicle type's factory loadout.
type InitialVEquipment struct {
	SlotX, SlotY int
	Type         state.Ref[VEquipmentType]
}

type VehicleType struct {
	ID             string
	Name           string
	Kind           VehicleKind
	Manufacturer   state.Ref[Organisation]
	TopSpeed       float64 // tiles per second
	Health         int
	CrashHealth    int
	Aggressiveness float64
	Passengers     int
	Score          int

	// EquipmentScreen is set on types the player can own and outfit.
	EquipmentScreen  bool
	InitialEquipment []InitialVEquipment
	// CrewDeposit is the alien crew dropped into a building on infiltration.
	CrewDeposit map[string]int

	// NumCreated numbers the instances for naming.
	NumCreated int
}

type VEquipment struct {
	Type         state.Ref[VEquipmentType]
	SlotX, SlotY int
}

// MissionKind names what a vehicle is currently trying to do.
type MissionKind int

const (
	MissionPatrol MissionKind = iota
	MissionInfiltrateOrSubvert
	MissionGotoBuilding
)

func (k MissionKind) String() string {
	switch k {
	case MissionInfiltrateOrSubvert:
		return "infiltrate"
	case MissionGotoBuilding:
		return "goto_building"
	default:
		return "patrol"
	}
}

// defaultPatrolWaypoints is how many waypoints a patrol visits before the
// mission ends.
const defaultPatrolWaypoints = 10

type VehicleMission struct {
	Kind     MissionKind
	Target   state.Ref[Building]
	Waypoint Vec3
	// Remaining waypoints on a patrol.
	Remaining   int
	hasWaypoint bool
}

// NewPatrolMission wanders between random points of the city.
func NewPatrolMission() *VehicleMission {
	return &VehicleMission{Kind: MissionPatrol, Remaining: defaultPatrolWaypoints}
}

// NewInfiltrateMission flies to the building and drops the crew inside.
func NewInfiltrateMission(target state.Ref[Building]) *VehicleMission {
	return &VehicleMission{Kind: MissionInfiltrateOrSubvert, Target: target}
}

// NewGotoBuildingMission flies to the building and lands there.
func NewGotoBuildingMission(target state.Ref[Building]) *VehicleMission {
	return &VehicleMission{Kind: MissionGotoBuilding, Target: target}
}

type Vehicle struct {
	ID    string
	Name  string
	Type  state.Ref[VehicleType]
	City  state.Ref[City]
	Owner state.Ref[Organisation]

	HomeBuilding    state.Ref[Building]
	CurrentBuilding state.Ref[Building]

	Health   int
	Position Vec3
	// OnMap is true while the vehicle is placed on its city's map.
	OnMap   bool
	Crashed bool

	Missions  []*VehicleMission
	Equipment []*VEquipment
}

func (v *Vehicle) IsCrashed() bool { return v.Crashed }

// ApplyDamage takes health off the vehicle. At zero health it crashes where
// it is and abandons its missions.
func (v *Vehicle) ApplyDamage(s *State, damage int) {
	if v.Crashed || damage <= 0 {
		return
	}
	v.Health -= damage
	if v.Health > 0 {
		return
	}
	v.Health = 0
	v.Crashed = true
	v.Missions = nil
	if v.Owner.ID() == s.PlayerID {
		s.Emit(NewVehicleEvent(event.KindVehicleCrashed, v))
	}
}

// Landed reports whether the vehicle is parked in a building.
func (v *Vehicle) Landed() bool { return !v.CurrentBuilding.IsEmpty() }

// EquipDefaultEquipment installs the type's factory loadout.
func (v *Vehicle) EquipDefaultEquipment(s *State) {
	t, ok := v.Type.Get()
	if !ok {
		return
	}
	for _, e := range t.InitialEquipment {
		if _, ok := e.Type.Get(); !ok {
			continue
		}
		v.Equipment = append(v.Equipment, &VEquipment{Type: e.Type, SlotX: e.SlotX, SlotY: e.SlotY})
	}
}

// Launch puts the vehicle on its city map at pos, leaving any building it
// was parked in.
func (v *Vehicle) Launch(s *State, pos Vec3) {
	if b, ok := v.CurrentBuilding.Get(); ok {
		b.Unland(s.Vehicles.Ref(v.ID))
	}
	v.CurrentBuilding = state.None[Building]()
	v.Position = pos
	v.OnMap = true
	if c, ok := v.City.Get(); ok && c.Map != nil {
		c.Map.AddObject(ObjectVehicle, v.ID, pos)
	}
	if v.Owner.ID() == s.PlayerID {
		s.Emit(NewVehicleEvent(event.KindVehicleLaunched, v))
	}
}

// Land parks the vehicle in the building and takes it off the map.
func (v *Vehicle) Land(s *State, b state.Ref[Building]) {
	building, ok := b.Get()
	if !ok {
		return
	}
	if v.OnMap {
		if c, ok := v.City.Get(); ok && c.Map != nil {
			c.Map.RemoveObject(ObjectVehicle, v.ID)
		}
	}
	v.OnMap = false
	v.CurrentBuilding = b
	v.Position = building.Bounds.Center()
	building.Land(s.Vehicles.Ref(v.ID))
	if v.Owner.ID() == s.PlayerID {
		s.Emit(NewVehicleEvent(event.KindVehicleLanded, v))
	}
}

// Update runs the front mission. A vehicle with nothing left to do flies
// back to its home building.
func (v *Vehicle) Update(s *State, ticks uint) {
	if v.Crashed || !v.OnMap {
		return
	}
	if len(v.Missions) == 0 {
		if !s.Buildings.Has(v.HomeBuilding.ID()) {
			return
		}
		v.Missions = append(v.Missions, NewGotoBuildingMission(v.HomeBuilding))
	}
	m := v.Missions[0]
	if done := v.runMission(s, m, ticks); done {
		v.Missions = v.Missions[1:]
	}
}

func (v *Vehicle) runMission(s *State, m *VehicleMission, ticks uint) bool {
	switch m.Kind {
	case MissionPatrol:
		if !m.hasWaypoint {
			if m.Remaining <= 0 {
				return true
			}
			m.Waypoint = v.randomWaypoint(s)
			m.hasWaypoint = true
		}
		if v.moveTowards(s, m.Waypoint, ticks) {
			m.hasWaypoint = false
			m.Remaining--
		}
		return false
	case MissionInfiltrateOrSubvert, MissionGotoBuilding:
		b, ok := m.Target.Get()
		if !ok {
			return true
		}
		if !v.moveTowards(s, b.Bounds.Center(), ticks) {
			return false
		}
		if m.Kind == MissionGotoBuilding {
			v.Land(s, m.Target)
			return true
		}
		v.depositCrew(s, b)
		v.Missions = append(v.Missions, NewPatrolMission())
		return true
	default:
		s.Log.Error("unknown vehicle mission", zap.String("vehicle", v.ID), zap.Int("kind", int(m.Kind)))
		return true
	}
}

func (v *Vehicle) depositCrew(s *State, b *Building) {
	t, ok := v.Type.Get()
	if !ok {
		return
	}
	for agentType, n := range t.CrewDeposit {
		b.AddCrew(agentType, n)
	}
	s.Log.Debug("alien crew deposited", zap.String("vehicle", v.ID), zap.String("building", b.ID))
}

func (v *Vehicle) randomWaypoint(s *State) Vec3 {
	maxX, maxY := portalRangeMax, portalRangeMax
	if c, ok := v.City.Get(); ok && c.Size.X > portalRangeMin*2 && c.Size.Y > portalRangeMin*2 {
		maxX, maxY = c.Size.X-portalRangeMin, c.Size.Y-portalRangeMin
	}
	return Vec3{
		X: float64(randRange(s, portalRangeMin, maxX)),
		Y: float64(randRange(s, portalRangeMin, maxY)),
		Z: v.Position.Z,
	}
}

// moveTowards advances the vehicle toward dst at its type's top speed and
// reports whether it arrived.
func (v *Vehicle) moveTowards(s *State, dst Vec3, ticks uint) bool {
	t, ok := v.Type.Get()
	if !ok || t.TopSpeed <= 0 {
		return false
	}
	step := t.TopSpeed * float64(ticks) / TicksPerSecond
	delta := dst.Sub(v.Position)
	dist := delta.Length()
	arrived := dist <= step
	if arrived {
		v.Position = dst
	} else {
		v.Position = v.Position.Add(delta.Scale(step / dist))
	}
	if c, ok := v.City.Get(); ok && c.Map != nil {
		c.Map.MoveObject(ObjectVehicle, v.ID, v.Position)
	}
	return arrived
}
