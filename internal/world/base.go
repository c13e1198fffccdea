package world

import "github.com/apocgo/server/internal/core/state"

type FacilityType struct {
	ID   string
	Name string
	// BuildTime is in days.
	BuildTime int
	Size      int
	Capacity  int
	// LabKind is set on research and workshop facilities.
	LabKind   ResearchKind
	HasLab    bool
	BuildCost int64
	Fixed     bool
}

// FacilityPos is a grid position inside a base.
type FacilityPos struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type Facility struct {
	ID   string
	Type state.Ref[FacilityType]
	Pos  FacilityPos
	// BuildTime is the days left until the facility is complete.
	BuildTime int
	Lab       state.Ref[ResearchLab]
}

// UnderConstruction reports whether the facility still has build days left.
func (f *Facility) UnderConstruction() bool { return f.BuildTime > 0 }

// StartingFacility is a facility a base layout comes with.
type StartingFacility struct {
	Type state.Ref[FacilityType]
	Pos  FacilityPos
}

// BaseLayout describes the building footprint a base can be founded in.
type BaseLayout struct {
	ID                 string
	Name               string
	StartingFacilities []StartingFacility
}

type Base struct {
	ID         string
	Name       string
	Building   state.Ref[Building]
	Facilities []*Facility

	// Inventories keyed by equipment type id.
	VehicleEquipment map[string]int
	AgentEquipment   map[string]int
}

// AddVehicleEquipment stocks n items of a vehicle equipment type.
func (b *Base) AddVehicleEquipment(typeID string, n int) {
	if b.VehicleEquipment == nil {
		b.VehicleEquipment = make(map[string]int)
	}
	b.VehicleEquipment[typeID] += n
}

// AddAgentEquipment stocks n items of an agent equipment type.
func (b *Base) AddAgentEquipment(typeID string, n int) {
	if b.AgentEquipment == nil {
		b.AgentEquipment = make(map[string]int)
	}
	b.AgentEquipment[typeID] += n
}

// AssignToLab puts the agent in the base's least staffed lab of the given
// kind. It reports false when the base has no such lab.
func (b *Base) AssignToLab(s *State, agent state.Ref[Agent], kind ResearchKind) bool {
	var best *ResearchLab
	for _, f := range b.Facilities {
		l, ok := s.ResearchLabs.Lookup(f.Lab.ID())
		if !ok || l.Kind != kind || f.UnderConstruction() {
			continue
		}
		if best == nil || len(l.Assigned) < len(best.Assigned) {
			best = l
		}
	}
	if best == nil {
		return false
	}
	best.Assigned = append(best.Assigned, agent)
	return true
}

// BuildStartingFacilities instantiates the layout's facilities as complete.
func (b *Base) BuildStartingFacilities(s *State, layout *BaseLayout) {
	for _, sf := range layout.StartingFacilities {
		t, ok := sf.Type.Get()
		if !ok {
			continue
		}
		f := &Facility{ID: s.IDs.NewID("FACILITY_"), Type: sf.Type, Pos: sf.Pos}
		if t.HasLab {
			f.Lab = s.NewLab(t.LabKind)
		}
		b.Facilities = append(b.Facilities, f)
	}
}
