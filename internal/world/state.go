package world

import (
	"fmt"
	"math/rand"

	"github.com/apocgo/server/internal/core/event"
	"github.com/apocgo/server/internal/core/state"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Well-known content ids.
const (
	DefaultPlayerID    = "ORG_X-COM"
	DefaultAliensID    = "ORG_ALIEN"
	DefaultCivilianID  = "ORG_CIVILIAN"
	DefaultHumanCityID = "CITYMAP_HUMAN"
	DefaultAlienCityID = "CITYMAP_ALIEN"
)

// Options configures a new State.
type Options struct {
	Difficulty      int
	Seed            int64
	PlayerID        string
	AliensID        string
	CivilianID      string
	HumanCityID     string
	AlienCityID     string
	MessageCapacity int
	Rules           Rules
	// NewMap builds the spatial map of a city; defaults to a SpatialGrid.
	NewMap func() TileMap
}

// CrewRoll places Base+rand(0, difficulty/2+Spread) aliens of a type.
type CrewRoll struct {
	AgentType string
	Spread    int
}

// InitialProperty is the content-defined starting kit of a new game.
type InitialProperty struct {
	// AgentEquipment is stocked in the starting base, type id to count.
	AgentEquipment map[string]int
	// Agents is how many agents of each type the player starts with.
	Agents map[string]int
	// SoldierLoadouts are handed out one per starting soldier, in order,
	// restarting for each agent type. Soldiers past the end get nothing.
	SoldierLoadouts [][]string
	// AlienCrew is placed in a random building on a new game.
	AlienCrew []CrewRoll
}

// State owns every simulated entity. It is accessed only from the game loop
// goroutine; the id allocator is the one part safe for concurrent use.
type State struct {
	Log      *zap.Logger
	Reg      *state.Registry
	IDs      *state.IDAllocator
	Bus      *event.Bus
	Rng      *rand.Rand
	Rules    Rules
	Messages *MessageLog

	Organisations    *state.Table[Organisation]
	Cities           *state.Table[City]
	Buildings        *state.Table[Building]
	Vehicles         *state.Table[Vehicle]
	VehicleTypes     *state.Table[VehicleType]
	VEquipmentTypes  *state.Table[VEquipmentType]
	Bases            *state.Table[Base]
	Agents           *state.Table[Agent]
	AgentTypes       *state.Table[AgentType]
	AEquipmentTypes  *state.Table[AEquipmentType]
	EquipmentSets    *state.Table[EquipmentSet]
	DamageTypes      *state.Table[DamageType]
	DamageModifiers  *state.Table[DamageModifier]
	FacilityTypes    *state.Table[FacilityType]
	BaseLayouts      *state.Table[BaseLayout]
	SceneryTileTypes *state.Table[SceneryTileType]
	UFOGrowth        *state.Table[UFOGrowth]
	ResearchTopics   *state.Table[ResearchTopic]
	ResearchLabs     *state.Table[ResearchLab]

	AvailableTopics []state.Ref[ResearchTopic]
	// GravLiftSample is the shared sound linked into every agent type.
	GravLiftSample string
	Initial        InitialProperty

	// Time is the city clock, or the battle clock while a battle runs.
	Time             GameTime
	timeBeforeBattle GameTime
	battleClock      bool

	Battle      Battle
	CurrentCity state.Ref[City]

	PlayerID    string
	AliensID    string
	CivilianID  string
	HumanCityID string
	AlienCityID string
	Difficulty  int

	NewGame        bool
	FirstDetection bool

	newMap func() TileMap
}

func NewState(opts Options, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PlayerID == "" {
		opts.PlayerID = DefaultPlayerID
	}
	if opts.AliensID == "" {
		opts.AliensID = DefaultAliensID
	}
	if opts.CivilianID == "" {
		opts.CivilianID = DefaultCivilianID
	}
	if opts.HumanCityID == "" {
		opts.HumanCityID = DefaultHumanCityID
	}
	if opts.AlienCityID == "" {
		opts.AlienCityID = DefaultAlienCityID
	}
	if opts.Rules == nil {
		opts.Rules = StaticRules{}
	}
	if opts.NewMap == nil {
		opts.NewMap = func() TileMap { return NewSpatialGrid() }
	}

	reg := state.NewRegistry()
	s := &State{
		Log:      log,
		Reg:      reg,
		IDs:      state.NewIDAllocator(),
		Bus:      event.NewBus(),
		Rng:      rand.New(rand.NewSource(opts.Seed)),
		Rules:    opts.Rules,
		Messages: NewMessageLog(opts.MessageCapacity),

		Organisations:    state.Register(reg, state.NewTable[Organisation]("organisations", log)),
		Cities:           state.Register(reg, state.NewTable[City]("cities", log)),
		Buildings:        state.Register(reg, state.NewTable[Building]("buildings", log)),
		Vehicles:         state.Register(reg, state.NewTable[Vehicle]("vehicles", log)),
		VehicleTypes:     state.Register(reg, state.NewTable[VehicleType]("vehicle_types", log)),
		VEquipmentTypes:  state.Register(reg, state.NewTable[VEquipmentType]("vehicle_equipment", log)),
		Bases:            state.Register(reg, state.NewTable[Base]("bases", log)),
		Agents:           state.Register(reg, state.NewTable[Agent]("agents", log)),
		AgentTypes:       state.Register(reg, state.NewTable[AgentType]("agent_types", log)),
		AEquipmentTypes:  state.Register(reg, state.NewTable[AEquipmentType]("agent_equipment", log)),
		EquipmentSets:    state.Register(reg, state.NewTable[EquipmentSet]("equipment_sets", log)),
		DamageTypes:      state.Register(reg, state.NewTable[DamageType]("damage_types", log)),
		DamageModifiers:  state.Register(reg, state.NewTable[DamageModifier]("damage_modifiers", log)),
		FacilityTypes:    state.Register(reg, state.NewTable[FacilityType]("facility_types", log)),
		BaseLayouts:      state.Register(reg, state.NewTable[BaseLayout]("base_layouts", log)),
		SceneryTileTypes: state.Register(reg, state.NewTable[SceneryTileType]("scenery_tile_types", log)),
		UFOGrowth:        state.Register(reg, state.NewTable[UFOGrowth]("ufo_growth", log)),
		ResearchTopics:   state.Register(reg, state.NewTable[ResearchTopic]("research_topics", log)),
		ResearchLabs:     state.Register(reg, state.NewTable[ResearchLab]("research_labs", log)),

		PlayerID:    opts.PlayerID,
		AliensID:    opts.AliensID,
		CivilianID:  opts.CivilianID,
		HumanCityID: opts.HumanCityID,
		AlienCityID: opts.AlienCityID,
		Difficulty:  opts.Difficulty,

		newMap: opts.NewMap,
	}
	event.Subscribe(s.Bus, s.LogEvent)
	return s
}

// NewMap builds an empty spatial map for a city.
func (s *State) NewMap() TileMap { return s.newMap() }

func (s *State) Player() state.Ref[Organisation]   { return s.Organisations.Ref(s.PlayerID) }
func (s *State) Aliens() state.Ref[Organisation]   { return s.Organisations.Ref(s.AliensID) }
func (s *State) Civilian() state.Ref[Organisation] { return s.Organisations.Ref(s.CivilianID) }

func (s *State) Organisation(id string) state.Ref[Organisation] {
	return s.Organisations.Ref(id)
}

// PlayerBalance renders the player's funds with grouped digits.
func (s *State) PlayerBalance() string {
	p, ok := s.Player().Get()
	if !ok {
		return "0"
	}
	return message.NewPrinter(language.English).Sprintf("%d", p.Balance)
}

// InBattle reports whether a battle collaborator is active.
func (s *State) InBattle() bool { return s.Battle != nil }

// EnterBattleTimeline snapshots the city clock on the first battle tick.
func (s *State) EnterBattleTimeline() {
	if s.battleClock {
		return
	}
	s.timeBeforeBattle = s.Time
	s.battleClock = true
}

// LeaveBattleTimeline restores the city clock from the snapshot. It reports
// whether a snapshot was pending.
func (s *State) LeaveBattleTimeline() bool {
	if !s.battleClock {
		return false
	}
	s.Time = s.timeBeforeBattle
	s.timeBeforeBattle = GameTime{}
	s.battleClock = false
	s.returnFromBattle()
	return true
}

// returnFromBattle takes every agent off the battlefield. Agents whose unit
// died are removed.
func (s *State) returnFromBattle() {
	var dead []string
	s.Agents.Each(func(id string, a *Agent) bool {
		if a.Unit == nil {
			return true
		}
		if a.Unit.Dead {
			s.Emit(NewAgentEvent(event.KindAgentKilled, a))
			dead = append(dead, id)
		}
		a.Unit = nil
		return true
	})
	for _, id := range dead {
		s.RemoveAgent(id)
	}
}

// CityTime is the city clock, frozen at the snapshot while in battle.
func (s *State) CityTime() GameTime {
	if s.battleClock {
		return s.timeBeforeBattle
	}
	return s.Time
}

// Emit queues a game event for the next bus flush.
func (s *State) Emit(ev event.GameEvent) {
	event.Emit(s.Bus, ev)
}

// LogEvent records a delivered event in the message log, stamped with the
// city clock.
func (s *State) LogEvent(ev event.GameEvent) {
	s.Messages.Push(NewEventMessage(s.CityTime(), ev))
	s.Log.Info("game event",
		zap.String("kind", ev.Kind.String()),
		zap.String("subject", ev.SubjectID),
		zap.String("text", ev.Text),
	)
}

// CreateVehicle builds a vehicle of the given type named after the type
// and its running count. The vehicle starts off the map.
func (s *State) CreateVehicle(typeRef state.Ref[VehicleType], owner state.Ref[Organisation], city state.Ref[City]) (*Vehicle, error) {
	t, ok := typeRef.Get()
	if !ok {
		return nil, fmt.Errorf("create vehicle: unknown type %q", typeRef.ID())
	}
	t.NumCreated++
	v := &Vehicle{
		ID:     s.IDs.NewID("VEHICLE_"),
		Name:   fmt.Sprintf("%s %d", t.Name, t.NumCreated),
		Type:   typeRef,
		City:   city,
		Owner:  owner,
		Health: t.Health,
	}
	if err := s.Vehicles.Insert(v.ID, v); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	return v, nil
}

// RemoveVehicle takes the vehicle off its map and out of any building, then
// drops it from the table.
func (s *State) RemoveVehicle(id string) {
	v, ok := s.Vehicles.Lookup(id)
	if !ok {
		return
	}
	if v.OnMap {
		if c, ok := v.City.Get(); ok && c.Map != nil {
			c.Map.RemoveObject(ObjectVehicle, id)
		}
	}
	if b, ok := v.CurrentBuilding.Get(); ok {
		b.Unland(s.Vehicles.Ref(id))
	}
	s.Vehicles.Remove(id)
}

// CreateAgent builds an agent of the given type for owner.
func (s *State) CreateAgent(typeRef state.Ref[AgentType], owner state.Ref[Organisation]) (*Agent, error) {
	t, ok := typeRef.Get()
	if !ok {
		return nil, fmt.Errorf("create agent: unknown type %q", typeRef.ID())
	}
	n := s.IDs.Next("AGENT_")
	a := &Agent{
		ID:    fmt.Sprintf("AGENT_%d", n),
		Name:  fmt.Sprintf("%s %d", t.Name, n+1),
		Type:  typeRef,
		Owner: owner,
	}
	if err := s.Agents.Insert(a.ID, a); err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return a, nil
}

// RemoveAgent drops the agent and unassigns it from any lab.
func (s *State) RemoveAgent(id string) {
	ref := s.Agents.Ref(id)
	s.ResearchLabs.Each(func(_ string, l *ResearchLab) bool {
		for i, r := range l.Assigned {
			if r == ref {
				l.Assigned = append(l.Assigned[:i], l.Assigned[i+1:]...)
				break
			}
		}
		return true
	})
	s.Agents.Remove(id)
}

// VehiclesIn returns the ids of vehicles belonging to a city, in table order.
func (s *State) VehiclesIn(cityID string) []string {
	var out []string
	s.Vehicles.Each(func(id string, v *Vehicle) bool {
		if v.City.ID() == cityID {
			out = append(out, id)
		}
		return true
	})
	return out
}

// BuildingsIn returns the ids of buildings in a city, in table order.
func (s *State) BuildingsIn(cityID string) []string {
	var out []string
	s.Buildings.Each(func(id string, b *Building) bool {
		if b.City.ID() == cityID {
			out = append(out, id)
		}
		return true
	})
	return out
}
