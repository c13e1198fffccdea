package data

import (
	"errors"
	"fmt"

	"github.com/apocgo/server/internal/core/state"
	"github.com/apocgo/server/internal/world"
	"go.uber.org/zap"
)

var (
	vehicleKinds = map[string]world.VehicleKind{
		"flying": world.VehicleFlying,
		"ground": world.VehicleGround,
		"ufo":    world.VehicleUFO,
	}
	vequipmentKinds = map[string]world.VEquipmentKind{
		"weapon":  world.VEquipmentWeapon,
		"engine":  world.VEquipmentEngine,
		"general": world.VEquipmentGeneral,
	}
	agentRoles = map[string]world.AgentRole{
		"soldier":    world.RoleSoldier,
		"physicist":  world.RolePhysicist,
		"biochemist": world.RoleBioChemist,
		"engineer":   world.RoleEngineer,
	}
	bodyParts = map[string]world.BodyPart{
		"body":      world.BodyPartBody,
		"legs":      world.BodyPartLegs,
		"helmet":    world.BodyPartHelmet,
		"left_arm":  world.BodyPartLeftArm,
		"right_arm": world.BodyPartRightArm,
	}
	researchKinds = map[string]world.ResearchKind{
		"physics":     world.ResearchPhysics,
		"biochem":     world.ResearchBioChem,
		"engineering": world.ResearchEngineering,
	}
)

// lookup maps an enum name; the empty name maps to the zero value.
func lookup[K comparable](m map[string]K, name, what, id string) (K, error) {
	var zero K
	if name == "" {
		return zero, nil
	}
	v, ok := m[name]
	if !ok {
		return zero, fmt.Errorf("%s: unknown %s %q", id, what, name)
	}
	return v, nil
}

// UnresolvedError lists content references that name missing entries. The
// content is fully loaded when Populate returns it; the references stay
// dangling and fail on dereference.
type UnresolvedError struct {
	Refs []error
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%d unresolved content references: %v", len(e.Refs), errors.Join(e.Refs...))
}

func (e *UnresolvedError) Unwrap() []error { return e.Refs }

// populator inserts content into a State. Bad rows are collected in errs,
// dangling references in unresolved.
type populator struct {
	s          *world.State
	errs       []error
	unresolved []error
}

func (p *populator) fail(err error) {
	p.errs = append(p.errs, err)
}

func (p *populator) insert(err error) {
	if err != nil {
		p.fail(err)
	}
}

// ref records an error if id is set but absent from the table.
func ref[T any](p *populator, t *state.Table[T], owner, id string) state.Ref[T] {
	if id == "" {
		return state.None[T]()
	}
	if !t.Has(id) {
		p.unresolved = append(p.unresolved, fmt.Errorf("%s: unknown %s %q", owner, t.Name(), id))
	}
	return t.Ref(id)
}

// entity returns a row inserted by insertAll.
func entity[T any](t *state.Table[T], id string) *T {
	v, _ := t.Lookup(id)
	return v
}

func refs[T any](p *populator, t *state.Table[T], owner string, ids []string) []state.Ref[T] {
	out := make([]state.Ref[T], 0, len(ids))
	for _, id := range ids {
		out = append(out, ref(p, t, owner, id))
	}
	return out
}

// Populate loads the content into s. Tables are filled in two passes so
// entries may name each other in any order. Bad enums and duplicate or
// empty ids abort the load with a joined error. Dangling references do not:
// every row is still linked and the references are reported in an
// *UnresolvedError.
func (c *Content) Populate(s *world.State) error {
	p := &populator{s: s}
	c.insertAll(p)
	if len(p.errs) > 0 {
		return errors.Join(p.errs...)
	}
	c.linkAll(p)
	s.Log.Info("content loaded",
		zap.Int("organisations", s.Organisations.Len()),
		zap.Int("cities", s.Cities.Len()),
		zap.Int("buildings", s.Buildings.Len()),
		zap.Int("vehicle_types", s.VehicleTypes.Len()),
		zap.Int("agent_types", s.AgentTypes.Len()),
		zap.Int("research_topics", s.ResearchTopics.Len()),
		zap.Int("unresolved", len(p.unresolved)),
	)
	if len(p.unresolved) > 0 {
		return &UnresolvedError{Refs: p.unresolved}
	}
	return nil
}

// insertAll creates every entity with its plain fields.
func (c *Content) insertAll(p *populator) {
	s := p.s
	for _, e := range c.Organisations {
		p.insert(s.Organisations.Insert(e.ID, &world.Organisation{
			ID: e.ID, Name: e.Name, Balance: e.Balance, Income: e.Income,
		}))
	}
	for _, e := range c.Cities {
		p.insert(s.Cities.Insert(e.ID, &world.City{ID: e.ID, Name: e.Name, Size: e.Size}))
	}
	for _, e := range c.Buildings {
		p.insert(s.Buildings.Insert(e.ID, &world.Building{
			ID: e.ID, Name: e.Name, Function: e.Function, Bounds: e.Bounds,
		}))
	}
	for _, e := range c.VehicleTypes {
		kind, err := lookup(vehicleKinds, e.Kind, "vehicle kind", e.ID)
		if err != nil {
			p.fail(err)
			continue
		}
		p.insert(s.VehicleTypes.Insert(e.ID, &world.VehicleType{
			ID:              e.ID,
			Name:            e.Name,
			Kind:            kind,
			TopSpeed:        e.TopSpeed,
			Health:          e.Health,
			CrashHealth:     e.CrashHealth,
			Aggressiveness:  e.Aggressiveness,
			Passengers:      e.Passengers,
			Score:           e.Score,
			EquipmentScreen: e.EquipmentScreen,
			CrewDeposit:     e.CrewDeposit,
		}))
	}
	for _, e := range c.VEquipment {
		kind, err := lookup(vequipmentKinds, e.Kind, "vehicle equipment kind", e.ID)
		if err != nil {
			p.fail(err)
			continue
		}
		p.insert(s.VEquipmentTypes.Insert(e.ID, &world.VEquipmentType{
			ID: e.ID, Name: e.Name, Kind: kind, Weight: e.Weight, Score: e.Score,
		}))
	}
	for _, e := range c.AgentTypes {
		role, err := lookup(agentRoles, e.Role, "agent role", e.ID)
		if err != nil {
			p.fail(err)
			continue
		}
		p.insert(s.AgentTypes.Insert(e.ID, &world.AgentType{
			ID: e.ID, Name: e.Name, Role: role, Playable: e.Playable, Health: e.Health,
		}))
	}
	for _, e := range c.AEquipment {
		kind, ok := world.ParseAEquipmentKind(e.Kind)
		if !ok {
			p.fail(fmt.Errorf("%s: unknown agent equipment kind %q", e.ID, e.Kind))
			continue
		}
		part, err := lookup(bodyParts, e.BodyPart, "body part", e.ID)
		if err != nil {
			p.fail(err)
			continue
		}
		p.insert(s.AEquipmentTypes.Insert(e.ID, &world.AEquipmentType{
			ID:        e.ID,
			Name:      e.Name,
			Kind:      kind,
			Weight:    e.Weight,
			Score:     e.Score,
			Armor:     e.Armor,
			TwoHanded: e.TwoHanded,
			BodyPart:  part,
			Damage:    e.Damage,
			MaxAmmo:   e.MaxAmmo,
		}))
	}
	for _, e := range c.DamageModifiers {
		p.insert(s.DamageModifiers.Insert(e.ID, &world.DamageModifier{ID: e.ID, Name: e.Name}))
	}
	for _, e := range c.DamageTypes {
		p.insert(s.DamageTypes.Insert(e.ID, &world.DamageType{
			ID: e.ID, Name: e.Name, IgnoreShield: e.IgnoreShield, Modifiers: e.Modifiers,
		}))
	}
	for _, e := range c.EquipmentSets {
		p.insert(s.EquipmentSets.Insert(e.ID, &world.EquipmentSet{
			ID: e.ID, MinScore: e.MinScore, MaxScore: e.MaxScore,
		}))
	}
	for _, e := range c.FacilityTypes {
		ft := &world.FacilityType{
			ID:        e.ID,
			Name:      e.Name,
			BuildTime: e.BuildTime,
			Size:      e.Size,
			Capacity:  e.Capacity,
			BuildCost: e.BuildCost,
			Fixed:     e.Fixed,
		}
		if e.Lab != "" {
			kind, err := lookup(researchKinds, e.Lab, "lab kind", e.ID)
			if err != nil {
				p.fail(err)
				continue
			}
			ft.HasLab, ft.LabKind = true, kind
		}
		p.insert(s.FacilityTypes.Insert(e.ID, ft))
	}
	for _, e := range c.BaseLayouts {
		p.insert(s.BaseLayouts.Insert(e.ID, &world.BaseLayout{ID: e.ID, Name: e.Name}))
	}
	for _, e := range c.SceneryTiles {
		p.insert(s.SceneryTileTypes.Insert(e.ID, &world.SceneryTileType{
			ID: e.ID, Name: e.Name, Constitution: e.Constitution, Repairable: e.Repairable,
		}))
	}
	for _, e := range c.UFOGrowth {
		id := world.UFOGrowthID(e.Difficulty, e.Week)
		p.insert(s.UFOGrowth.Insert(id, &world.UFOGrowth{ID: id, Week: e.Week}))
	}
	for _, e := range c.Research {
		kind, err := lookup(researchKinds, e.Kind, "research kind", e.ID)
		if err != nil {
			p.fail(err)
			continue
		}
		p.insert(s.ResearchTopics.Insert(e.ID, &world.ResearchTopic{
			ID: e.ID, Name: e.Name, Kind: kind, ManHours: e.ManHours,
		}))
	}
}

// linkAll fills the cross references once every table is populated.
func (c *Content) linkAll(p *populator) {
	s := p.s
	for _, e := range c.Organisations {
		o := entity(s.Organisations, e.ID)
		for other, v := range e.Relations {
			ref(p, s.Organisations, e.ID, other)
			o.SetRelation(other, v)
		}
	}
	for _, e := range c.Cities {
		city := entity(s.Cities, e.ID)
		for _, t := range e.Tiles {
			city.InitialTiles = append(city.InitialTiles, world.InitialTile{
				Position: world.Vec3i{X: t.X, Y: t.Y, Z: t.Z},
				Type:     ref(p, s.SceneryTileTypes, e.ID, t.Type),
			})
		}
		for _, pos := range e.Portals {
			city.Portals = append(city.Portals, &world.Portal{
				ID:       s.IDs.NewID("PORTAL_"),
				Position: pos.Float(),
			})
		}
	}
	for _, e := range c.Buildings {
		b := entity(s.Buildings, e.ID)
		b.City = ref(p, s.Cities, e.ID, e.City)
		b.Owner = ref(p, s.Organisations, e.ID, e.Owner)
		b.BaseLayout = ref(p, s.BaseLayouts, e.ID, e.BaseLayout)
	}
	for _, e := range c.VehicleTypes {
		vt := entity(s.VehicleTypes, e.ID)
		vt.Manufacturer = ref(p, s.Organisations, e.ID, e.Manufacturer)
		for _, ie := range e.InitialEquipment {
			vt.InitialEquipment = append(vt.InitialEquipment, world.InitialVEquipment{
				SlotX: ie.SlotX,
				SlotY: ie.SlotY,
				Type:  ref(p, s.VEquipmentTypes, e.ID, ie.Type),
			})
		}
		for agentType := range e.CrewDeposit {
			ref(p, s.AgentTypes, e.ID, agentType)
		}
	}
	for _, e := range c.VEquipment {
		entity(s.VEquipmentTypes, e.ID).Manufacturer = ref(p, s.Organisations, e.ID, e.Manufacturer)
	}
	for _, e := range c.AEquipment {
		t := entity(s.AEquipmentTypes, e.ID)
		t.Manufacturer = ref(p, s.Organisations, e.ID, e.Manufacturer)
		t.DamageModifier = ref(p, s.DamageModifiers, e.ID, e.DamageModifier)
		t.DamageType = ref(p, s.DamageTypes, e.ID, e.DamageType)
		t.WeaponTypes = refs(p, s.AEquipmentTypes, e.ID, e.WeaponTypes)
		t.AmmoTypes = refs(p, s.AEquipmentTypes, e.ID, e.AmmoTypes)
	}
	for _, e := range c.DamageTypes {
		for mod := range e.Modifiers {
			ref(p, s.DamageModifiers, e.ID, mod)
		}
	}
	for _, e := range c.EquipmentSets {
		set := entity(s.EquipmentSets, e.ID)
		for _, w := range e.Weapons {
			set.Weapons = append(set.Weapons, world.WeaponData{
				Weapon:     ref(p, s.AEquipmentTypes, e.ID, w.Weapon),
				Clip:       ref(p, s.AEquipmentTypes, e.ID, w.Clip),
				ClipAmount: w.ClipAmount,
			})
		}
		for _, g := range e.Grenades {
			set.Grenades = append(set.Grenades, world.GrenadeData{
				Grenade: ref(p, s.AEquipmentTypes, e.ID, g.Grenade),
				Amount:  g.Amount,
			})
		}
		for _, group := range e.Equipment {
			set.Equipment = append(set.Equipment, refs(p, s.AEquipmentTypes, e.ID, group))
		}
	}
	for _, e := range c.BaseLayouts {
		l := entity(s.BaseLayouts, e.ID)
		for _, f := range e.Facilities {
			l.StartingFacilities = append(l.StartingFacilities, world.StartingFacility{
				Type: ref(p, s.FacilityTypes, e.ID, f.Type),
				Pos:  world.FacilityPos{X: f.X, Y: f.Y},
			})
		}
	}
	for _, e := range c.UFOGrowth {
		id := world.UFOGrowthID(e.Difficulty, e.Week)
		g := entity(s.UFOGrowth, id)
		for _, v := range e.Vehicles {
			g.Entries = append(g.Entries, world.GrowthEntry{
				Type:  ref(p, s.VehicleTypes, id, v.Type),
				Count: v.Count,
			})
		}
	}
	for _, e := range c.Research {
		entity(s.ResearchTopics, e.ID).Requires = refs(p, s.ResearchTopics, e.ID, e.Requires)
	}

	in := c.Initial
	s.GravLiftSample = in.GravLiftSample
	for id := range in.AgentEquipment {
		ref(p, s.AEquipmentTypes, fileInitialProperty, id)
	}
	for id := range in.Agents {
		ref(p, s.AgentTypes, fileInitialProperty, id)
	}
	for _, loadout := range in.SoldierLoadouts {
		refs(p, s.AEquipmentTypes, fileInitialProperty, loadout)
	}
	crew := make([]world.CrewRoll, 0, len(in.AlienCrew))
	for _, r := range in.AlienCrew {
		ref(p, s.AgentTypes, fileInitialProperty, r.AgentType)
		crew = append(crew, world.CrewRoll{AgentType: r.AgentType, Spread: r.Spread})
	}
	s.Initial = world.InitialProperty{
		AgentEquipment:  in.AgentEquipment,
		Agents:          in.Agents,
		SoldierLoadouts: in.SoldierLoadouts,
		AlienCrew:       crew,
	}
}
