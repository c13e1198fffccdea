package world

import (
	"github.com/apocgo/server/internal/core/state"
)

// AgentRole decides how an agent is employed at a base.
type AgentRole int

const (
	RoleSoldier AgentRole = iota
	RolePhysicist
	RoleBioChemist
	RoleEngineer
)

// LabKind is the lab discipline a scientist role works in.
func (r AgentRole) LabKind() (ResearchKind, bool) {
	switch r {
	case RolePhysicist:
		return ResearchPhysics, true
	case RoleBioChemist:
		return ResearchBioChem, true
	case RoleEngineer:
		return ResearchEngineering, true
	default:
		return 0, false
	}
}

func (r AgentRole) String() string {
	switch r {
	case RolePhysicist:
		return "physicist"
	case RoleBioChemist:
		return "biochemist"
	case RoleEngineer:
		return "engineer"
	default:
		return "soldier"
	}
}

type AgentType struct {
	ID       string
	Name     string
	Role     AgentRole
	Playable bool
	Health   int
	// GravLiftSfx is linked from the common sample on init.
	GravLiftSfx string
}

// BodyPart is where a piece of armour is worn.
type BodyPart int

const (
	BodyPartBody BodyPart = iota
	BodyPartLegs
	BodyPartHelmet
	BodyPartLeftArm
	BodyPartRightArm
)

// EquipmentSlot is a place on an agent's equipment screen.
type EquipmentSlot int

const (
	SlotGeneral EquipmentSlot = iota
	SlotRightHand
	SlotLeftHand
	SlotArmorBody
	SlotArmorLegs
	SlotArmorHelmet
	SlotArmorLeftArm
	SlotArmorRightArm
)

// ArmorSlot maps a body part to its armour slot.
func ArmorSlot(p BodyPart) EquipmentSlot {
	switch p {
	case BodyPartLegs:
		return SlotArmorLegs
	case BodyPartHelmet:
		return SlotArmorHelmet
	case BodyPartLeftArm:
		return SlotArmorLeftArm
	case BodyPartRightArm:
		return SlotArmorRightArm
	default:
		return SlotArmorBody
	}
}

// AEquipmentKind classifies agent equipment.
type AEquipmentKind int

const (
	AEquipmentArmor AEquipmentKind = iota
	AEquipmentWeapon
	AEquipmentGrenade
	AEquipmentAmmo
	AEquipmentMotionScanner
	AEquipmentStructureProbe
	AEquipmentVortexAnalyzer
	AEquipmentMultiTracker
	AEquipmentMindShield
	AEquipmentMindBender
	AEquipmentAlienDetector
	AEquipmentDisruptorShield
	AEquipmentTeleporter
	AEquipmentCloakingField
	AEquipmentDimensionForceField
	AEquipmentMediKit
	AEquipmentBrainsucker
	AEquipmentPopper
	AEquipmentSpawner
	AEquipmentLoot
)

var aequipmentKindNames = map[string]AEquipmentKind{
	"armor":                 AEquipmentArmor,
	"weapon":                AEquipmentWeapon,
	"grenade":               AEquipmentGrenade,
	"ammo":                  AEquipmentAmmo,
	"motion_scanner":        AEquipmentMotionScanner,
	"structure_probe":       AEquipmentStructureProbe,
	"vortex_analyzer":       AEquipmentVortexAnalyzer,
	"multi_tracker":         AEquipmentMultiTracker,
	"mind_shield":           AEquipmentMindShield,
	"mind_bender":           AEquipmentMindBender,
	"alien_detector":        AEquipmentAlienDetector,
	"disruptor_shield":      AEquipmentDisruptorShield,
	"teleporter":            AEquipmentTeleporter,
	"cloaking_field":        AEquipmentCloakingField,
	"dimension_force_field": AEquipmentDimensionForceField,
	"medikit":               AEquipmentMediKit,
	"brainsucker":           AEquipmentBrainsucker,
	"popper":                AEquipmentPopper,
	"spawner":               AEquipmentSpawner,
	"loot":                  AEquipmentLoot,
}

// ParseAEquipmentKind maps a content name to its kind.
func ParseAEquipmentKind(name string) (AEquipmentKind, bool) {
	k, ok := aequipmentKindNames[name]
	return k, ok
}

type DamageModifier struct {
	ID   string
	Name string
}

// DamageType scales raw damage by the target's damage modifier.
type DamageType struct {
	ID           string
	Name         string
	IgnoreShield bool
	// Modifiers maps a damage modifier id to a percentage.
	Modifiers map[string]int
}

// DamageFor applies the percentage registered for mod; unknown modifiers
// pass damage through unchanged.
func (d *DamageType) DamageFor(damage int, mod state.Ref[DamageModifier]) int {
	pct, ok := d.Modifiers[mod.ID()]
	if !ok {
		return damage
	}
	return damage * pct / 100
}

type AEquipmentType struct {
	ID           string
	Name         string
	Kind         AEquipmentKind
	Manufacturer state.Ref[Organisation]
	Weight       int
	Score        int
	Armor        int
	TwoHanded    bool

	BodyPart       BodyPart
	DamageModifier state.Ref[DamageModifier]

	Damage     int
	MaxAmmo    int
	DamageType state.Ref[DamageType]

	// WeaponTypes lists the weapons an ammo type fits. AmmoTypes is the
	// reverse link, rebuilt on init.
	WeaponTypes []state.Ref[AEquipmentType]
	AmmoTypes   []state.Ref[AEquipmentType]
}

type AEquipment struct {
	Type state.Ref[AEquipmentType]
	Slot EquipmentSlot
	Ammo int
}

// AgentUnit is the agent's presence in a running battle.
type AgentUnit struct {
	Position Vec3
	Dead     bool
}

type Agent struct {
	ID    string
	Name  string
	Type  state.Ref[AgentType]
	Owner state.Ref[Organisation]
	Home  state.Ref[Base]

	Equipment []*AEquipment
	// LeftHand and RightHand cache the items in the hand slots.
	LeftHand  *AEquipment
	RightHand *AEquipment

	Unit *AgentUnit
}

// FirstItemInSlot returns the first item held in slot, or nil.
func (a *Agent) FirstItemInSlot(slot EquipmentSlot) *AEquipment {
	for _, e := range a.Equipment {
		if e.Slot == slot {
			return e
		}
	}
	return nil
}

// UpdateHands recomputes the hand shortcuts.
func (a *Agent) UpdateHands() {
	a.LeftHand = a.FirstItemInSlot(SlotLeftHand)
	a.RightHand = a.FirstItemInSlot(SlotRightHand)
}

// AddEquipment puts an item into a given slot.
func (a *Agent) AddEquipment(t state.Ref[AEquipmentType], slot EquipmentSlot) *AEquipment {
	e := &AEquipment{Type: t, Slot: slot}
	if typ, ok := t.Get(); ok && typ.Kind == AEquipmentWeapon {
		e.Ammo = typ.MaxAmmo
	}
	a.Equipment = append(a.Equipment, e)
	if slot == SlotLeftHand || slot == SlotRightHand {
		a.UpdateHands()
	}
	return e
}

// AddEquipmentByType places the item in the first compatible free slot:
// armour to its body part, hand-held items to a free hand, everything else
// to the general slot.
func (a *Agent) AddEquipmentByType(t state.Ref[AEquipmentType]) *AEquipment {
	typ, ok := t.Get()
	if !ok {
		return nil
	}
	switch typ.Kind {
	case AEquipmentArmor:
		if slot := ArmorSlot(typ.BodyPart); a.FirstItemInSlot(slot) == nil {
			return a.AddEquipment(t, slot)
		}
	case AEquipmentAmmo, AEquipmentGrenade, AEquipmentMediKit, AEquipmentLoot:
	default:
		if a.FirstItemInSlot(SlotRightHand) == nil {
			return a.AddEquipment(t, SlotRightHand)
		}
		if !typ.TwoHanded && a.FirstItemInSlot(SlotLeftHand) == nil {
			return a.AddEquipment(t, SlotLeftHand)
		}
	}
	return a.AddEquipment(t, SlotGeneral)
}

// WeaponData is a weapon with its clips.
type WeaponData struct {
	Weapon     state.Ref[AEquipmentType]
	Clip       state.Ref[AEquipmentType]
	ClipAmount int
}

type GrenadeData struct {
	Grenade state.Ref[AEquipmentType]
	Amount  int
}

// EquipmentSet is a loadout template for agents of a score band.
type EquipmentSet struct {
	ID        string
	MinScore  int
	MaxScore  int
	Weapons   []WeaponData
	Grenades  []GrenadeData
	Equipment [][]state.Ref[AEquipmentType]
}

// IsAppropriate reports whether score falls in [MinScore, MaxScore).
func (e *EquipmentSet) IsAppropriate(score int) bool {
	return score >= e.MinScore && score < e.MaxScore
}

// GenerateEquipmentList rolls one weapon, one grenade entry and one
// equipment entry from the set.
func (e *EquipmentSet) GenerateEquipmentList(s *State) []state.Ref[AEquipmentType] {
	var out []state.Ref[AEquipmentType]
	if len(e.Weapons) > 0 {
		w := e.Weapons[s.Rng.Intn(len(e.Weapons))]
		out = append(out, w.Weapon)
		for i := 0; i < w.ClipAmount && !w.Clip.IsEmpty(); i++ {
			out = append(out, w.Clip)
		}
	}
	if len(e.Grenades) > 0 {
		g := e.Grenades[s.Rng.Intn(len(e.Grenades))]
		for i := 0; i < g.Amount; i++ {
			out = append(out, g.Grenade)
		}
	}
	if len(e.Equipment) > 0 {
		out = append(out, e.Equipment[s.Rng.Intn(len(e.Equipment))]...)
	}
	return out
}

// EquipmentSetByScore returns the first set appropriate for score.
func EquipmentSetByScore(s *State, score int) (*EquipmentSet, bool) {
	var found *EquipmentSet
	s.EquipmentSets.Each(func(_ string, e *EquipmentSet) bool {
		if e.IsAppropriate(score) {
			found = e
			return false
		}
		return true
	})
	return found, found != nil
}
