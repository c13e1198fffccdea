package data

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apocgo/server/internal/world"
	"gopkg.in/yaml.v3"
)

// Content file names under the data directory. Missing files load as empty.
const (
	fileOrganisations   = "organisations.yaml"
	fileCities          = "cities.yaml"
	fileBuildings       = "buildings.yaml"
	fileVehicleTypes    = "vehicle_types.yaml"
	fileVehicleEquip    = "vehicle_equipment.yaml"
	fileAgentTypes      = "agent_types.yaml"
	fileAgentEquip      = "agent_equipment.yaml"
	fileDamage          = "damage.yaml"
	fileEquipmentSets   = "equipment_sets.yaml"
	fileFacilities      = "facilities.yaml"
	fileScenery         = "scenery.yaml"
	fileUFOGrowth       = "ufo_growth.yaml"
	fileResearch        = "research.yaml"
	fileInitialProperty = "initial.yaml"
)

type OrganisationEntry struct {
	ID        string             `yaml:"id"`
	Name      string             `yaml:"name"`
	Balance   int64              `yaml:"balance"`
	Income    int64              `yaml:"income"`
	Relations map[string]float64 `yaml:"relations"`
}

// TileEntry is one pre-placed scenery tile of a city.
type TileEntry struct {
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
	Z    int    `yaml:"z"`
	Type string `yaml:"type"`
}

type CityEntry struct {
	ID      string        `yaml:"id"`
	Name    string        `yaml:"name"`
	Size    world.Vec3i   `yaml:"size"`
	Tiles   []TileEntry   `yaml:"tiles"`
	Portals []world.Vec3i `yaml:"portals"` // empty = generated on init
}

type BuildingEntry struct {
	ID         string     `yaml:"id"`
	Name       string     `yaml:"name"`
	Function   string     `yaml:"function"`
	City       string     `yaml:"city"`
	Owner      string     `yaml:"owner"`
	Bounds     world.Rect `yaml:"bounds"`
	BaseLayout string     `yaml:"base_layout"`
}

type InitialVEquipmentEntry struct {
	SlotX int    `yaml:"slot_x"`
	SlotY int    `yaml:"slot_y"`
	Type  string `yaml:"type"`
}

type VehicleTypeEntry struct {
	ID               string                   `yaml:"id"`
	Name             string                   `yaml:"name"`
	Kind             string                   `yaml:"kind"` // flying, ground, ufo
	Manufacturer     string                   `yaml:"manufacturer"`
	TopSpeed         float64                  `yaml:"top_speed"`
	Health           int                      `yaml:"health"`
	CrashHealth      int                      `yaml:"crash_health"`
	Aggressiveness   float64                  `yaml:"aggressiveness"`
	Passengers       int                      `yaml:"passengers"`
	Score            int                      `yaml:"score"`
	EquipmentScreen  bool                     `yaml:"equipment_screen"`
	InitialEquipment []InitialVEquipmentEntry `yaml:"initial_equipment"`
	CrewDeposit      map[string]int           `yaml:"crew_deposit"`
}

type VEquipmentEntry struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Kind         string `yaml:"kind"` // weapon, engine, general
	Manufacturer string `yaml:"manufacturer"`
	Weight       int    `yaml:"weight"`
	Score        int    `yaml:"score"`
}

type AgentTypeEntry struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Playable bool   `yaml:"playable"`
	Health   int    `yaml:"health"`
}

type AEquipmentEntry struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Kind           string   `yaml:"kind"`
	Manufacturer   string   `yaml:"manufacturer"`
	Weight         int      `yaml:"weight"`
	Score          int      `yaml:"score"`
	Armor          int      `yaml:"armor"`
	TwoHanded      bool     `yaml:"two_handed"`
	BodyPart       string   `yaml:"body_part"`
	DamageModifier string   `yaml:"damage_modifier"`
	Damage         int      `yaml:"damage"`
	MaxAmmo        int      `yaml:"max_ammo"`
	DamageType     string   `yaml:"damage_type"`
	WeaponTypes    []string `yaml:"weapon_types"`
	AmmoTypes      []string `yaml:"ammo_types"`
}

type DamageModifierEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type DamageTypeEntry struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	IgnoreShield bool           `yaml:"ignore_shield"`
	Modifiers    map[string]int `yaml:"modifiers"` // modifier id -> percent
}

type damageFile struct {
	Modifiers []DamageModifierEntry `yaml:"modifiers"`
	Types     []DamageTypeEntry     `yaml:"types"`
}

type WeaponEntry struct {
	Weapon     string `yaml:"weapon"`
	Clip       string `yaml:"clip"`
	ClipAmount int    `yaml:"clip_amount"`
}

type GrenadeEntry struct {
	Grenade string `yaml:"grenade"`
	Amount  int    `yaml:"amount"`
}

type EquipmentSetEntry struct {
	ID        string         `yaml:"id"`
	MinScore  int            `yaml:"min_score"`
	MaxScore  int            `yaml:"max_score"`
	Weapons   []WeaponEntry  `yaml:"weapons"`
	Grenades  []GrenadeEntry `yaml:"grenades"`
	Equipment [][]string     `yaml:"equipment"`
}

type FacilityTypeEntry struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	BuildTime int    `yaml:"build_time"` // days
	Size      int    `yaml:"size"`
	Capacity  int    `yaml:"capacity"`
	Lab       string `yaml:"lab"` // physics, biochem, engineering or empty
	BuildCost int64  `yaml:"build_cost"`
	Fixed     bool   `yaml:"fixed"`
}

type LayoutFacilityEntry struct {
	Type string `yaml:"type"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

type BaseLayoutEntry struct {
	ID         string                `yaml:"id"`
	Name       string                `yaml:"name"`
	Facilities []LayoutFacilityEntry `yaml:"facilities"`
}

type facilityFile struct {
	Types   []FacilityTypeEntry `yaml:"types"`
	Layouts []BaseLayoutEntry   `yaml:"layouts"`
}

type SceneryTileEntry struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Constitution int    `yaml:"constitution"`
	Repairable   bool   `yaml:"repairable"`
}

type GrowthVehicleEntry struct {
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
}

// UFOGrowthEntry is keyed by difficulty and week; week 0 is the fallback.
type UFOGrowthEntry struct {
	Difficulty int                  `yaml:"difficulty"`
	Week       int                  `yaml:"week"`
	Vehicles   []GrowthVehicleEntry `yaml:"vehicles"`
}

type ResearchEntry struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	ManHours int      `yaml:"man_hours"`
	Requires []string `yaml:"requires"`
}

type CrewRollEntry struct {
	AgentType string `yaml:"agent_type"`
	Spread    int    `yaml:"spread"`
}

// InitialEntry is the new-game kit and the shared sounds.
type InitialEntry struct {
	GravLiftSample  string          `yaml:"grav_lift_sample"`
	AgentEquipment  map[string]int  `yaml:"agent_equipment"`
	Agents          map[string]int  `yaml:"agents"`
	SoldierLoadouts [][]string      `yaml:"soldier_loadouts"`
	AlienCrew       []CrewRollEntry `yaml:"alien_crew"`
}

// Content is every static table read from the data directory.
type Content struct {
	Organisations   []OrganisationEntry
	Cities          []CityEntry
	Buildings       []BuildingEntry
	VehicleTypes    []VehicleTypeEntry
	VEquipment      []VEquipmentEntry
	AgentTypes      []AgentTypeEntry
	AEquipment      []AEquipmentEntry
	DamageModifiers []DamageModifierEntry
	DamageTypes     []DamageTypeEntry
	EquipmentSets   []EquipmentSetEntry
	FacilityTypes   []FacilityTypeEntry
	BaseLayouts     []BaseLayoutEntry
	SceneryTiles    []SceneryTileEntry
	UFOGrowth       []UFOGrowthEntry
	Research        []ResearchEntry
	Initial         InitialEntry
}

// LoadContent reads all content files from dir.
func LoadContent(dir string) (*Content, error) {
	c := &Content{}
	var dmg damageFile
	var fac facilityFile
	files := []struct {
		name string
		out  any
	}{
		{fileOrganisations, &c.Organisations},
		{fileCities, &c.Cities},
		{fileBuildings, &c.Buildings},
		{fileVehicleTypes, &c.VehicleTypes},
		{fileVehicleEquip, &c.VEquipment},
		{fileAgentTypes, &c.AgentTypes},
		{fileAgentEquip, &c.AEquipment},
		{fileDamage, &dmg},
		{fileEquipmentSets, &c.EquipmentSets},
		{fileFacilities, &fac},
		{fileScenery, &c.SceneryTiles},
		{fileUFOGrowth, &c.UFOGrowth},
		{fileResearch, &c.Research},
		{fileInitialProperty, &c.Initial},
	}
	for _, f := range files {
		if err := loadYAML(filepath.Join(dir, f.name), f.out); err != nil {
			return nil, err
		}
	}
	c.DamageModifiers, c.DamageTypes = dmg.Modifiers, dmg.Types
	c.FacilityTypes, c.BaseLayouts = fac.Types, fac.Layouts
	return c, nil
}

func loadYAML(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
