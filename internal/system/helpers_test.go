package system

import (
	"testing"

	"github.com/apocgo/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeBattle struct {
	inited, finished, exited int
	ticks                    uint
}

func (b *fakeBattle) Init(*world.State)                { b.inited++ }
func (b *fakeBattle) Update(_ *world.State, ticks uint) { b.ticks += ticks }
func (b *fakeBattle) Finish(*world.State)              { b.finished++ }
func (b *fakeBattle) Exit(*world.State)                { b.exited++ }

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// newTestWorld builds a small two-city world: the player, aliens and
// civilians, two human-city buildings and the alien ship type.
func newTestWorld(t *testing.T, rules world.Rules) (*world.State, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	ws := world.NewState(world.Options{Seed: 42, Rules: rules}, zap.New(core))

	for _, o := range []*world.Organisation{
		{ID: ws.PlayerID, Name: "X-COM", Balance: 1000},
		{ID: ws.AliensID, Name: "Aliens"},
		{ID: ws.CivilianID, Name: "Civilians"},
	} {
		must(t, ws.Organisations.Insert(o.ID, o))
	}
	ws.Aliens().Resolve().SetRelation(ws.PlayerID, -100)

	must(t, ws.Cities.Insert(ws.HumanCityID, &world.City{ID: ws.HumanCityID, Name: "Mega-Primus", Size: world.Vec3i{X: 140, Y: 140, Z: 10}}))
	must(t, ws.Cities.Insert(ws.AlienCityID, &world.City{ID: ws.AlienCityID, Name: "Alien Dimension", Size: world.Vec3i{X: 140, Y: 140, Z: 10}}))

	must(t, ws.BaseLayouts.Insert("BASELAYOUT_1", &world.BaseLayout{ID: "BASELAYOUT_1"}))
	must(t, ws.Buildings.Insert("BUILDING_PLAYER", &world.Building{
		ID: "BUILDING_PLAYER", Name: "Base Site", City: ws.Cities.Ref(ws.HumanCityID),
		Owner: ws.Player(), Bounds: world.Rect{X0: 20, Y0: 20, X1: 24, Y1: 24},
	}))
	must(t, ws.Buildings.Insert("BUILDING_SLUMS", &world.Building{
		ID: "BUILDING_SLUMS", Name: "Slums", City: ws.Cities.Ref(ws.HumanCityID),
		Owner: ws.Civilian(), Bounds: world.Rect{X0: 60, Y0: 60, X1: 64, Y1: 66},
		BaseLayout: ws.BaseLayouts.Ref("BASELAYOUT_1"),
	}))

	must(t, ws.VehicleTypes.Insert(DefaultIncursionVehicleType, &world.VehicleType{
		ID: DefaultIncursionVehicleType, Name: "Assault Ship", Kind: world.VehicleUFO,
		Manufacturer: ws.Aliens(), TopSpeed: 4, Health: 300, Aggressiveness: 1,
		CrewDeposit: map[string]int{"AGENTTYPE_BRAINSUCKER": 2},
	}))
	return ws, logs
}
