package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apocgo/server/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Fallback values returned when a rule function is missing or fails.
const (
	fallbackTakeoverChance  = 0
	fallbackDetectionChance = 10
	fallbackInfiltration    = 0
	fallbackIncome          = 0
	fallbackResearchRate    = 1
)

// Engine wraps a single gopher-lua VM and implements world.Rules from the
// loaded scripts. Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

var _ world.Rules = (*Engine)(nil)

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("MAX_INFILTRATION", lua.LNumber(world.MaxInfiltration))

	e := &Engine{vm: vm, log: log}

	// Shared helpers first, then rule scripts
	for _, sub := range []string{"core", "world"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) orgTable(o *world.Organisation) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LString(o.ID))
	t.RawSetString("infiltration", lua.LNumber(o.Infiltration))
	t.RawSetString("balance", lua.LNumber(o.Balance))
	t.RawSetString("income", lua.LNumber(o.Income))
	return t
}

func (e *Engine) buildingTable(b *world.Building) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LString(b.ID))
	t.RawSetString("function", lua.LString(b.Function))
	aliens := 0
	for _, n := range b.CurrentCrew {
		aliens += n
	}
	t.RawSetString("aliens", lua.LNumber(aliens))
	t.RawSetString("area", lua.LNumber(b.Bounds.Area()))
	return t
}

// TakeoverChance calls take_over_chance(org).
func (e *Engine) TakeoverChance(o *world.Organisation) int {
	return e.callInt("take_over_chance", fallbackTakeoverChance, e.orgTable(o))
}

// DetectionChance calls detection_chance(building, difficulty).
func (e *Engine) DetectionChance(b *world.Building, difficulty int) int {
	return e.callInt("detection_chance", fallbackDetectionChance,
		e.buildingTable(b), lua.LNumber(difficulty))
}

// InfiltrationDelta calls infiltration_delta(org, infested).
func (e *Engine) InfiltrationDelta(o *world.Organisation, infested int) int {
	return e.callInt("infiltration_delta", fallbackInfiltration,
		e.orgTable(o), lua.LNumber(infested))
}

// BuildingIncome calls building_income(building).
func (e *Engine) BuildingIncome(b *world.Building) int64 {
	return int64(e.callInt("building_income", fallbackIncome, e.buildingTable(b)))
}

// ResearchRate calls research_rate(lab, assigned).
func (e *Engine) ResearchRate(lab *world.ResearchLab, assigned int) int {
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LString(lab.ID))
	t.RawSetString("kind", lua.LNumber(lab.Kind))
	return e.callInt("research_rate", fallbackResearchRate, t, lua.LNumber(assigned))
}

// --- Lua helpers ---

// callInt calls a global Lua function and returns its number result, or
// fallback if the function is missing, fails or returns a non-number.
func (e *Engine) callInt(name string, fallback int, args ...lua.LValue) int {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return fallback
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned non-number",
			zap.String("func", name), zap.String("type", result.Type().String()))
		return fallback
	}
	return int(n)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
