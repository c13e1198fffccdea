// contentcheck loads a content directory into a fresh world, bootstraps a
// new game and simulates a few days, reporting anything that fails to
// resolve.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/apocgo/server/internal/data"
	"github.com/apocgo/server/internal/scripting"
	"github.com/apocgo/server/internal/system"
	"github.com/apocgo/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: contentcheck <data dir> <scripts dir> [days]")
		os.Exit(1)
	}
	days := 1
	if len(os.Args) > 3 {
		n, err := strconv.Atoi(os.Args[3])
		if err != nil || n < 0 {
			fmt.Fprintf(os.Stderr, "bad day count %q\n", os.Args[3])
			os.Exit(1)
		}
		days = n
	}

	// Errors are counted so ref misses during the run fail the check.
	errCount := 0
	log := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		zapcore.WarnLevel,
	), zap.Hooks(func(e zapcore.Entry) error {
		if e.Level >= zapcore.ErrorLevel {
			errCount++
		}
		return nil
	}))
	defer log.Sync()

	content, err := data.LoadContent(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rules, err := scripting.NewEngine(os.Args[2], log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rules.Close()

	ws := world.NewState(world.Options{Difficulty: 2, Seed: 1, Rules: rules}, log)
	if err := content.Populate(ws); err != nil {
		var unresolved *data.UnresolvedError
		if !errors.As(err, &unresolved) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, e := range unresolved.Refs {
			log.Error("unresolved content reference", zap.Error(e))
		}
	}

	cfg := system.DefaultConfig()
	system.StartGame(ws, cfg)
	if err := system.FillPlayerStartingProperty(ws); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	system.InitState(ws)
	ws.Bus.Flush()

	sc := system.NewScheduler(ws, cfg, nil)
	for i := 0; i < days*world.TicksPerDay/world.TurboTicks; i++ {
		sc.Update(world.TurboTicks)
		ws.Bus.Flush()
	}

	fmt.Printf("Organisations: %d\n", ws.Organisations.Len())
	fmt.Printf("Cities:        %d\n", ws.Cities.Len())
	fmt.Printf("Buildings:     %d\n", ws.Buildings.Len())
	fmt.Printf("Vehicles:      %d\n", ws.Vehicles.Len())
	fmt.Printf("Agents:        %d\n", ws.Agents.Len())
	fmt.Printf("Bases:         %d\n", ws.Bases.Len())
	fmt.Printf("Simulated to:  %s\n", ws.Time)
	for _, m := range ws.Messages.Entries() {
		fmt.Printf("  [%s] %s\n", m.Time, m.Text)
	}
	system.Teardown(ws)

	if errCount > 0 {
		fmt.Fprintf(os.Stderr, "%d errors logged\n", errCount)
		os.Exit(1)
	}
	fmt.Println("OK")
}
