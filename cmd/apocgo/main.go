package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/apocgo/server/internal/config"
	"github.com/apocgo/server/internal/data"
	"github.com/apocgo/server/internal/observability"
	"github.com/apocgo/server/internal/persist"
	"github.com/apocgo/server/internal/scripting"
	"github.com/apocgo/server/internal/system"
	"github.com/apocgo/server/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              apocgo  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       city simulation · world core        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s\n\n", serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("APOC_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 3. Observability
	printSection("observability")
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, log)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	var metrics *observability.SchedulerCollector
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metrics, err = observability.NewSchedulerCollector(prometheus.NewRegistry())
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsSrv = &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
		printOK("metrics on " + cfg.Metrics.Listen)
	}
	if cfg.Tracing.Enabled {
		printOK("tracing to stdout")
	}
	fmt.Println()

	// 4. Rules and world state
	printSection("content")
	rules, err := scripting.NewEngine(cfg.Content.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	defer rules.Close()

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ws := world.NewState(world.Options{
		Difficulty:      cfg.Game.Difficulty,
		Seed:            seed,
		PlayerID:        cfg.Game.PlayerOrg,
		AliensID:        cfg.Game.AlienOrg,
		CivilianID:      cfg.Game.CivilianOrg,
		HumanCityID:     cfg.Game.HumanCity,
		AlienCityID:     cfg.Game.AlienCity,
		MessageCapacity: cfg.Game.MessageCapacity,
		Rules:           rules,
	}, log)

	content, err := data.LoadContent(cfg.Content.DataDir)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	if err := content.Populate(ws); err != nil {
		var unresolved *data.UnresolvedError
		if !errors.As(err, &unresolved) {
			return fmt.Errorf("populate content: %w", err)
		}
		for _, e := range unresolved.Refs {
			log.Error("unresolved content reference", zap.Error(e))
		}
		printStat("unresolved references", len(unresolved.Refs))
	}
	printStat("organisations", ws.Organisations.Len())
	printStat("cities", ws.Cities.Len())
	printStat("buildings", ws.Buildings.Len())
	printStat("vehicle types", ws.VehicleTypes.Len())
	printStat("agent equipment types", ws.AEquipmentTypes.Len())
	printStat("research topics", ws.ResearchTopics.Len())
	fmt.Println()

	// 5. Optional PostgreSQL archive
	var persistence *system.PersistenceSystem
	if cfg.Database.Enabled {
		printSection("database")
		archive, err := persist.OpenArchive(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer archive.Close()
		printOK("PostgreSQL archive ready")

		counterRepo := persist.NewCounterRepo(archive)
		messageRepo := persist.NewMessageRepo(archive)
		counters, err := counterRepo.LoadCounters(ctx)
		if err != nil {
			return fmt.Errorf("load id counters: %w", err)
		}
		for prefix, n := range counters {
			ws.IDs.Seed(prefix, n)
		}
		recent, err := messageRepo.RecentMessages(ctx, ws.Messages.Cap())
		if err != nil {
			return fmt.Errorf("load messages: %w", err)
		}
		for _, m := range recent {
			ws.Messages.Push(m)
		}
		printStat("id counters", len(counters))
		printStat("archived messages", len(recent))
		persistence = system.NewPersistenceSystem(ws, counterRepo, messageRepo, system.DefaultPersistInterval)
		writerCtx, stopWriter := context.WithCancel(context.Background())
		defer stopWriter()
		go persistence.Run(writerCtx)
		fmt.Println()
	}

	// 6. Start or resume the game
	sched := schedulerConfig(cfg)
	if cfg.Game.NewGame {
		system.StartGame(ws, sched)
		if err := system.FillPlayerStartingProperty(ws); err != nil {
			return fmt.Errorf("starting property: %w", err)
		}
	}
	system.InitState(ws)

	scheduler := system.NewScheduler(ws, sched, metrics)
	if persistence != nil {
		scheduler.Register(persistence)
	}
	ws.Bus.Flush()

	// 7. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("game loop started (step: %s, %d ticks)", cfg.Server.TickRate, cfg.Server.TicksPerStep))
	printReady(fmt.Sprintf("%s, funds %s", ws.Time, ws.PlayerBalance()))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			if cfg.Server.Turbo && scheduler.CanTurbo() {
				scheduler.UpdateTurbo()
			} else {
				scheduler.Update(cfg.Server.TicksPerStep)
			}
			ws.Bus.Flush()
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			if persistence != nil {
				persistence.Close()
			}
			system.Teardown(ws)
			if metricsSrv != nil {
				stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
				if err := metricsSrv.Shutdown(stopCtx); err != nil {
					log.Warn("metrics server shutdown failed", zap.Error(err))
				}
				stop()
			}
			log.Info("server stopped")
			return nil
		}
	}
}

func schedulerConfig(cfg *config.Config) system.Config {
	return system.Config{
		Cascade:                 system.CascadePolicy{OneEventPerEpoch: cfg.Cascade.OneEventPerEpoch},
		AlienIncursionsPerDay:   cfg.Game.AlienIncursionsPerDay,
		IncursionAttempts:       cfg.Game.IncursionAttempts,
		IncursionVehicleType:    cfg.Game.IncursionVehicleType,
		StartingVehiclesPerType: cfg.Game.StartingVehiclesPerType,
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
