package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stevenvo780/duetsim/internal/api"
	"github.com/stevenvo780/duetsim/internal/config"
	"github.com/stevenvo780/duetsim/internal/entropy"
	"github.com/stevenvo780/duetsim/internal/sim"
	"github.com/stevenvo780/duetsim/internal/telemetry"
)

type runFlags struct {
	configPath string
	seed       int64
	speed      float64
	duration   time.Duration
	apiPort    int
	dbPath     string
	verbose    bool
}

func runCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the simulation loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "random seed (0 = system entropy)")
	cmd.Flags().Float64Var(&flags.speed, "speed", 1, "time multiplier for the loop")
	cmd.Flags().DurationVar(&flags.duration, "for", 0, "stop after this wall-clock duration (0 = run until signal)")
	cmd.Flags().IntVar(&flags.apiPort, "api-port", 0, "override the observation API port")
	cmd.Flags().StringVar(&flags.dbPath, "db", "", "record telemetry to this SQLite file")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func runSimulation(cmd *cobra.Command, flags runFlags) error {
	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if flags.configPath != "" {
		loaded, err := config.Load(flags.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		slog.Info("config loaded", "path", flags.configPath)
	}

	// Flags override the file.
	if cmd.Flags().Changed("seed") {
		cfg.Seed = flags.seed
	}
	if cmd.Flags().Changed("api-port") {
		cfg.API.Enabled = true
		cfg.API.Port = flags.apiPort
	}
	if cmd.Flags().Changed("db") {
		cfg.Telemetry.Enabled = true
		cfg.Telemetry.Path = flags.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.CryptoSeed()
	}
	rng := entropy.NewSeeded(seed)
	slog.Info("duetsim starting", "seed", seed, "speed", flags.speed)

	var rec *telemetry.DB
	if cfg.Telemetry.Enabled {
		if dir := filepath.Dir(cfg.Telemetry.Path); dir != "." {
			os.MkdirAll(dir, 0755)
		}
		db, err := telemetry.Open(cfg.Telemetry.Path)
		if err != nil {
			return fmt.Errorf("opening telemetry db: %w", err)
		}
		defer db.Close()
		rec = db
		slog.Info("telemetry enabled", "path", cfg.Telemetry.Path)
	}

	simulation := sim.New(cfg, rng, rec, logger)

	eng := sim.NewEngine(cfg.LogicInterval(), cfg.MetricsInterval())
	eng.Speed = flags.speed
	eng.OnLogic = simulation.TickLogic
	eng.OnMetrics = simulation.TickMetrics

	if cfg.API.Enabled {
		server := &api.Server{Sim: simulation, Eng: eng, Port: cfg.API.Port}
		server.Start()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	if flags.duration > 0 {
		go func() {
			<-time.After(flags.duration)
			slog.Info("run duration elapsed, shutting down", "after", flags.duration)
			eng.Stop()
		}()
	}

	names := make([]string, 0, 2)
	for _, e := range simulation.Entities() {
		names = append(names, e.Name)
	}
	fmt.Printf("\nduetsim is alive: %s and %s share the world.\n", names[0], names[1])
	if cfg.API.Enabled {
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	m := simulation.Emergence().Metrics()
	slog.Info("simulation stopped",
		"ticks", simulation.Tick,
		"resonance", fmt.Sprintf("%.1f", simulation.Circle.Resonance),
		"autopoiesis", fmt.Sprintf("%.3f", m.Autopoiesis),
	)
	return nil
}
