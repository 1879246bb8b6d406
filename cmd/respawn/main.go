package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/internal/session"
	"github.com/ajitpratap0/respawn/internal/sim"
	"github.com/ajitpratap0/respawn/pkg/config"
	"github.com/ajitpratap0/respawn/pkg/logger"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	root := &cobra.Command{
		Use:   "respawn",
		Short: "respawn - object pools and spawn point placement",
		Long: `respawn pre-instantiates pooled game objects and places them at spawn points
chosen relative to a tracked reference position. This tool runs deterministic
simulations against a session configuration and manages configuration files.`,
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("respawn v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newSimulateCmd(), newConfigCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type simulateFlags struct {
	configFile    string
	output        string
	logLevel      string
	metricsListen string
	seed          uint64
	trace         bool
	hold          time.Duration
	opts          sim.Options
}

func newSimulateCmd() *cobra.Command {
	f := simulateFlags{opts: sim.DefaultOptions()}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run spawn waves against a session",
		Long: `Run deterministic spawn waves against a session and print a JSON report.
Without --config the built-in demo session (Enemy and Coin pools) is used.

Example:
  respawn simulate --config respawn.yaml --waves 20 --seed 7 --metrics-listen :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd.Context(), &f)
		},
	}

	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to session configuration YAML (default: demo session)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&f.metricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Seed for the random spawn policy (0 keeps the configured seed)")
	cmd.Flags().BoolVar(&f.trace, "trace", false, "Export spawn traces to stderr")
	cmd.Flags().DurationVar(&f.hold, "hold", 0, "Keep serving metrics this long after the run")
	cmd.Flags().IntVar(&f.opts.Waves, "waves", f.opts.Waves, "Number of waves")
	cmd.Flags().IntVar(&f.opts.SpawnsPerWave, "spawns", f.opts.SpawnsPerWave, "Spawn attempts per group per wave")
	cmd.Flags().IntVar(&f.opts.Lifetime, "lifetime", f.opts.Lifetime, "Waves a spawned instance stays out")
	cmd.Flags().BoolVar(&f.opts.ClearUse, "clear-use", false, "Reset spawn point usage every wave")
	return cmd
}

func loadSessionConfig(path string) (*config.Config, error) {
	if path == "" {
		return sim.DemoConfig(), nil
	}
	return config.Load(path)
}

func runSimulation(ctx context.Context, f *simulateFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cfg, err := loadSessionConfig(f.configFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.seed != 0 {
		cfg.Spawn.Seed = f.seed
	}
	if f.trace {
		cfg.Tracing.Enabled = true
		cfg.Tracing.ExporterType = "stdout"
	}
	if f.metricsListen != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = f.metricsListen
	}

	base, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger configuration error: %w", err)
	}
	defer func() { _ = base.Sync() }()
	log := base.With(zap.String("component", "respawn-cli"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sess, err := session.New(ctx, cfg, sim.DemoCatalog(),
		session.WithLogger(log),
		session.WithPrometheus(reg),
		session.WithTraceWriter(os.Stderr))
	if sess == nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	if err != nil {
		log.Warn("session started with errors", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sess.Close(closeCtx); err != nil {
			log.Warn("failed to close session", zap.Error(err))
		}
	}()

	var srv *http.Server
	if cfg.Metrics.Listen != "" {
		srv = serveMetrics(cfg.Metrics.Listen, reg, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	report, err := sim.NewRunner(sess, f.opts).Run(ctx)
	if report == nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	if err != nil {
		log.Warn("simulation stopped early", zap.Error(err))
	}

	out := os.Stdout
	if f.output != "" {
		file, err := os.Create(f.output)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		out = file
	}
	if err := report.WriteJSON(out); err != nil {
		return err
	}

	if srv != nil && f.hold > 0 {
		log.Info("holding metrics endpoint", zap.Duration("hold", f.hold))
		select {
		case <-time.After(f.hold):
		case <-ctx.Done():
		}
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
