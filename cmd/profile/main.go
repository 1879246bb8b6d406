// Command profile runs the demo simulation under pprof.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/internal/session"
	"github.com/ajitpratap0/respawn/internal/sim"
)

func main() {
	var (
		duration     = flag.Duration("duration", 10*time.Second, "Profiling duration")
		outputDir    = flag.String("output", "./profiles", "Output directory for profiles")
		profileTypes = flag.String("types", "cpu,memory", "Profile types (cpu,memory,block,mutex,goroutine,all)")
		waves        = flag.Int("waves", 1000, "Waves per simulation round")
		spawns       = flag.Int("spawns", 5, "Spawn attempts per group per wave")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -types cpu -duration 30s\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -types all -waves 5000\n", os.Args[0])
	}

	flag.Parse()

	types := parseProfileTypes(*profileTypes)
	if slices.Contains(types, "block") {
		runtime.SetBlockProfileRate(1)
	}
	if slices.Contains(types, "mutex") {
		runtime.SetMutexProfileFraction(1)
	}

	fmt.Printf("Profiling simulation for %v (%s) into %s\n", *duration, strings.Join(types, ","), *outputDir)

	if err := os.MkdirAll(*outputDir, 0755); err != nil { //nolint:gosec
		log.Fatalf("Failed to create output directory: %v", err)
	}

	if slices.Contains(types, "cpu") {
		f, err := os.Create(filepath.Join(*outputDir, "cpu.prof"))
		if err != nil {
			log.Fatalf("Failed to create CPU profile: %v", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Failed to start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	opts := sim.DefaultOptions()
	opts.Waves = *waves
	opts.SpawnsPerWave = *spawns
	opts.ClearUse = true
	opts.Resources = false

	rounds, spawned := 0, 0
	for ctx.Err() == nil {
		n, err := runRound(ctx, opts)
		if err != nil {
			log.Fatalf("Simulation failed: %v", err)
		}
		rounds++
		spawned += n
	}
	fmt.Printf("Completed %d rounds, %d spawns\n", rounds, spawned)

	if slices.Contains(types, "memory") {
		runtime.GC() // Get up-to-date statistics
		writeHeapProfile(filepath.Join(*outputDir, "mem.prof"))
	}

	for _, profileType := range types {
		switch profileType {
		case "block", "mutex", "goroutine":
			writeProfile(profileType, filepath.Join(*outputDir, profileType+".prof"))
		}
	}

	fmt.Printf("Profiling completed successfully\n")
}

// runRound runs one demo session to completion and returns how many
// instances it spawned. Running out of time mid-round is not an error.
func runRound(ctx context.Context, opts sim.Options) (int, error) {
	sess, err := session.New(ctx, sim.DemoConfig(), sim.DemoCatalog(), session.WithLogger(zap.NewNop()))
	if err != nil {
		return 0, err
	}
	defer func() { _ = sess.Close(context.Background()) }()

	report, err := sim.NewRunner(sess, opts).Run(ctx)
	if report == nil {
		return 0, err
	}
	return report.Spawned, nil
}

func writeHeapProfile(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("Failed to create memory profile: %v", err)
	}
	defer f.Close()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Fatalf("Failed to write memory profile: %v", err)
	}
	fmt.Printf("Memory profile written to: %s\n", filename)
}

// writeProfile writes a specific profile type to file
func writeProfile(profileName, filename string) {
	profile := pprof.Lookup(profileName)
	if profile == nil {
		fmt.Printf("Profile %s not found\n", profileName)
		return
	}

	f, err := os.Create(filename)
	if err != nil {
		log.Printf("Failed to create %s profile: %v", profileName, err)
		return
	}
	defer f.Close()

	if err := profile.WriteTo(f, 0); err != nil {
		log.Printf("Failed to write %s profile: %v", profileName, err)
		return
	}

	fmt.Printf("%s profile written to: %s\n", profileName, filename)
}

// parseProfileTypes parses the profile types string
func parseProfileTypes(typesStr string) []string {
	if typesStr == "all" {
		return []string{"cpu", "memory", "block", "mutex", "goroutine"}
	}

	parts := strings.Split(typesStr, ",")
	types := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "cpu", "memory", "mem", "block", "mutex", "goroutine":
			if part == "mem" {
				part = "memory"
			}
			types = append(types, part)
		}
	}

	return types
}
