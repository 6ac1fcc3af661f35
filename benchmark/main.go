// Package main provides a performance benchmarking tool for the lakerisk CLI.
// It measures execution times across species and command types,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - lakerisk binary installed and available in PATH
//
// Usage: go run benchmark/main.go [output-dir]
//
//	output-dir: Directory that receives the CSV results and the benchmark cache database
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Target      string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkCase is one CLI invocation to time.
type BenchmarkCase struct {
	Target  string
	Command string
	Args    []string
	Expect  string // Substring that marks a successful run
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	OutputDir   string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Cases       []BenchmarkCase
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [output-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		OutputDir:   os.Args[1],
		Timeout:     2 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Cases: []BenchmarkCase{
			{"Oreochromis niloticus", "predict", []string{"predict", "Oreochromis niloticus"}, "Scored in"},
			{"Clarias batrachus", "predict", []string{"predict", "Clarias batrachus", "--ph", "6.2", "--temperature", "31"}, "Scored in"},
			{"Cyprinus carpio", "table", []string{"table", "Cyprinus carpio"}, "Scored in"},
			{"all species", "rank", []string{"rank"}, "Ranked"},
			{"model", "importance", []string{"importance", "--detail"}, "Feature Importance"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	cacheDB := filepath.Join(config.OutputDir, "benchmark-cache.db")
	_ = os.Remove(cacheDB)

	results := runBenchmarks(config, cacheDB)

	if err := saveResults(config.OutputDir, results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the lakerisk binary and output directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("lakerisk"); err != nil {
		return fmt.Errorf("lakerisk binary not found in PATH")
	}
	info, err := os.Stat(config.OutputDir)
	if err != nil {
		return fmt.Errorf("output directory %s not found: %w", config.OutputDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", config.OutputDir)
	}
	return nil
}

// runBenchmarks executes all configured benchmark cases
func runBenchmarks(config BenchmarkConfig, cacheDB string) []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(config.Cases))

	fmt.Printf("Starting benchmark: %d cases, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Cases), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, bc := range config.Cases {
		results = append(results, runBenchmarkSuite(config, bc, cacheDB))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a case
func runBenchmarkSuite(config BenchmarkConfig, bc BenchmarkCase, cacheDB string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", bc.Command, bc.Target)

	// Helper to run a benchmark phase
	runPhase := func(cacheArgs []string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, bc, cacheArgs, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase([]string{"--cache-backend", "none"}, config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase([]string{"--cache-backend", "sqlite", "--cache-db-connect", cacheDB}, config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Target:      bc.Target,
		Command:     bc.Command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a lakerisk command multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, bc BenchmarkCase, cacheArgs []string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, bc.Args...)
	args = append(args, cacheArgs...)
	args = append(args, "--workers", fmt.Sprint(config.Workers))

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("lakerisk", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && strings.Contains(string(output), bc.Expect) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(dir string, results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(dir, fmt.Sprintf("lakerisk_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"target", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Target, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"predict", "table", "rank", "importance"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-24s: No-cache: %s, Cold: %s, Warm: %s\n", result.Target, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
