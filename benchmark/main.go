// Package main provides a performance benchmarking tool for the dcurves CLI.
// It measures execution times across different cohort sizes and analysis
// regimes, running each test multiple times, treating the first successful
// run with history enabled as cold and averaging the rest as warm, generating
// CSV output for performance analysis and documentation.
//
// Prerequisites:
// - dcurves binary installed and available in PATH
//
// Usage: go run benchmark/main.go [data-base-dir]
//
//	data-base-dir: Directory where synthetic cohort files are generated
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-history average, cold run and average of warm runs).
type BenchmarkResult struct {
	Cohort        string
	Command       string
	NoHistoryTime string
	ColdTime      string
	WarmTime      string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DataBase      string
	Timeout       time.Duration
	Workers       int
	NoHistoryRuns int
	HistoryRuns   int
	CohortSizes   map[string]int
	CohortOrder   []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [data-base-dir]\n", os.Args[0])
		os.Exit(1)
	}
	dataBase := os.Args[1]

	config := BenchmarkConfig{
		DataBase:      dataBase,
		Timeout:       5 * time.Minute,
		Workers:       8,
		NoHistoryRuns: 3,
		HistoryRuns:   4,
		CohortSizes: map[string]int{
			"small":  1_000,
			"medium": 10_000,
			"large":  100_000,
			"xlarge": 500_000,
		},
		CohortOrder: []string{"small", "medium", "large", "xlarge"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the run history using dcurves history clear
	fmt.Printf("Clearing run history...\n")
	clearCmd := exec.Command("dcurves", "history", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear run history: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Run history cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies the dcurves binary exists and generates any
// missing synthetic cohort files.
func checkPrerequisites(config BenchmarkConfig) error {
	// Check if dcurves is available
	if _, err := exec.LookPath("dcurves"); err != nil {
		return fmt.Errorf("dcurves binary not found in PATH")
	}

	if err := os.MkdirAll(config.DataBase, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	for _, name := range config.CohortOrder {
		path := cohortPath(config, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Printf("Generating %s cohort (%d subjects)\n", name, config.CohortSizes[name])
			if err := generateCohort(path, config.CohortSizes[name]); err != nil {
				return fmt.Errorf("failed to generate cohort %s: %w", name, err)
			}
		}
	}

	return nil
}

func cohortPath(config BenchmarkConfig, name string) string {
	return filepath.Join(config.DataBase, fmt.Sprintf("cohort_%s.csv", name))
}

// generateCohort writes a synthetic subject table with binary, survival and
// case-control columns so every regime can read the same file.
func generateCohort(path string, n int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"cancer", "time", "event", "model", "marker"}); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(1234))
	for range n {
		risk := rng.Float64()
		outcome := "0"
		event := "0"
		if rng.Float64() < risk {
			outcome = "1"
			event = "1"
		}
		followup := rng.Float64() * 5
		score := risk*0.8 + rng.Float64()*0.2
		marker := risk*40 + rng.Float64()*10
		rec := []string{
			outcome,
			fmt.Sprintf("%.3f", followup),
			event,
			fmt.Sprintf("%.4f", score),
			fmt.Sprintf("%.2f", marker),
		}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// runBenchmarks executes all benchmark tests across configured cohort sizes
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d cohorts, %v timeout, %d workers, no-history: %d runs, history: %d runs\n",
		len(config.CohortOrder), config.Timeout, config.Workers, config.NoHistoryRuns, config.HistoryRuns)

	for _, name := range config.CohortOrder {
		fmt.Printf("Benchmarking %s cohort\n", name)

		path := cohortPath(config, name)

		// Binary regime
		args := "--outcome cancer -p model,marker --score-kind marker=raw"
		result := runBenchmarkSuite(config, name, path, "binary", "binary analysis", args)
		results = append(results, result)

		// Survival regime
		args = "--time-col time --event-col event --time-horizon 2.0 -p model"
		result = runBenchmarkSuite(config, name, path, "survival", "survival analysis (horizon 2.0)", args)
		results = append(results, result)

		// Case-control regime
		args = "--outcome cancer --prevalence 0.2 -p model"
		result = runBenchmarkSuite(config, name, path, "case-control", "case-control analysis (prevalence 0.2)", args)
		results = append(results, result)
	}

	return results
}

// runBenchmarkSuite runs both no-history and history benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, cohort, dataPath, command, description, extraArgs string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, cohort)

	// Helper to run a benchmark phase
	runPhase := func(historyBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, dataPath, command, extraArgs, historyBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-history runs
	_, noHistoryAvg := runPhase("none", config.NoHistoryRuns, "No-history")

	// Phase 2: History runs
	coldTime, warmAvg := runPhase("sqlite", config.HistoryRuns, "History")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-history average: %s, Cold time: %s, Warm average: %s\n", noHistoryAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Cohort:        cohort,
		Command:       command,
		NoHistoryTime: noHistoryAvg,
		ColdTime:      coldTimeStr,
		WarmTime:      warmAvg,
	}
}

// runBenchmark executes a dcurves command multiple times with the specified history backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, dataPath, command, extraArgs, historyBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	// Prepare command arguments
	args := []string{command, dataPath, "--history-backend", historyBackend, "-w", fmt.Sprintf("%d", config.Workers)}
	if extraArgs != "" {
		args = append(args, parseArgs(extraArgs)...)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("dcurves", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

func parseArgs(argsStr string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false

	for _, r := range argsStr {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ' ':
			if !inQuotes && current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			} else if inQuotes {
				current.WriteRune(r)
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Analysis completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/dcurves_benchmark_%s.csv", timestamp)

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
	if err := writer.Write([]string{"cohort", "cmd", "no_history_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Cohort, result.Command, result.NoHistoryTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "binary", "Binary Analysis:")
	printCommandSummary(results, "survival", "Survival Analysis:")
	printCommandSummary(results, "case-control", "Case-Control Analysis:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: No-history: %s, Cold: %s, Warm: %s\n", result.Cohort, result.NoHistoryTime, result.ColdTime, result.WarmTime)
		}
	}
}
