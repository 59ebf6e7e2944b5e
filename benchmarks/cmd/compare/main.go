package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/luiz-simples/redix/benchmarks/report"
)

type ComparisonRow struct {
	Command            string  `json:"command"`
	BaselineOpsPerSec  float64 `json:"baseline_ops_per_sec"`
	RedixOpsPerSec     float64 `json:"redix_ops_per_sec"`
	PerformanceRatio   float64 `json:"performance_ratio"`
	BaselineAvgLatency string  `json:"baseline_avg_latency"`
	RedixAvgLatency    string  `json:"redix_avg_latency"`
	BaselineP95Latency string  `json:"baseline_p95_latency"`
	RedixP95Latency    string  `json:"redix_p95_latency"`
	BaselineP99Latency string  `json:"baseline_p99_latency"`
	RedixP99Latency    string  `json:"redix_p99_latency"`
}

type Summary struct {
	OverallRedixPerformance string  `json:"overall_redix_performance"`
	BestRedixCommand        string  `json:"best_redix_command"`
	WorstRedixCommand       string  `json:"worst_redix_command"`
	AvgPerformanceRatio     float64 `json:"avg_performance_ratio"`
}

type ComparisonReport struct {
	GeneratedAt    time.Time       `json:"generated_at"`
	BaselineConfig report.Config   `json:"baseline_config"`
	RedixConfig    report.Config   `json:"redix_config"`
	Commands       []ComparisonRow `json:"commands"`
	Summary        Summary         `json:"summary"`
}

func main() {
	var (
		baselineDir = flag.String("baseline", "", "go-redis results directory")
		redixDir    = flag.String("redix", "", "redix results directory")
		outputDir   = flag.String("output", "", "Output directory for comparison")
	)
	flag.Parse()

	if *baselineDir == "" || *redixDir == "" || *outputDir == "" {
		log.Fatal("All directories (baseline, redix, output) must be specified")
	}

	baseline, err := report.LoadLatest(*baselineDir)
	if err != nil {
		log.Fatalf("Failed to load baseline results: %v", err)
	}

	redix, err := report.LoadLatest(*redixDir)
	if err != nil {
		log.Fatalf("Failed to load redix results: %v", err)
	}

	comparison := compare(baseline, redix)

	if err := save(comparison, *outputDir); err != nil {
		log.Fatalf("Failed to save report: %v", err)
	}

	printSummary(comparison)
	fmt.Printf("Detailed report saved to: %s\n", *outputDir)
}

func compare(baseline, redix *report.Result) ComparisonReport {
	comparison := ComparisonReport{
		GeneratedAt:    time.Now(),
		BaselineConfig: baseline.Config,
		RedixConfig:    redix.Config,
	}

	baselineCommands := indexCommands(baseline)
	redixCommands := indexCommands(redix)

	var totalRatio, bestRatio, worstRatio float64
	var bestCmd, worstCmd string

	for _, command := range report.Operations {
		base, baseOk := baselineCommands[command]
		candidate, candidateOk := redixCommands[command]

		if !baseOk || !candidateOk || base.OpsPerSecond == 0 {
			continue
		}

		ratio := candidate.OpsPerSecond / base.OpsPerSecond

		if bestCmd == "" || ratio > bestRatio {
			bestRatio, bestCmd = ratio, command
		}
		if worstCmd == "" || ratio < worstRatio {
			worstRatio, worstCmd = ratio, command
		}
		totalRatio += ratio

		comparison.Commands = append(comparison.Commands, ComparisonRow{
			Command:            command,
			BaselineOpsPerSec:  base.OpsPerSecond,
			RedixOpsPerSec:     candidate.OpsPerSecond,
			PerformanceRatio:   ratio,
			BaselineAvgLatency: report.FormatDuration(base.AvgLatency),
			RedixAvgLatency:    report.FormatDuration(candidate.AvgLatency),
			BaselineP95Latency: report.FormatDuration(base.P95Latency),
			RedixP95Latency:    report.FormatDuration(candidate.P95Latency),
			BaselineP99Latency: report.FormatDuration(base.P99Latency),
			RedixP99Latency:    report.FormatDuration(candidate.P99Latency),
		})
	}

	if len(comparison.Commands) == 0 {
		return comparison
	}

	avgRatio := totalRatio / float64(len(comparison.Commands))

	performance := "Inferior"
	switch {
	case avgRatio >= 1.1:
		performance = "Superior"
	case avgRatio >= 0.9:
		performance = "Equivalent"
	}

	comparison.Summary = Summary{
		OverallRedixPerformance: performance,
		BestRedixCommand:        bestCmd,
		WorstRedixCommand:       worstCmd,
		AvgPerformanceRatio:     avgRatio,
	}

	return comparison
}

func indexCommands(result *report.Result) map[string]report.CommandResult {
	commands := make(map[string]report.CommandResult, len(result.Commands))
	for _, cmd := range result.Commands {
		commands[cmd.Command] = cmd
	}
	return commands
}

func save(comparison ComparisonReport, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	timestamp := comparison.GeneratedAt.Format("15-04-05")

	jsonData, err := json.MarshalIndent(comparison, "", "  ")
	if err != nil {
		return err
	}

	files := map[string]string{
		fmt.Sprintf("comparison_%s.json", timestamp): string(jsonData),
		fmt.Sprintf("comparison_%s.md", timestamp):   markdown(comparison),
	}

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(outputDir, name), []byte(content), 0644); err != nil {
			return err
		}
	}

	return nil
}

func markdown(comparison ComparisonReport) string {
	var sb strings.Builder

	sb.WriteString("# redix vs go-redis\n\n")
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n", comparison.GeneratedAt.Format("2006-01-02 15:04:05")))

	sb.WriteString("## Configuration\n\n")
	sb.WriteString("| Parameter | go-redis | redix |\n")
	sb.WriteString("|-----------|----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Operations | %d | %d |\n", comparison.BaselineConfig.NumOperations, comparison.RedixConfig.NumOperations))
	sb.WriteString(fmt.Sprintf("| Clients | %d | %d |\n", comparison.BaselineConfig.NumClients, comparison.RedixConfig.NumClients))
	sb.WriteString(fmt.Sprintf("| Batch | %d | %d |\n", comparison.BaselineConfig.BatchSize, comparison.RedixConfig.BatchSize))
	sb.WriteString(fmt.Sprintf("| Protocol | RESP%d | RESP%d |\n\n", comparison.BaselineConfig.Protocol, comparison.RedixConfig.Protocol))

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Overall:** %s (%.2fx)\n", comparison.Summary.OverallRedixPerformance, comparison.Summary.AvgPerformanceRatio))
	sb.WriteString(fmt.Sprintf("- **Best:** %s\n", comparison.Summary.BestRedixCommand))
	sb.WriteString(fmt.Sprintf("- **Worst:** %s\n\n", comparison.Summary.WorstRedixCommand))

	sb.WriteString("## Detailed Results\n\n")
	sb.WriteString("| Command | go-redis ops/sec | redix ops/sec | Ratio | go-redis P95 | redix P95 |\n")
	sb.WriteString("|---------|------------------|---------------|-------|--------------|-----------|\n")

	for _, row := range comparison.Commands {
		sb.WriteString(fmt.Sprintf("| %s | %.0f | %.0f | %.2fx | %s | %s |\n",
			row.Command,
			row.BaselineOpsPerSec,
			row.RedixOpsPerSec,
			row.PerformanceRatio,
			row.BaselineP95Latency,
			row.RedixP95Latency,
		))
	}

	return sb.String()
}

func printSummary(comparison ComparisonReport) {
	fmt.Println("\nBENCHMARK SUMMARY")
	fmt.Println("=================")
	fmt.Printf("Overall redix performance: %s (%.2fx)\n", comparison.Summary.OverallRedixPerformance, comparison.Summary.AvgPerformanceRatio)

	for _, row := range comparison.Commands {
		fmt.Printf("%-9s %10.0f ops/sec vs %10.0f ops/sec (%.2fx)\n",
			row.Command, row.RedixOpsPerSec, row.BaselineOpsPerSec, row.PerformanceRatio)
	}
}
