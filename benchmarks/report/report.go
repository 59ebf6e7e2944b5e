package report

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Operations run by the benchmark, in report order.
var Operations = []string{"SET", "GET", "INCR", "MGET", "PIPELINE", "MULTI"}

type Config struct {
	Client        string `json:"client"`
	Address       string `json:"address"`
	NumOperations int    `json:"num_operations"`
	NumClients    int    `json:"num_clients"`
	ValueSize     int    `json:"value_size"`
	BatchSize     int    `json:"batch_size"`
	Protocol      int    `json:"protocol"`
}

type CommandResult struct {
	Command      string        `json:"command"`
	TotalOps     int           `json:"total_ops"`
	Duration     time.Duration `json:"duration"`
	OpsPerSecond float64       `json:"ops_per_second"`
	AvgLatency   time.Duration `json:"avg_latency"`
	P95Latency   time.Duration `json:"p95_latency"`
	P99Latency   time.Duration `json:"p99_latency"`
	MinLatency   time.Duration `json:"min_latency"`
	MaxLatency   time.Duration `json:"max_latency"`
	ErrorCount   int           `json:"error_count"`
	SuccessRate  float64       `json:"success_rate"`
}

type Result struct {
	Config        Config          `json:"config"`
	Commands      []CommandResult `json:"commands"`
	MemoryUsageMB float64         `json:"memory_usage_mb"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	TotalDuration time.Duration   `json:"total_duration"`
}

// Summarize turns raw latencies into a CommandResult.
func Summarize(command string, latencies []time.Duration, duration time.Duration, errorCount, totalOps int) CommandResult {
	result := CommandResult{
		Command:    command,
		TotalOps:   totalOps,
		Duration:   duration,
		ErrorCount: errorCount,
	}

	if len(latencies) == 0 || totalOps == 0 {
		return result
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	var total time.Duration
	for _, latency := range sorted {
		total += latency
	}

	successOps := totalOps - errorCount

	result.OpsPerSecond = float64(successOps) / duration.Seconds()
	result.AvgLatency = total / time.Duration(len(sorted))
	result.P95Latency = percentile(sorted, 0.95)
	result.P99Latency = percentile(sorted, 0.99)
	result.MinLatency = sorted[0]
	result.MaxLatency = sorted[len(sorted)-1]
	result.SuccessRate = float64(successOps) / float64(totalOps) * 100

	return result
}

func percentile(sorted []time.Duration, rank float64) time.Duration {
	index := min(int(float64(len(sorted))*rank), len(sorted)-1)
	return sorted[index]
}

func Save(result Result, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}

	filename := filepath.Join(outputDir, fmt.Sprintf("benchmark_%s.json", result.StartTime.Format("15-04-05")))

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}

	return filename, os.WriteFile(filename, data, 0644)
}

// LoadLatest reads the most recently written result under dir.
func LoadLatest(dir string) (*Result, error) {
	var latestFile string
	var latestTime time.Time

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = path
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	if latestFile == "" {
		return nil, fmt.Errorf("no benchmark files found in %s", dir)
	}

	data, err := os.ReadFile(latestFile)
	if err != nil {
		return nil, err
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func FormatDuration(d time.Duration) string {
	if d < time.Microsecond {
		return fmt.Sprintf("%.0fns", float64(d.Nanoseconds()))
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000)
	}
	return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1000000)
}
