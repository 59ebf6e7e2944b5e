package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/luiz-simples/redix/benchmarks/report"
)

func main() {
	var (
		clientName = flag.String("client", "redix", "Client library: redix or goredis")
		address    = flag.String("addr", "localhost:6379", "Server address")
		numOps     = flag.Int("ops", 10000, "Number of operations per command")
		numClients = flag.Int("clients", 10, "Number of concurrent goroutines")
		valueSize  = flag.Int("valuesize", 64, "Value size in bytes")
		batchSize  = flag.Int("batch", 10, "Commands per MGET, pipeline and transaction")
		protocol   = flag.Int("protocol", 2, "RESP protocol version")
		operations = flag.String("ops-list", strings.Join(report.Operations, ","), "Operations to run")
		outputDir  = flag.String("output", "", "Output directory for results")
	)
	flag.Parse()

	if *outputDir == "" {
		*outputDir = filepath.Join("benchmarks", "results", time.Now().Format("2006-01-02"), *clientName)
	}

	config := report.Config{
		Client:        *clientName,
		Address:       *address,
		NumOperations: *numOps,
		NumClients:    max(*numClients, 1),
		ValueSize:     *valueSize,
		BatchSize:     max(*batchSize, 1),
		Protocol:      *protocol,
	}

	fmt.Printf("Starting %s benchmark against %s\n", config.Client, config.Address)
	fmt.Printf("Operations: %d, Clients: %d, Value size: %d, Batch: %d\n",
		config.NumOperations, config.NumClients, config.ValueSize, config.BatchSize)

	bench, err := newDriver(config.Client, config.Address, config.Protocol)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer bench.Close()

	ctx := context.Background()
	if err := bench.Run(ctx, "SET", "bench:ping", "1", 1); err != nil {
		log.Fatalf("Failed to reach server: %v", err)
	}

	result := report.Result{
		Config:    config,
		StartTime: time.Now(),
	}

	for _, op := range strings.Split(*operations, ",") {
		op = strings.ToUpper(strings.TrimSpace(op))

		fmt.Printf("\nRunning %s benchmark...\n", op)
		cmdResult := runOperation(ctx, bench, op, config)
		result.Commands = append(result.Commands, cmdResult)

		fmt.Printf("%s: %.2f ops/sec, avg latency: %v, errors: %d\n",
			op, cmdResult.OpsPerSecond, cmdResult.AvgLatency, cmdResult.ErrorCount)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	result.EndTime = time.Now()
	result.TotalDuration = result.EndTime.Sub(result.StartTime)
	result.MemoryUsageMB = float64(mem.Alloc) / 1024 / 1024

	filename, err := report.Save(result, *outputDir)
	if err != nil {
		log.Fatalf("Failed to save results: %v", err)
	}

	fmt.Printf("\nBenchmark completed in %v\n", result.TotalDuration)
	fmt.Printf("Results saved to: %s\n", filename)
}

func runOperation(ctx context.Context, bench driver, op string, config report.Config) report.CommandResult {
	var wg sync.WaitGroup
	var mu sync.Mutex

	latencies := make([]time.Duration, 0, config.NumOperations)
	errorCount := 0
	value := generateValue(config.ValueSize)

	opsPerClient := config.NumOperations / config.NumClients
	startTime := time.Now()

	for worker := 0; worker < config.NumClients; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			for index := 0; index < opsPerClient; index++ {
				key := fmt.Sprintf("bench:%s:%d:%d", op, worker, index)

				opStart := time.Now()
				err := bench.Run(ctx, op, key, value, config.BatchSize)
				latency := time.Since(opStart)

				mu.Lock()
				latencies = append(latencies, latency)
				if err != nil {
					errorCount++
				}
				mu.Unlock()
			}
		}(worker)
	}

	wg.Wait()

	return report.Summarize(op, latencies, time.Since(startTime), errorCount, opsPerClient*config.NumClients)
}

func generateValue(size int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, size)
	for i := range b {
		b[i] = charset[i%len(charset)]
	}
	return string(b)
}
