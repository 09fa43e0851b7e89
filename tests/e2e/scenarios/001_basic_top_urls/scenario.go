package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/klauspost/compress/gzip"

	"log-analyzer/internal/app"
	"log-analyzer/internal/models"
	"log-analyzer/internal/shared/configs"
)

// ### Start - fixed configs (no change)
// These values define deterministic test data generation and must match expected results.
// DO NOT MODIFY: Changing these will break the test's deterministic behavior.
const (
	totalEntries   = 64000 // Total number of access log lines to generate
	malformedEvery = 50    // Every n-th line is garbage and must be counted as an error
	logDate        = "20170630"
	reportDate     = "2017.06.30"
)

var (
	paths = []string{
		"/api/v2/banner/25019354",
		"/api/1/photogenic_banners/list/?server_name=WIN7RB4",
		"/api/v2/slot/4705/groups",
		"/export/appinstall_raw/2017-06-29/",
	}
	remoteAddrs = []string{"1.196.116.32", "1.99.174.176", "1.169.137.128", "1.202.56.176"}
)

// ### End - fixed configs

type entry struct {
	index int
}

type expectedRow struct {
	key    string
	count  int64
	sumMs  int64
	maxMs  int64
	sortNo int
}

// main runs the e2e scenario: 001_basic_top_urls
//
// This scenario renders a report for a large gzip access log assembled from independently
// compressed chunks (a multi-member gzip stream), with garbage lines mixed in.
//
// What it tests:
//   - Latest log discovery among dated and undated files
//   - Multi-member gzip decompression
//   - Continue-on-error parsing (garbage lines counted, not fatal)
//   - Ranking by total time and the per-key statistics
//   - Idempotent reruns: the second run leaves the report untouched
//
// Expected results:
//   - report-2017.06.30.html is rendered in the reports directory
//   - The table holds the four paths ordered by total time, heaviest first
//   - Counts and time sums match the generated data exactly
func main() {
	// these configs can be changed to run the scenario
	workDir := ".tmp/e2e-top-urls" // Work directory path relative to project root
	chunkSize := 4000              // Number of lines per gzip member
	parallel := 4                  // Number of concurrent chunk compressors
	wantCleanWorkDir := true       // If true, clean up the work directory before running scenario

	if totalEntries%chunkSize != 0 {
		fmt.Fprintf(os.Stderr, "ERROR: TOTAL_ENTRIES (%d) must be divisible by CHUNK_SIZE (%d)\n", totalEntries, chunkSize)
		os.Exit(1)
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	workPath := filepath.Join(projectRoot, workDir)

	if wantCleanWorkDir {
		fmt.Printf("Cleaning work directory: %s\n", workPath)
		if err := os.RemoveAll(workPath); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: Failed to clean work directory: %v\n", err)
		}
		fmt.Println()
	}

	logsDir := filepath.Join(workPath, "logs")
	reportsDir := filepath.Join(workPath, "reports")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to create logs directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Starting e2e scenario: 001_basic_top_urls")
	fmt.Printf("WORK_PATH: %s\n", workPath)
	fmt.Printf("CHUNK_SIZE: %d\n", chunkSize)
	fmt.Printf("PARALLEL: %d\n", parallel)
	fmt.Printf("TOTAL_ENTRIES: %d\n", totalEntries)
	fmt.Println()

	// Generate and compress chunks in parallel; members are concatenated in order
	chunkCount := totalEntries / chunkSize
	members := make([][]byte, chunkCount)
	workerChan := make(chan struct{}, parallel)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errors []error

	for chunk := 0; chunk < chunkCount; chunk++ {
		wg.Add(1)
		workerChan <- struct{}{} // Acquire worker slot

		go func(chunk int) {
			defer wg.Done()
			defer func() { <-workerChan }() // Release worker slot

			member, err := compressChunk(chunk*chunkSize, chunkSize)
			if err != nil {
				mu.Lock()
				errors = append(errors, fmt.Errorf("chunk %d: %w", chunk, err))
				mu.Unlock()
				return
			}
			members[chunk] = member
		}(chunk)
	}
	wg.Wait()

	if len(errors) > 0 {
		fmt.Fprintf(os.Stderr, "ERROR: %d chunks failed: %v\n", len(errors), errors)
		os.Exit(1)
	}

	logPath := filepath.Join(logsDir, "nginx-access-ui.log-"+logDate+".gz")
	if err := os.WriteFile(logPath, bytes.Join(members, nil), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to write log: %v\n", err)
		os.Exit(1)
	}
	// Older and unrelated files the finder must skip
	for _, name := range []string{"nginx-access-ui.log-20170629", "nginx-access-ui.log-20170630.bz2", "README"} {
		if err := os.WriteFile(filepath.Join(logsDir, name), []byte("ignored\n"), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to write %s: %v\n", name, err)
			os.Exit(1)
		}
	}
	fmt.Printf("Wrote %d gzip members to %s\n", chunkCount, logPath)

	templatePath := filepath.Join(projectRoot, "templates", "report.html")
	cfg := &configs.Config{
		Log:    configs.LogConfig{Level: "info", File: filepath.Join(workPath, "analyzer.log")},
		Source: configs.SourceConfig{Dir: logsDir, NameTemplate: "nginx-access-ui.log-{date}", DateLayout: "20060102"},
		Report: configs.ReportConfig{
			Dir:                reportsDir,
			NameTemplate:       "report-{date}.html",
			DateLayout:         "2006.01.02",
			Template:           templatePath,
			Size:               10,
			Accuracy:           3,
			ErrorsPercentLimit: 5,
			KeyField:           "url",
		},
		Metrics: configs.MetricsConfig{TextfilePath: filepath.Join(workPath, "log_analyzer.prom")},
	}

	application, err := app.New(cfg, app.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	for run := 1; run <= 2; run++ {
		if err := application.Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Run %d failed: %v\n", run, err)
			os.Exit(1)
		}
		fmt.Printf("Run %d completed\n", run)
	}
	fmt.Println()

	reportPath := filepath.Join(reportsDir, "report-"+reportDate+".html")
	entries, err := readReportTable(reportPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	if err := verify(entries, expectedRows()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Report mismatch: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Report ===")
	for _, e := range entries {
		fmt.Printf("%-55s count=%d time_sum=%v time_avg=%v time_max=%v time_med=%v\n",
			e.Key, e.Count, e.TimeSum, e.TimeAvg, e.TimeMax, e.TimeMed)
	}
	fmt.Println("Scenario completed successfully")
}

func findProjectRoot() (string, error) {
	// Walk up the directory tree to find go.mod
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	for i := 0; i < 10; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("could not find go.mod, run from the project root")
}

// requestTimeMs is the deterministic request time of line i, in milliseconds.
func requestTimeMs(e entry) int64 {
	pathIndex := e.index % len(paths)
	return int64((pathIndex+1)*100 + (e.index*17)%97)
}

func isMalformed(e entry) bool {
	return e.index%malformedEvery == malformedEvery-1
}

func generateLine(e entry) string {
	if isMalformed(e) {
		return fmt.Sprintf("garbage line %d", e.index)
	}
	ms := requestTimeMs(e)
	return fmt.Sprintf(`%s -  - [30/Jun/2017:03:50:22 +0300] "GET %s HTTP/1.1" 200 927 "-" "Lynx/2.8.8dev.9 libwww-FM/2.14" "-" "1498697422-2190034393-4708-%07d" "dc7161be3" %d.%03d`,
		remoteAddrs[e.index%len(remoteAddrs)], paths[e.index%len(paths)], e.index, ms/1000, ms%1000)
}

func compressChunk(start, size int) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for i := start; i < start+size; i++ {
		if _, err := fmt.Fprintln(gz, generateLine(entry{index: i})); err != nil {
			return nil, err
		}
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func expectedRows() []expectedRow {
	rows := make([]expectedRow, len(paths))
	for i, p := range paths {
		rows[i] = expectedRow{key: p, sortNo: i}
	}
	for i := 0; i < totalEntries; i++ {
		e := entry{index: i}
		if isMalformed(e) {
			continue
		}
		row := &rows[i%len(paths)]
		ms := requestTimeMs(e)
		row.count++
		row.sumMs += ms
		if ms > row.maxMs {
			row.maxMs = ms
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].sumMs > rows[j].sumMs
	})
	return rows
}

var tablePattern = regexp.MustCompile(`var table = (\[.*?\]);`)

func readReportTable(path string) ([]models.RankedEntry, error) {
	html, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	m := tablePattern.FindSubmatch(html)
	if m == nil {
		return nil, fmt.Errorf("report %s has no table", path)
	}
	var entries []models.RankedEntry
	if err := json.Unmarshal(m[1], &entries); err != nil {
		return nil, fmt.Errorf("failed to parse report table: %w", err)
	}
	return entries, nil
}

func verify(entries []models.RankedEntry, want []expectedRow) error {
	if len(entries) != len(want) {
		return fmt.Errorf("got %d entries, want %d", len(entries), len(want))
	}
	for i, w := range want {
		got := entries[i]
		if got.Key != w.key {
			return fmt.Errorf("row %d: key %q, want %q", i, got.Key, w.key)
		}
		if got.Count != w.count {
			return fmt.Errorf("row %d: count %d, want %d", i, got.Count, w.count)
		}
		if got.TimeSum != msToSeconds(w.sumMs) {
			return fmt.Errorf("row %d: time_sum %v, want %v", i, got.TimeSum, msToSeconds(w.sumMs))
		}
		if got.TimeMax != msToSeconds(w.maxMs) {
			return fmt.Errorf("row %d: time_max %v, want %v", i, got.TimeMax, msToSeconds(w.maxMs))
		}
	}
	return nil
}

func msToSeconds(ms int64) float64 {
	v, _ := strconv.ParseFloat(fmt.Sprintf("%d.%03d", ms/1000, ms%1000), 64)
	return v
}
