// Command fx-batch renders the cartesian product of audio sources and
// effect presets into a WAV artifact tree. Reruns are idempotent:
// outputs whose artifacts already exist are skipped.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/socialfx/fxrender/batch"
	"github.com/socialfx/fxrender/config"
	"github.com/socialfx/fxrender/preset"
)

func main() {
	configPath := flag.String("config", "", "TOML config file (flags override file values)")
	sourcesArg := flag.String("sources", "", "Comma-separated source WAV paths or globs")
	presetDir := flag.String("presets", "", "Directory of preset JSON descriptors")
	outDir := flag.String("out", "", "Artifact output directory")
	fxType := flag.String("fx", "", "Effect type: eq, reverb or comp")
	waveSize := flag.String("wave", "", "Max concurrent renders per wave, or 'auto'")
	rangeScale := flag.Float64("range", 0, "Equalizer range scale (0 keeps config value)")
	targetRate := flag.Int("rate", -1, "Resample sources to this rate (0 keeps source rates)")
	timeoutMin := flag.Int("timeout", 0, "Run timeout in minutes (0 keeps config value)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	reportPath := flag.String("report", "", "Write a JSON run report to this path")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config %q: %v\n", *configPath, err)
			os.Exit(2)
		}
		cfg = loaded
	}
	if *sourcesArg != "" {
		cfg.Sources = strings.Split(*sourcesArg, ",")
	}
	if *presetDir != "" {
		cfg.PresetDir = *presetDir
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *fxType != "" {
		cfg.FxType = *fxType
	}
	if *waveSize != "" {
		cfg.WaveSize = *waveSize
	}
	if *rangeScale != 0 {
		cfg.RangeScale = *rangeScale
	}
	if *targetRate >= 0 {
		cfg.TargetRate = *targetRate
	}
	if *timeoutMin != 0 {
		cfg.TimeoutMin = *timeoutMin
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *reportPath != "" {
		cfg.ReportPath = *reportPath
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	code, err := run(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}

func run(cfg *config.Config, log *slog.Logger) (int, error) {
	runID := uuid.NewString()
	started := time.Now()

	sources, err := resolveSources(cfg.Sources)
	if err != nil {
		return 2, err
	}
	presets, err := preset.LoadDir(cfg.PresetDir, cfg.FxType)
	if err != nil {
		return 2, fmt.Errorf("loading presets: %w", err)
	}
	jobs := batch.DeriveJobs(sources, presets)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return 2, err
	}

	// One batch per output tree at a time; a second invocation against
	// the same tree would race the oracle probes.
	lock := flock.New(filepath.Join(cfg.OutputDir, ".fx-batch.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return 2, fmt.Errorf("acquiring output lock: %w", err)
	}
	if !locked {
		return 2, fmt.Errorf("output directory %s is locked by another run", cfg.OutputDir)
	}
	defer lock.Unlock()

	waveSize, err := cfg.EffectiveWaveSize()
	if err != nil {
		return 2, err
	}

	log.Info("starting batch",
		"run_id", runID,
		"sources", len(sources),
		"presets", len(presets),
		"jobs", len(jobs),
		"fx", cfg.FxType,
		"wave_size", waveSize,
		"output", cfg.OutputDir)

	worker := batch.NewWorker(cfg.OutputDir, cfg.RangeScale)
	worker.TargetRate = cfg.TargetRate
	state := batch.NewRunState(len(jobs))
	sched := &batch.Scheduler{
		Oracle:   batch.DirOracle{Root: cfg.OutputDir},
		Renderer: worker,
		WaveSize: waveSize,
		State:    state,
		Log:      log,
	}
	sup := &batch.Supervisor{Timeout: time.Duration(cfg.TimeoutMin) * time.Minute}

	runErr := sup.Run(context.Background(), func(ctx context.Context) error {
		return sched.Run(ctx, jobs)
	})

	counts := state.Counts()
	failures := state.Failures()
	elapsed := time.Since(started)

	printSummary(counts, elapsed)
	for _, f := range failures {
		log.Error("job failed", "output_id", f.OutputID, "error", f.Err)
	}

	if cfg.ReportPath != "" {
		if err := writeReport(cfg.ReportPath, runID, cfg, counts, failures, elapsed, runErr); err != nil {
			log.Error("writing run report", "path", cfg.ReportPath, "error", err)
		}
	}

	switch {
	case errors.Is(runErr, batch.ErrTimeout):
		return 2, runErr
	case runErr != nil:
		return 1, runErr
	case counts.Failed > 0:
		return 1, fmt.Errorf("%d of %d jobs failed", counts.Failed, counts.Total)
	default:
		log.Info("batch complete", "run_id", runID, "elapsed", elapsed.Round(time.Millisecond))
		return 0, nil
	}
}

// resolveSources expands globs and deduplicates by derived source name,
// keeping the order of first appearance.
func resolveSources(patterns []string) ([]*batch.Source, error) {
	seen := make(map[string]bool)
	var out []*batch.Source
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("source pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("source pattern %q matched nothing", pattern)
		}
		sort.Strings(matches)
		for _, m := range matches {
			s := batch.NewSource(m)
			if seen[s.Name] {
				continue
			}
			seen[s.Name] = true
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no sources resolved")
	}
	return out, nil
}

func printSummary(c batch.Counts, elapsed time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Total", "Completed", "Skipped", "Failed", "Elapsed"})
	t.AppendRow(table.Row{c.Total, c.Completed, c.Skipped, c.Failed, elapsed.Round(time.Millisecond)})
	t.Render()
}

type runReport struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	ElapsedMS int64     `json:"elapsed_ms"`
	FxType    string    `json:"fx_type"`
	OutputDir string    `json:"output_dir"`
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
	Skipped   int       `json:"skipped"`
	Failed    []string  `json:"failed"`
	TimedOut  bool      `json:"timed_out"`
}

func writeReport(path, runID string, cfg *config.Config, c batch.Counts, failures []batch.JobFailure, elapsed time.Duration, runErr error) error {
	failed := make([]string, 0, len(failures))
	for _, f := range failures {
		failed = append(failed, f.OutputID)
	}
	r := runReport{
		RunID:     runID,
		StartedAt: time.Now().Add(-elapsed),
		ElapsedMS: elapsed.Milliseconds(),
		FxType:    cfg.FxType,
		OutputDir: cfg.OutputDir,
		Total:     c.Total,
		Completed: c.Completed,
		Skipped:   c.Skipped,
		Failed:    failed,
		TimedOut:  errors.Is(runErr, batch.ErrTimeout),
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info", "":
		l = slog.LevelInfo
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}
