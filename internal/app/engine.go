package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Dicklesworthstone/sysoptimizer/internal/config"
	"github.com/Dicklesworthstone/sysoptimizer/internal/diagnostics"
	"github.com/Dicklesworthstone/sysoptimizer/internal/drives"
	"github.com/Dicklesworthstone/sysoptimizer/internal/drivetype"
	"github.com/Dicklesworthstone/sysoptimizer/internal/optimize"
	"github.com/Dicklesworthstone/sysoptimizer/internal/procs"
	"github.com/Dicklesworthstone/sysoptimizer/internal/runner"
	"github.com/Dicklesworthstone/sysoptimizer/internal/sampler"
	"github.com/Dicklesworthstone/sysoptimizer/internal/startup"
	"github.com/Dicklesworthstone/sysoptimizer/internal/store"
)

// engine is the wired object graph for one command invocation.
type engine struct {
	cfg      *config.Config
	cfgFile  string
	logger   *slog.Logger
	sampler  *sampler.Sampler
	procs    *procs.Inventory
	detector *drivetype.Detector
	disk     *optimize.Service
	diag     *diagnostics.Service
	store    *store.Store

	closers []io.Closer
}

// loadConfig reads the config file and applies persistent flags on top.
func loadConfig() (*config.Config, string, error) {
	path := cfgPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

// newLogger writes text logs to console, or appends to cfg.Log.File.
func newLogger(cfg *config.Config, console io.Writer) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Log.File == "" {
		return slog.New(slog.NewTextHandler(console, opts)), nil, nil
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, opts)), f, nil
}

// newEngine wires every service, logging to stderr. withStore also opens
// the history database, records disk reports in it and shares drive
// locks through it.
func newEngine(withStore bool) (*engine, error) {
	return buildEngine(withStore, os.Stderr)
}

// buildEngine is newEngine with the console log destination chosen by
// the caller. Full-screen commands pass io.Discard.
func buildEngine(withStore bool, console io.Writer) (*engine, error) {
	cfg, path, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, lc, err := newLogger(cfg, console)
	if err != nil {
		return nil, err
	}
	e := &engine{cfg: cfg, cfgFile: path, logger: logger}
	if lc != nil {
		e.closers = append(e.closers, lc)
	}

	var sink optimize.ReportSink
	var diskOpts []optimize.ServiceOption
	if withStore {
		st, err := openStore(cfg.Storage.DBPath)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.store = st
		e.closers = append(e.closers, st)
		sink = st
		diskOpts = append(diskOpts, optimize.WithSharedLocks(st.DriveLocker()))
	}

	run := runner.NewExec(logger)
	driveInv := drives.New(nil, logger)
	e.detector = drivetype.NewDetector(logger, drivetype.DefaultStrategies(run, cfg.ProbeTimeout())...)
	orch := optimize.New(run, e.detector,
		optimize.WithLogger(logger),
		optimize.WithRoots(driveInv.Letters),
		optimize.WithTrimTimeout(cfg.TrimTimeout()),
		optimize.WithDefragTimeout(cfg.DefragTimeout()),
		optimize.WithExtraTempDirs(cfg.Disk.ExtraTempDirs...),
	)
	e.disk = optimize.NewService(driveInv, e.detector, orch, sink, logger, diskOpts...)

	catalog := procs.DefaultCatalog(cfg.Processes.ExtraCritical...)
	e.procs = procs.NewInventory(procs.GopsutilTable{}, catalog, procs.WithLogger(logger))
	e.sampler = sampler.New(sampler.WithLogger(logger))
	e.diag = diagnostics.New(diagnostics.Config{
		Sampler:    e.sampler,
		Drives:     driveInv,
		Processes:  e.procs,
		Terminator: procs.NewTerminator(procs.GopsutilTable{}, catalog, logger),
		Startup:    startup.NewLister(logger),
		Temp:       orch,
		Browser:    cfg.Processes.Browser,
		Logger:     logger,
	})
	return e, nil
}

// primeDelay is how long one-shot commands wait between the CPU baseline
// and the reading they report.
const primeDelay = time.Second

// prime takes the CPU baselines so the next reading has a rate.
func (e *engine) prime(candidates bool) {
	e.sampler.SampleCPU()
	e.procs.Top(procs.MinTop)
	if candidates {
		e.procs.Candidates()
	}
	time.Sleep(primeDelay)
}

func openStore(path string) (*store.Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return st, nil
}

func (e *engine) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
	e.closers = nil
}
