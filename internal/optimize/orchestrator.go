// Package optimize runs disk maintenance: temp-file purge, TRIM and
// defragmentation. Every operation blocks until done and returns a
// report; none of them returns an error or panics past this package.
package optimize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Dicklesworthstone/sysoptimizer/internal/drives"
	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
	"github.com/Dicklesworthstone/sysoptimizer/internal/runner"
)

const (
	DefaultTrimTimeout = 30 * time.Second
	// DefaultDefragTimeout of zero waits for as long as the tool runs.
	DefaultDefragTimeout time.Duration = 0
)

// Classifier reports the media type behind a drive.
type Classifier interface {
	Classify(ctx context.Context, letter string) model.MediaType
}

type Orchestrator struct {
	runner     runner.Runner
	classifier Classifier
	tools      Toolset
	roots      func() []string
	device     func(letter string) (string, error)
	extraTemp  []string
	now        func() time.Time
	logger     *slog.Logger

	trimTimeout   time.Duration
	defragTimeout time.Duration
}

type Option func(*Orchestrator)

func WithToolset(t Toolset) Option { return func(o *Orchestrator) { o.tools = t } }
func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }
func WithLogger(l *slog.Logger) Option { return func(o *Orchestrator) { o.logger = l } }
func WithTrimTimeout(d time.Duration) Option { return func(o *Orchestrator) { o.trimTimeout = d } }
func WithDefragTimeout(d time.Duration) Option { return func(o *Orchestrator) { o.defragTimeout = d } }

// WithRoots supplies the known volume roots used to decide which drive
// a temp directory lives on.
func WithRoots(fn func() []string) Option { return func(o *Orchestrator) { o.roots = fn } }

// WithDevice resolves a drive to the device name the TRIM query needs.
func WithDevice(fn func(string) (string, error)) Option { return func(o *Orchestrator) { o.device = fn } }

// WithExtraTempDirs adds directories to every purge candidate list.
func WithExtraTempDirs(dirs ...string) Option {
	return func(o *Orchestrator) { o.extraTemp = append(o.extraTemp, dirs...) }
}

func New(r runner.Runner, c Classifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runner:        r,
		classifier:    c,
		tools:         DefaultToolset(),
		roots:         func() []string { return nil },
		device:        drives.Device,
		now:           time.Now,
		trimTimeout:   DefaultTrimTimeout,
		defragTimeout: DefaultDefragTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// PurgeTemp deletes the contents of every temp directory on letter.
// Files the OS refuses to delete are skipped. Success is false only when
// something unexpected aborts the whole run.
func (o *Orchestrator) PurgeTemp(ctx context.Context, letter string) (rep model.DiskReport) {
	start := o.now()
	rep = model.DiskReport{Drive: letter, Operation: model.OpTempPurge, ExecutedAt: start}
	defer o.guard(&rep, start, "Cleanup failed")

	letter = drives.Normalize(letter)
	paths := o.TempPaths(letter)

	var total purgeResult
	var problems []string
	for _, p := range paths {
		res, err := purgeTree(p)
		total.add(res)
		if err != nil {
			o.logger.Debug("temp directory skipped", slog.String("path", p), slog.Any("error", err))
			problems = append(problems, fmt.Sprintf("%s: %v", p, err))
		}
	}

	rep.Success = true
	rep.BytesFreed = total.bytes
	rep.FileCount = total.files
	rep.Benefits = Benefits(model.OpTempPurge)
	rep.Duration = o.now().Sub(start)
	if len(paths) == 0 {
		rep.Description = fmt.Sprintf("No temporary directories found on %s.", letter)
	} else {
		rep.Description = fmt.Sprintf("Removed %d temporary files from %s.", total.files, joinBase(paths))
	}
	if len(problems) > 0 {
		rep.Description += " Skipped: " + strings.Join(problems, "; ") + "."
	}
	o.logger.Info("temp purge finished", slog.String("drive", letter), slog.Int("files", total.files), slog.Int64("bytes", total.bytes))
	return rep
}

// TempPaths lists the existing temp directories rooted on letter.
func (o *Orchestrator) TempPaths(letter string) []string {
	roots := append(o.roots(), letter)
	var out []string
	for _, p := range o.tempDirs(letter) {
		if drives.Normalize(drives.Owner(p, roots)) == letter {
			out = append(out, p)
		}
	}
	return out
}

// PurgeAllTemp empties every existing temp directory whatever drive it
// is on. It never fails; unreadable directories are skipped.
func (o *Orchestrator) PurgeAllTemp() (res model.TempCleanupResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("temp cleanup aborted", slog.Any("panic", r))
		}
	}()
	for _, p := range o.tempDirs(drives.SystemDrive()) {
		pr, err := purgeTree(p)
		if err != nil {
			o.logger.Debug("temp directory skipped", slog.String("path", p), slog.Any("error", err))
		}
		res.FilesDeleted += pr.files
		res.BytesFreed += pr.bytes
		res.DeletedFiles = append(res.DeletedFiles, pr.deleted...)
	}
	o.logger.Info("temp cleanup finished", slog.Int("files", res.FilesDeleted), slog.Int64("bytes", res.BytesFreed))
	return res
}

// tempDirs returns the existing, de-duplicated candidate directories.
func (o *Orchestrator) tempDirs(letter string) []string {
	candidates := append(o.tools.TempDirs(letter), o.extraTemp...)
	seen := map[string]bool{}
	var out []string
	for _, p := range candidates {
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		if fi, err := os.Stat(p); err != nil || !fi.IsDir() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Trim runs the TRIM tool on an SSD. Any other media is refused without
// running anything.
func (o *Orchestrator) Trim(ctx context.Context, letter string) (rep model.DiskReport) {
	start := o.now()
	rep = model.DiskReport{Drive: letter, Operation: model.OpTrim, ExecutedAt: start}
	defer o.guard(&rep, start, "TRIM failed")

	if media := o.classifier.Classify(ctx, letter); media != model.MediaSSD {
		o.logger.Info("trim refused", slog.String("drive", letter), slog.String("media", string(media)))
		rep.Description = "TRIM does not apply to this drive: it is an HDD, not an SSD."
		rep.Duration = o.now().Sub(start)
		return rep
	}

	vol := o.volume(letter)
	if q := o.tools.TrimQuery(vol); q.Name != "" {
		res := o.runner.Run(ctx, q)
		o.logger.Debug("trim query", slog.String("cmd", q.String()), slog.Bool("ok", res.OK()), slog.String("output", strings.TrimSpace(res.Output)))
	}

	cmd := o.tools.Trim(vol)
	cmd.Timeout = o.trimTimeout
	res := o.runner.Run(ctx, cmd)
	rep.Duration = o.now().Sub(start)
	if !res.OK() {
		o.logger.Warn("trim failed", slog.String("drive", letter), slog.Any("error", res.Err))
		if res.TimedOut {
			rep.Description = fmt.Sprintf("TRIM did not finish within %s and was stopped.", o.trimTimeout)
		} else {
			rep.Description = fmt.Sprintf("TRIM failed: %v. Administrator privileges may be required.", res.Err)
		}
		return rep
	}

	rep.Success = true
	rep.Description = "TRIM completed on the SSD."
	rep.Benefits = Benefits(model.OpTrim)
	return rep
}

// Defragment runs the defragmenter on rotational media. SSDs are always
// refused without running anything.
func (o *Orchestrator) Defragment(ctx context.Context, letter string) (rep model.DiskReport) {
	start := o.now()
	rep = model.DiskReport{Drive: letter, Operation: model.OpDefragment, ExecutedAt: start}
	defer o.guard(&rep, start, "Defragmentation failed")

	if media := o.classifier.Classify(ctx, letter); media == model.MediaSSD {
		o.logger.Info("defragmentation refused", slog.String("drive", letter), slog.String("media", string(media)))
		rep.Description = "Defragmentation is not recommended for SSDs. They do not need it and it shortens their life."
		rep.Duration = o.now().Sub(start)
		return rep
	}

	cmd := o.tools.Defrag(o.volume(letter))
	cmd.Timeout = o.defragTimeout
	res := o.runner.Run(ctx, cmd)
	rep.Duration = o.now().Sub(start)
	if !res.OK() {
		o.logger.Warn("defragmentation failed", slog.String("drive", letter), slog.Any("error", res.Err))
		rep.Description = fmt.Sprintf("Defragmentation failed: %v. Administrator privileges may be required.", res.Err)
		return rep
	}

	rep.Success = true
	rep.Description = "Defragmentation completed."
	rep.Benefits = Benefits(model.OpDefragment)
	return rep
}

func (o *Orchestrator) volume(letter string) Volume {
	v := Volume{Letter: drives.Normalize(letter)}
	if dev, err := o.device(v.Letter); err == nil {
		v.Device = dev
	}
	return v
}

// guard turns a panic into a failed report.
func (o *Orchestrator) guard(rep *model.DiskReport, start time.Time, prefix string) {
	r := recover()
	if r == nil {
		return
	}
	o.logger.Warn("disk operation aborted", slog.String("op", rep.Operation.String()), slog.String("drive", rep.Drive), slog.Any("panic", r))
	*rep = model.DiskReport{
		Drive:       rep.Drive,
		Operation:   rep.Operation,
		Duration:    o.now().Sub(start),
		Description: fmt.Sprintf("%s: %v", prefix, r),
		ExecutedAt:  start,
	}
}

func joinBase(paths []string) string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return strings.Join(names, ", ")
}
