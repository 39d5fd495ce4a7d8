// Package drivetype classifies a volume as solid-state or rotational.
//
// Classification runs an ordered cascade of strategies and stops at the
// first definitive answer. Results are cached per volume for the life of
// the Detector; nothing expires them except Invalidate.
package drivetype

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Dicklesworthstone/sysoptimizer/internal/drives"
	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

// Verdict is one strategy's answer.
type Verdict int

const (
	Inconclusive Verdict = iota
	SSD
	HDD
)

func (v Verdict) String() string {
	switch v {
	case SSD:
		return "SSD"
	case HDD:
		return "HDD"
	default:
		return "inconclusive"
	}
}

// Media maps a definitive verdict to a media type.
func (v Verdict) Media() (model.MediaType, bool) {
	switch v {
	case SSD:
		return model.MediaSSD, true
	case HDD:
		return model.MediaHDD, true
	default:
		return "", false
	}
}

// Strategy is one tier of the cascade. Implementations own their own
// timeouts and report any failure as Inconclusive.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, letter string) Verdict
}

// Fallback is used when every strategy is inconclusive. Assuming
// rotational media keeps TRIM disabled.
const Fallback = model.MediaHDD

type Detector struct {
	strategies []Strategy
	logger     *slog.Logger

	mu    sync.Mutex
	cache map[string]model.MediaType
}

func NewDetector(logger *slog.Logger, strategies ...Strategy) *Detector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Detector{
		strategies: strategies,
		logger:     logger,
		cache:      map[string]model.MediaType{},
	}
}

// Classify returns the cached media type for letter, running the cascade
// on a miss. The lock is never held while a strategy runs; if two
// callers race on a miss the first stored answer wins.
func (d *Detector) Classify(ctx context.Context, letter string) model.MediaType {
	key := drives.Normalize(letter)
	if m, ok := d.Cached(key); ok {
		return m
	}

	media := Fallback
	for _, s := range d.strategies {
		v := d.attempt(ctx, s, key)
		d.logger.Debug("drive type strategy", slog.String("strategy", s.Name()), slog.String("drive", key), slog.String("verdict", v.String()))
		if m, ok := v.Media(); ok {
			media = m
			break
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.cache[key]; ok {
		return existing
	}
	d.cache[key] = media
	return media
}

// Cached reports a previously classified letter without probing.
func (d *Detector) Cached(letter string) (model.MediaType, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.cache[drives.Normalize(letter)]
	return m, ok
}

// Invalidate drops one cached entry so the next Classify runs the cascade again.
func (d *Detector) Invalidate(letter string) {
	d.mu.Lock()
	delete(d.cache, drives.Normalize(letter))
	d.mu.Unlock()
}

func (d *Detector) InvalidateAll() {
	d.mu.Lock()
	d.cache = map[string]model.MediaType{}
	d.mu.Unlock()
}

func (d *Detector) attempt(ctx context.Context, s Strategy, letter string) (v Verdict) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Debug("drive type strategy panicked", slog.String("strategy", s.Name()), slog.String("drive", letter), slog.Any("panic", r))
			v = Inconclusive
		}
	}()
	return s.Attempt(ctx, letter)
}
