// Package drives lists mounted volumes and resolves paths to the volume
// that holds them. On Windows a volume is addressed by its letter ("C:");
// elsewhere by its mount point ("/", "/home").
package drives

import (
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

var ErrNotFound = errors.New("drive not found")

// Source reports every volume the OS knows about, ready or not.
type Source interface {
	Volumes() ([]model.DriveInfo, error)
}

type Inventory struct {
	src    Source
	logger *slog.Logger
}

// New returns an inventory over src; a nil src reads the OS.
func New(src Source, logger *slog.Logger) *Inventory {
	if src == nil {
		src = DefaultSource()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Inventory{src: src, logger: logger}
}

// List returns the ready volumes sorted by letter. Enumeration failure
// yields an empty list.
func (inv *Inventory) List() []model.DriveInfo {
	vols, err := inv.src.Volumes()
	if err != nil {
		inv.logger.Warn("volume enumeration failed", slog.Any("error", err))
		return []model.DriveInfo{}
	}
	out := make([]model.DriveInfo, 0, len(vols))
	for _, v := range vols {
		if v.Ready {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToUpper(out[i].Letter) < strings.ToUpper(out[j].Letter)
	})
	return out
}

// Get returns the current state of one ready volume.
func (inv *Inventory) Get(letter string) (model.DriveInfo, error) {
	want := Normalize(letter)
	if want == "" {
		return model.DriveInfo{}, ErrNotFound
	}
	for _, d := range inv.List() {
		if sameRoot(d.Letter, want) {
			return d, nil
		}
	}
	return model.DriveInfo{}, ErrNotFound
}

// Letters returns the letters of every ready volume.
func (inv *Inventory) Letters() []string {
	list := inv.List()
	out := make([]string, len(list))
	for i, d := range list {
		out[i] = d.Letter
	}
	return out
}

// Owner returns the root among roots that holds path, choosing the
// longest match so nested mounts win over their parents. It returns ""
// when no root matches.
func Owner(path string, roots []string) string {
	best := ""
	for _, r := range roots {
		if r != "" && within(path, r) && len(r) > len(best) {
			best = r
		}
	}
	return best
}

var foldCase = runtime.GOOS == "windows"

func within(path, root string) bool {
	p, r := path, root
	if foldCase {
		p, r = strings.ToLower(p), strings.ToLower(r)
	}
	if !strings.HasPrefix(p, r) {
		return false
	}
	if len(p) == len(r) || strings.HasSuffix(r, "/") || strings.HasSuffix(r, `\`) {
		return true
	}
	c := p[len(r)]
	return c == '/' || c == '\\'
}

func sameRoot(a, b string) bool {
	if foldCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}
