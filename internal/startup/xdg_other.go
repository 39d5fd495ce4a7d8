//go:build !windows

package startup

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

// Lister reads XDG autostart directories, user entries first.
type Lister struct {
	dirs   []string
	logger *slog.Logger
}

func NewLister(logger *slog.Logger) *Lister {
	return NewListerDirs(logger, AutostartDirs()...)
}

// NewListerDirs reads the given autostart directories instead of the
// XDG defaults.
func NewListerDirs(logger *slog.Logger, dirs ...string) *Lister {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Lister{dirs: dirs, logger: logger}
}

// AutostartDirs follows the XDG base directory rules.
func AutostartDirs() []string {
	var dirs []string
	if cfg := os.Getenv("XDG_CONFIG_HOME"); cfg != "" {
		dirs = append(dirs, filepath.Join(cfg, "autostart"))
	} else if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "autostart"))
	}
	sys := os.Getenv("XDG_CONFIG_DIRS")
	if sys == "" {
		sys = "/etc/xdg"
	}
	for _, d := range filepath.SplitList(sys) {
		if d != "" {
			dirs = append(dirs, filepath.Join(d, "autostart"))
		}
	}
	return dirs
}

// List never fails; unreadable files are skipped. Hidden or disabled
// entries are left out.
func (l *Lister) List() []model.StartupApp {
	var entries []entry
	for _, dir := range l.dirs {
		matches, err := filepath.Glob(filepath.Join(dir, "*.desktop"))
		if err != nil {
			continue
		}
		for _, path := range matches {
			e, err := readDesktopFile(path)
			if err != nil {
				l.logger.Debug("autostart entry unreadable", slog.String("path", path), slog.Any("error", err))
				continue
			}
			if e.Hidden || !e.Enabled || e.Exec == "" {
				continue
			}
			name := e.Name
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), ".desktop")
			}
			entries = append(entries, entry{location: dir, name: name, command: e.Exec})
		}
	}
	return collapse(entries)
}

func readDesktopFile(path string) (DesktopEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return DesktopEntry{}, err
	}
	defer f.Close()
	return ParseDesktopEntry(f)
}
