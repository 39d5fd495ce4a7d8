//go:build windows

package startup

import (
	"io"
	"log/slog"

	"golang.org/x/sys/windows/registry"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

const runKey = `Software\Microsoft\Windows\CurrentVersion\Run`

type hive struct {
	root registry.Key
	name string
}

type view struct {
	access uint32
	name   string
}

var (
	hives = []hive{
		{registry.CURRENT_USER, "HKCU"},
		{registry.LOCAL_MACHINE, "HKLM"},
	}
	views = []view{
		{registry.WOW64_64KEY, "64-bit"},
		{registry.WOW64_32KEY, "32-bit"},
	}
)

// Lister reads the Run keys of both hives in both registry views.
type Lister struct {
	logger *slog.Logger
}

func NewLister(logger *slog.Logger) *Lister {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Lister{logger: logger}
}

// List never fails; unreadable keys or values are skipped.
func (l *Lister) List() []model.StartupApp {
	var entries []entry
	for _, h := range hives {
		for _, v := range views {
			entries = append(entries, l.readRun(h, v)...)
		}
	}
	return collapse(entries)
}

func (l *Lister) readRun(h hive, v view) []entry {
	k, err := registry.OpenKey(h.root, runKey, registry.QUERY_VALUE|registry.ENUMERATE_SUB_KEYS|v.access)
	if err != nil {
		l.logger.Debug("run key unavailable", slog.String("hive", h.name), slog.String("view", v.name), slog.Any("error", err))
		return nil
	}
	defer k.Close()

	names, err := k.ReadValueNames(0)
	if err != nil {
		return nil
	}
	location := h.name + `\` + runKey
	var out []entry
	for _, name := range names {
		cmd, _, err := k.GetStringValue(name)
		if err != nil {
			continue
		}
		out = append(out, entry{location: location, view: v.name, name: name, command: cmd})
	}
	return out
}
