package procs

import (
	"io"
	"log/slog"
	"strings"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

// Terminator force-closes every process sharing a name, along with its
// descendants. Protected names are refused before the process table is
// even read.
type Terminator struct {
	table   Table
	catalog *Catalog
	logger  *slog.Logger
}

func NewTerminator(table Table, catalog *Catalog, logger *slog.Logger) *Terminator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Terminator{table: table, catalog: catalog, logger: logger}
}

// CloseByName returns how many matching processes were killed and how
// many refused. A protected or empty name yields (0, 0).
func (t *Terminator) CloseByName(name string) model.ProcessCloseResult {
	name = strings.TrimSpace(name)
	res := model.ProcessCloseResult{Name: name}
	if name == "" {
		return res
	}
	if t.catalog.IsCritical(name) {
		t.logger.Info("refusing to close protected process", slog.String("name", name))
		return res
	}

	handles, err := t.table.Processes()
	if err != nil {
		t.logger.Warn("process enumeration failed", slog.Any("error", err))
		return res
	}
	for _, h := range handles {
		n, err := h.Name()
		if err != nil || !strings.EqualFold(n, name) {
			continue
		}
		if err := h.KillTree(); err != nil {
			t.logger.Debug("kill failed", slog.Int("pid", int(h.PID())), slog.String("name", n), slog.Any("error", err))
			res.Failed++
			continue
		}
		res.Closed++
	}
	t.logger.Info("closed processes", slog.String("name", name), slog.Int("closed", res.Closed), slog.Int("failed", res.Failed))
	return res
}
