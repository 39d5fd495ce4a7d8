// Package startup lists programs the OS launches at logon.
package startup

import (
	"sort"
	"strings"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

// entry is one raw autorun record. view distinguishes the 32 and 64-bit
// registry views and is empty elsewhere.
type entry struct {
	location string
	view     string
	name     string
	command  string
}

// collapse drops duplicate (location, view, name, command) records and
// orders the rest by name.
func collapse(entries []entry) []model.StartupApp {
	seen := make(map[entry]bool, len(entries))
	out := make([]model.StartupApp, 0, len(entries))
	for _, e := range entries {
		if e.name == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, model.StartupApp{Name: e.name, Location: e.location, Command: e.command})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
