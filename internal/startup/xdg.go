package startup

import (
	"bufio"
	"io"
	"strings"
)

// DesktopEntry holds the [Desktop Entry] keys that matter for autostart.
type DesktopEntry struct {
	Name    string
	Exec    string
	Hidden  bool
	Enabled bool
}

// ParseDesktopEntry reads a freedesktop .desktop file. Keys outside the
// [Desktop Entry] group and localized keys such as Name[de] are ignored.
func ParseDesktopEntry(r io.Reader) (DesktopEntry, error) {
	e := DesktopEntry{Enabled: true}
	inGroup := false
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inGroup = line == "[Desktop Entry]"
			continue
		}
		if !inGroup {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		switch k {
		case "Name":
			e.Name = v
		case "Exec":
			e.Exec = v
		case "Hidden":
			e.Hidden = strings.EqualFold(v, "true")
		case "X-GNOME-Autostart-enabled":
			e.Enabled = !strings.EqualFold(v, "false")
		}
	}
	return e, sc.Err()
}
