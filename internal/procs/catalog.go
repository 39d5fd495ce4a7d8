package procs

import (
	"runtime"
	"strings"
)

const (
	externalReason      = "External application"
	fallbackDescription = "Application external to the operating system."
)

// Core shell and session processes that must never be terminated.
var (
	windowsCritical = []string{
		"explorer", "dwm", "csrss", "winlogon", "services",
		"lsass", "svchost", "smss", "spoolsv", "System",
	}
	unixCritical = []string{
		"systemd", "init", "launchd", "kthreadd", "loginwindow",
		"WindowServer", "Xorg", "Xwayland", "gnome-shell",
		"plasmashell", "sshd", "dbus-daemon", "login",
	}
)

var descriptions = map[string]string{
	"code":               "Code editor (Visual Studio Code).",
	"sysopt":             "This optimizer.",
	"discord":            "Voice and text chat for communities.",
	"teams":              "Communication and meetings.",
	"slack":              "Team messaging.",
	"chrome":             "Web browser.",
	"msedge":             "Web browser.",
	"firefox":            "Web browser.",
	"spotify":            "Music player.",
	"steam":              "Game client and digital store.",
	"steamwebhelper":     "Steam web component.",
	"epicgameslauncher":  "Game client and digital store.",
	"battlenet":          "Game client and updates.",
	"riotclientservices": "Game client and associated services.",
	"obs64":              "Recording and streaming.",
	"obs":                "Recording and streaming.",
	"origin":             "Game client and associated services.",
	"goggalaxy":          "Game client and digital store.",
	"ubisoftconnect":     "Game client and associated services.",
	"overwolf":           "Tools and overlays for games.",
	"nvidia share":       "NVIDIA overlay and capture.",
	"amdsoftware":        "AMD control panel and overlay.",
	"msi afterburner":    "Monitoring and overclocking.",
	"logitechghub":       "Gaming peripheral control.",
	"razer synapse":      "Gaming peripheral control.",
	"steelseriesgg":      "Gaming peripheral control.",
	"whatsapp":           "Desktop messaging.",
}

// Catalog holds the protected process set and the description table.
// Names match case-insensitively and exactly; there is no path or
// signature check.
type Catalog struct {
	critical     map[string]struct{}
	descriptions map[string]string
}

// DefaultCatalog returns the catalog for the running OS. extra names are
// added to the protected set; the built-in names cannot be removed.
func DefaultCatalog(extra ...string) *Catalog {
	base := unixCritical
	if runtime.GOOS == "windows" {
		base = windowsCritical
	}
	return NewCatalog(append(append([]string{}, base...), extra...), descriptions)
}

// NewCatalog builds a catalog from explicit tables.
func NewCatalog(critical []string, desc map[string]string) *Catalog {
	c := &Catalog{
		critical:     make(map[string]struct{}, len(critical)),
		descriptions: make(map[string]string, len(desc)),
	}
	for _, name := range critical {
		if k := key(name); k != "" {
			c.critical[k] = struct{}{}
		}
	}
	for name, d := range desc {
		c.descriptions[key(name)] = d
	}
	return c
}

func (c *Catalog) IsCritical(name string) bool {
	_, ok := c.critical[key(name)]
	return ok
}

// Describe returns the table entry for name, or generic text.
func (c *Catalog) Describe(name string) string {
	if d, ok := c.descriptions[key(name)]; ok {
		return d
	}
	return fallbackDescription
}

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }
