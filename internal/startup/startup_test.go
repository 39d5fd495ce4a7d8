package startup

import (
	"strings"
	"testing"
)

func TestCollapse(t *testing.T) {
	got := collapse([]entry{
		{location: "HKCU", view: "64-bit", name: "zoom", command: "zoom.exe"},
		{location: "HKCU", view: "64-bit", name: "zoom", command: "zoom.exe"},
		{location: "HKCU", view: "32-bit", name: "zoom", command: "zoom.exe"},
		{location: "HKLM", view: "64-bit", name: "Audio", command: "audio.exe"},
		{location: "HKLM", view: "64-bit", name: "", command: "blank.exe"},
	})
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(got), got)
	}
	if got[0].Name != "Audio" || got[1].Name != "zoom" || got[2].Name != "zoom" {
		t.Errorf("order = %+v", got)
	}
}

func TestParseDesktopEntry(t *testing.T) {
	const file = `# comment
[Desktop Entry]
Type=Application
Name=Syncthing
Name[de]=Syncthing DE
Exec=/usr/bin/syncthing serve --no-browser
X-GNOME-Autostart-enabled=true

[Desktop Action New]
Name=Other
Exec=/bin/false
`
	e, err := ParseDesktopEntry(strings.NewReader(file))
	if err != nil {
		t.Fatal(err)
	}
	if e.Name != "Syncthing" {
		t.Errorf("Name = %q", e.Name)
	}
	if e.Exec != "/usr/bin/syncthing serve --no-browser" {
		t.Errorf("Exec = %q", e.Exec)
	}
	if e.Hidden || !e.Enabled {
		t.Errorf("Hidden = %v, Enabled = %v", e.Hidden, e.Enabled)
	}
}

func TestParseDesktopEntry_Disabled(t *testing.T) {
	e, err := ParseDesktopEntry(strings.NewReader("[Desktop Entry]\nHidden=true\nX-GNOME-Autostart-enabled=false\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !e.Hidden || e.Enabled {
		t.Errorf("Hidden = %v, Enabled = %v", e.Hidden, e.Enabled)
	}
}
