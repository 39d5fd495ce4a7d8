//go:build !windows

package startup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestListerReadsAutostartDirs(t *testing.T) {
	user := t.TempDir()
	system := t.TempDir()
	write := func(dir, name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(user, "sync.desktop", "[Desktop Entry]\nName=Sync\nExec=sync-daemon\n")
	write(user, "off.desktop", "[Desktop Entry]\nName=Off\nExec=off\nHidden=true\n")
	write(system, "agent.desktop", "[Desktop Entry]\nExec=agent --tray\n")
	write(system, "sync.desktop", "[Desktop Entry]\nName=Sync\nExec=sync-daemon\n")
	write(system, "notes.txt", "not an entry")

	got := NewListerDirs(nil, user, system).List()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(got), got)
	}
	if got[0].Name != "agent" || got[0].Command != "agent --tray" || got[0].Location != system {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Name != "Sync" || got[2].Name != "Sync" || got[1].Location == got[2].Location {
		t.Errorf("Sync entries = %+v, %+v", got[1], got[2])
	}
}

func TestListerMissingDir(t *testing.T) {
	got := NewListerDirs(nil, filepath.Join(t.TempDir(), "absent")).List()
	if len(got) != 0 {
		t.Errorf("List() = %+v", got)
	}
}
