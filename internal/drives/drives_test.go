package drives

import (
	"errors"
	"testing"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

type staticSource struct {
	vols []model.DriveInfo
	err  error
}

func (s staticSource) Volumes() ([]model.DriveInfo, error) { return s.vols, s.err }

func TestList_SkipsNotReadyAndSorts(t *testing.T) {
	inv := New(staticSource{vols: []model.DriveInfo{
		{Letter: "/home", Ready: true, TotalBytes: 10},
		{Letter: "/media/cd", Ready: false},
		{Letter: "/", Ready: true, TotalBytes: 20},
	}}, nil)

	got := inv.List()
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Letter != "/" || got[1].Letter != "/home" {
		t.Errorf("order = %s, %s", got[0].Letter, got[1].Letter)
	}
}

func TestList_ErrorIsEmpty(t *testing.T) {
	inv := New(staticSource{err: errors.New("boom")}, nil)
	got := inv.List()
	if got == nil || len(got) != 0 {
		t.Errorf("List() = %#v, want empty slice", got)
	}
}

func TestGet(t *testing.T) {
	inv := New(staticSource{vols: []model.DriveInfo{
		{Letter: "/", Ready: true, TotalBytes: 100, FreeBytes: 40},
		{Letter: "/mnt/usb", Ready: false},
	}}, nil)

	d, err := inv.Get("/")
	if err != nil {
		t.Fatalf("Get(/) error: %v", err)
	}
	if d.FreeBytes != 40 {
		t.Errorf("FreeBytes = %d", d.FreeBytes)
	}
	if _, err := inv.Get("/mnt/usb"); !errors.Is(err, ErrNotFound) {
		t.Errorf("not-ready drive: err = %v, want ErrNotFound", err)
	}
	if _, err := inv.Get(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty letter: err = %v, want ErrNotFound", err)
	}
}

func TestOwner(t *testing.T) {
	roots := []string{"/", "/home", "/home/user/data"}
	tests := []struct {
		path string
		want string
	}{
		{"/tmp", "/"},
		{"/home/user/tmp", "/home"},
		{"/home/user/data/x", "/home/user/data"},
		{"/homely", "/"},
		{"/home", "/home"},
	}
	for _, tt := range tests {
		if got := Owner(tt.path, roots); got != tt.want {
			t.Errorf("Owner(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
	if got := Owner("/tmp", []string{"/home"}); got != "" {
		t.Errorf("Owner with no match = %q", got)
	}
}
