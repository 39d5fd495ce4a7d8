//go:build !windows

package optimize

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/Dicklesworthstone/sysoptimizer/internal/drives"
	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
	"github.com/Dicklesworthstone/sysoptimizer/internal/runner"
	"github.com/Dicklesworthstone/sysoptimizer/internal/store"
)

type fixedClassifier struct {
	media model.MediaType
	calls int
}

func (f *fixedClassifier) Classify(context.Context, string) model.MediaType {
	f.calls++
	return f.media
}

type fakeTools struct {
	temp []string
}

func (fakeTools) TrimQuery(v Volume) runner.Command {
	return runner.Command{Name: "trim-query", Args: []string{v.Letter}}
}

func (fakeTools) Trim(v Volume) runner.Command {
	return runner.Command{Name: "trim", Args: []string{v.Letter}}
}

func (fakeTools) Defrag(v Volume) runner.Command {
	return runner.Command{Name: "defrag", Args: []string{v.Letter}}
}

func (f fakeTools) TempDirs(string) []string { return f.temp }

func noDevice(string) (string, error) { return "", errors.New("none") }

func newTestOrchestrator(t *testing.T, r runner.Runner, media model.MediaType, temp ...string) (*Orchestrator, *fixedClassifier) {
	t.Helper()
	c := &fixedClassifier{media: media}
	return New(r, c,
		WithToolset(fakeTools{temp: temp}),
		WithDevice(noDevice),
	), c
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPurgeTemp_CountsAndLeavesNoEmptyDirs(t *testing.T) {
	root := t.TempDir()
	temp := filepath.Join(root, "temp")
	files := map[string]int{
		"a.tmp":             100,
		"b.log":             250,
		"sub/c.dat":         1000,
		"sub/deeper/d.dat":  7,
		"other/e.bin":       4096,
		"other/x/y/z/f.bin": 1,
	}
	var want int64
	for rel, size := range files {
		writeFile(t, filepath.Join(temp, rel), size)
		want += int64(size)
	}
	if err := os.MkdirAll(filepath.Join(temp, "empty", "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	o, _ := newTestOrchestrator(t, &runner.Script{}, model.MediaHDD, temp)
	o.roots = func() []string { return []string{root} }

	rep := o.PurgeTemp(context.Background(), root)
	if !rep.Success {
		t.Fatalf("Success = false: %s", rep.Description)
	}
	if rep.FileCount != len(files) {
		t.Errorf("FileCount = %d, want %d", rep.FileCount, len(files))
	}
	if rep.BytesFreed != want {
		t.Errorf("BytesFreed = %d, want %d", rep.BytesFreed, want)
	}
	if rep.Operation != model.OpTempPurge || len(rep.Benefits) == 0 {
		t.Errorf("report = %+v", rep)
	}

	entries, err := os.ReadDir(temp)
	if err != nil {
		t.Fatalf("temp root should survive: %v", err)
	}
	if len(entries) != 0 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("leftover entries: %v", names)
	}
}

func TestPurgeTemp_FiltersOtherDrives(t *testing.T) {
	root := t.TempDir()
	mine := filepath.Join(root, "vol", "temp")
	other := filepath.Join(root, "elsewhere", "temp")
	writeFile(t, filepath.Join(mine, "a"), 10)
	writeFile(t, filepath.Join(other, "b"), 20)

	o, _ := newTestOrchestrator(t, &runner.Script{}, model.MediaHDD, mine, other, filepath.Join(root, "missing"))
	vol := filepath.Join(root, "vol")
	o.roots = func() []string { return []string{root, vol} }

	rep := o.PurgeTemp(context.Background(), vol)
	if rep.FileCount != 1 || rep.BytesFreed != 10 {
		t.Errorf("report = %+v, want 1 file / 10 bytes", rep)
	}
	if _, err := os.Stat(filepath.Join(other, "b")); err != nil {
		t.Errorf("file on another volume was touched: %v", err)
	}
	if !strings.Contains(rep.Description, "temp") {
		t.Errorf("Description = %q", rep.Description)
	}
}

func TestPurgeTemp_NoDirectories(t *testing.T) {
	o, _ := newTestOrchestrator(t, &runner.Script{}, model.MediaHDD)
	rep := o.PurgeTemp(context.Background(), t.TempDir())
	if !rep.Success || rep.FileCount != 0 {
		t.Errorf("report = %+v", rep)
	}
}

func TestTrim_RefusesHDDWithoutRunning(t *testing.T) {
	script := &runner.Script{}
	o, _ := newTestOrchestrator(t, script, model.MediaHDD)

	rep := o.Trim(context.Background(), "/")
	if rep.Success {
		t.Error("TRIM on HDD should fail")
	}
	if len(script.Calls()) != 0 {
		t.Errorf("commands run: %+v", script.Calls())
	}
	if rep.BytesFreed != 0 || len(rep.Benefits) != 0 {
		t.Errorf("refusal report = %+v", rep)
	}
}

func TestTrim_RunsQueryThenTrim(t *testing.T) {
	script := &runner.Script{}
	o, _ := newTestOrchestrator(t, script, model.MediaSSD)
	o.trimTimeout = 5 * time.Second

	rep := o.Trim(context.Background(), "/")
	if !rep.Success {
		t.Fatalf("Success = false: %s", rep.Description)
	}
	calls := script.Calls()
	if len(calls) != 2 || calls[0].Name != "trim-query" || calls[1].Name != "trim" {
		t.Fatalf("calls = %+v", calls)
	}
	if calls[1].Timeout != 5*time.Second {
		t.Errorf("trim timeout = %v", calls[1].Timeout)
	}
	if rep.BytesFreed != 0 || len(rep.Benefits) == 0 {
		t.Errorf("report = %+v", rep)
	}
}

func TestTrim_Failures(t *testing.T) {
	tests := []struct {
		name   string
		result runner.Result
		want   string
	}{
		{"timeout", runner.Result{TimedOut: true, Err: runner.ErrTimeout}, "did not finish"},
		{"denied", runner.Result{ExitCode: 1, Err: errors.New("access denied")}, "Administrator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := &runner.Script{Respond: func(c runner.Command) runner.Result {
				if c.Name == "trim" {
					return tt.result
				}
				return runner.Result{}
			}}
			o, _ := newTestOrchestrator(t, script, model.MediaSSD)
			rep := o.Trim(context.Background(), "/")
			if rep.Success {
				t.Fatal("Success = true")
			}
			if !strings.Contains(rep.Description, tt.want) {
				t.Errorf("Description = %q, want it to mention %q", rep.Description, tt.want)
			}
		})
	}
}

func TestDefragment_RefusesSSDWithoutRunning(t *testing.T) {
	script := &runner.Script{}
	o, _ := newTestOrchestrator(t, script, model.MediaSSD)

	rep := o.Defragment(context.Background(), "/")
	if rep.Success || rep.BytesFreed != 0 {
		t.Errorf("report = %+v, want refusal", rep)
	}
	if len(script.Calls()) != 0 {
		t.Errorf("commands run: %+v", script.Calls())
	}
}

func TestDefragment_HDD(t *testing.T) {
	script := &runner.Script{}
	o, _ := newTestOrchestrator(t, script, model.MediaHDD)

	rep := o.Defragment(context.Background(), "/")
	if !rep.Success {
		t.Fatalf("Success = false: %s", rep.Description)
	}
	calls := script.Calls()
	if len(calls) != 1 || calls[0].Name != "defrag" || calls[0].Timeout != 0 {
		t.Errorf("calls = %+v, want one unbounded defrag", calls)
	}
}

type panicRunner struct{}

func (panicRunner) Run(context.Context, runner.Command) runner.Result { panic("tool crashed") }

func TestDefragment_PanicBecomesReport(t *testing.T) {
	o, _ := newTestOrchestrator(t, panicRunner{}, model.MediaHDD)
	rep := o.Defragment(context.Background(), "/")
	if rep.Success {
		t.Fatal("Success = true after panic")
	}
	if !strings.Contains(rep.Description, "tool crashed") {
		t.Errorf("Description = %q", rep.Description)
	}
	if rep.Operation != model.OpDefragment {
		t.Errorf("Operation = %v", rep.Operation)
	}
}

func TestPurgeTemp_LeavesSocketsAndFIFOs(t *testing.T) {
	root := t.TempDir()
	temp := filepath.Join(root, "t")
	writeFile(t, filepath.Join(temp, "junk.tmp"), 10)

	if err := os.MkdirAll(filepath.Join(temp, ".X11-unix"), 0o755); err != nil {
		t.Fatal(err)
	}
	sock := filepath.Join(temp, ".X11-unix", "X0")
	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	defer ln.Close()

	fifo := filepath.Join(temp, "agent.fifo")
	if err := unix.Mkfifo(fifo, 0o600); err != nil {
		t.Skipf("mkfifo unavailable: %v", err)
	}

	o, _ := newTestOrchestrator(t, &runner.Script{}, model.MediaHDD, temp)
	o.roots = func() []string { return []string{root} }

	rep := o.PurgeTemp(context.Background(), root)
	if !rep.Success {
		t.Fatalf("Success = false: %s", rep.Description)
	}
	if rep.FileCount != 1 || rep.BytesFreed != 10 {
		t.Errorf("FileCount = %d, BytesFreed = %d; want 1 and 10", rep.FileCount, rep.BytesFreed)
	}
	for _, p := range []string{sock, fifo} {
		if _, err := os.Lstat(p); err != nil {
			t.Errorf("%s should survive the purge: %v", p, err)
		}
	}
	if _, err := os.Lstat(filepath.Join(temp, "junk.tmp")); !os.IsNotExist(err) {
		t.Errorf("regular file should be deleted, stat err = %v", err)
	}
}

func TestPurgeTemp_RemovesSymlinkNotTarget(t *testing.T) {
	root := t.TempDir()
	temp := filepath.Join(root, "t")
	target := filepath.Join(root, "keep.txt")
	writeFile(t, target, 5)
	if err := os.MkdirAll(temp, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(temp, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	o, _ := newTestOrchestrator(t, &runner.Script{}, model.MediaHDD, temp)
	o.roots = func() []string { return []string{root} }
	rep := o.PurgeTemp(context.Background(), root)

	if rep.FileCount != 1 || rep.BytesFreed != 0 {
		t.Errorf("FileCount = %d, BytesFreed = %d; want 1 and 0", rep.FileCount, rep.BytesFreed)
	}
	if _, err := os.Lstat(link); !os.IsNotExist(err) {
		t.Errorf("symlink should be removed, stat err = %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("symlink target must survive: %v", err)
	}
}

func TestBenefitsIsACopy(t *testing.T) {
	b := Benefits(model.OpTrim)
	b[0] = "changed"
	if Benefits(model.OpTrim)[0] == "changed" {
		t.Error("Benefits returned the shared table")
	}
}

func TestDriveLocks(t *testing.T) {
	l := NewDriveLocks()
	if !l.TryAcquire("/data") {
		t.Fatal("first acquire failed")
	}
	if l.TryAcquire("/data") {
		t.Error("second acquire should fail")
	}
	if !l.TryAcquire("/") {
		t.Error("other drives are independent")
	}
	l.Release("/data")
	if l.Busy("/data") {
		t.Error("released drive still busy")
	}
}

type memSink struct {
	mu      sync.Mutex
	reports []model.DiskReport
}

func (m *memSink) SaveReport(_ context.Context, r model.DiskReport) error {
	m.mu.Lock()
	m.reports = append(m.reports, r)
	m.mu.Unlock()
	return nil
}

type staticSource []model.DriveInfo

func (s staticSource) Volumes() ([]model.DriveInfo, error) { return s, nil }

func TestService_BusyDriveIsRefused(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	script := &runner.Script{Respond: func(runner.Command) runner.Result {
		close(started)
		<-release
		return runner.Result{}
	}}
	o, _ := newTestOrchestrator(t, script, model.MediaHDD)
	sink := &memSink{}
	inv := drives.New(staticSource{{Letter: "/", Ready: true, TotalBytes: 1}}, nil)
	svc := NewService(inv, o.classifier, o, sink, nil)

	done := make(chan model.DiskReport)
	go func() { done <- svc.Defragment(context.Background(), "/") }()
	<-started

	busy := svc.ExecuteTrim(context.Background(), "/")
	if busy.Success || !strings.Contains(busy.Description, "already running") {
		t.Errorf("overlapping op = %+v", busy)
	}

	close(release)
	if rep := <-done; !rep.Success {
		t.Errorf("defrag failed: %s", rep.Description)
	}
	if len(sink.reports) != 1 {
		t.Errorf("saved %d reports, want 1", len(sink.reports))
	}
	if got := svc.ListDrives(); len(got) != 1 {
		t.Errorf("ListDrives = %+v", got)
	}
}

func TestService_SharedLocksAcrossServices(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	openStore := func() *store.Store {
		st, err := store.Open(dbPath)
		if err != nil {
			t.Fatalf("store.Open() failed: %v", err)
		}
		t.Cleanup(func() { st.Close() })
		return st
	}
	inv := drives.New(staticSource{{Letter: "/", Ready: true, TotalBytes: 1}}, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	blocking := &runner.Script{Respond: func(runner.Command) runner.Result {
		close(started)
		<-release
		return runner.Result{}
	}}
	oa, _ := newTestOrchestrator(t, blocking, model.MediaHDD)
	first := NewService(inv, oa.classifier, oa, nil, nil, WithSharedLocks(openStore().DriveLocker()))

	idle := &runner.Script{}
	ob, _ := newTestOrchestrator(t, idle, model.MediaHDD)
	second := NewService(inv, ob.classifier, ob, nil, nil, WithSharedLocks(openStore().DriveLocker()))

	done := make(chan model.DiskReport)
	go func() { done <- first.Defragment(context.Background(), "/") }()
	<-started

	busy := second.Defragment(context.Background(), "/")
	if busy.Success || !strings.Contains(busy.Description, "already running") {
		t.Errorf("overlapping op from second service = %+v", busy)
	}
	if len(idle.Calls()) != 0 {
		t.Errorf("refused op ran commands: %+v", idle.Calls())
	}

	close(release)
	if rep := <-done; !rep.Success {
		t.Fatalf("first defrag failed: %s", rep.Description)
	}
	if rep := second.Defragment(context.Background(), "/"); !rep.Success {
		t.Errorf("drive should be free after the first finished: %s", rep.Description)
	}
}

type failingLocker struct{}

func (failingLocker) TryAcquire(context.Context, string) (bool, error) {
	return false, errors.New("database is locked")
}

func (failingLocker) Release(context.Context, string) error { return nil }

func TestService_SharedLockErrorStillRuns(t *testing.T) {
	o, _ := newTestOrchestrator(t, &runner.Script{}, model.MediaHDD)
	inv := drives.New(staticSource{{Letter: "/", Ready: true, TotalBytes: 1}}, nil)
	svc := NewService(inv, o.classifier, o, nil, nil, WithSharedLocks(failingLocker{}))

	if rep := svc.Defragment(context.Background(), "/"); !rep.Success {
		t.Errorf("lock store failure should not block the operation: %s", rep.Description)
	}
}

func TestPurgeAllTemp(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	writeFile(t, filepath.Join(a, "one"), 5)
	writeFile(t, filepath.Join(b, "nested", "two"), 7)

	o := New(&runner.Script{}, &fixedClassifier{},
		WithToolset(fakeTools{temp: []string{a, a, filepath.Join(root, "missing")}}),
		WithExtraTempDirs(b),
	)

	res := o.PurgeAllTemp()
	if res.FilesDeleted != 2 || res.BytesFreed != 12 || len(res.DeletedFiles) != 2 {
		t.Errorf("result = %+v", res)
	}
}
