package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-ps"
)

type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.executable }

func withProcesses(t *testing.T, pid int, running map[int]string) {
	t.Helper()
	origFind, origPid := findProcessFunc, getpidFunc
	t.Cleanup(func() {
		findProcessFunc, getpidFunc = origFind, origPid
	})
	getpidFunc = func() int { return pid }
	findProcessFunc = func(pid int) (ps.Process, error) {
		exe, ok := running[pid]
		if !ok {
			return nil, nil
		}
		return fakeProcess{pid: pid, executable: exe}, nil
	}
}

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.lock")
	withProcesses(t, 100, map[int]string{100: "fitlog"})

	lock, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	holder, err := Read(path)
	if err != nil || holder.PID != 100 {
		t.Fatalf("Read() = %+v, %v", holder, err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("lockfile still present: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
}

func TestAcquireHeldByLiveProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.lock")
	withProcesses(t, 100, map[int]string{100: "fitlog", 200: "fitlog"})
	if err := os.WriteFile(path, []byte("200|2026-10-16T08:00:00Z"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Acquire(path); !errors.Is(err, ErrLocked) {
		t.Errorf("Acquire() error = %v, want ErrLocked", err)
	}
}

func TestAcquireReplacesStaleLock(t *testing.T) {
	tests := []struct {
		name    string
		content string
		running map[int]string
	}{
		{name: "dead process", content: "200|2026-10-16T08:00:00Z", running: map[int]string{}},
		{name: "pid reused by another program", content: "200|2026-10-16T08:00:00Z", running: map[int]string{200: "bash"}},
		{name: "malformed", content: "garbage", running: map[int]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "watch.lock")
			withProcesses(t, 100, tt.running)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			lock, err := Acquire(path)
			if err != nil {
				t.Fatalf("Acquire() error = %v", err)
			}
			if holder, _ := Read(path); holder.PID != 100 {
				t.Errorf("holder = %+v, want pid 100", holder)
			}
			_ = lock.Release()
		})
	}
}

func TestReleaseLeavesForeignLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.lock")
	withProcesses(t, 100, map[int]string{})
	lock, err := Acquire(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("300|2026-10-16T09:00:00Z"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := lock.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("Release() removed a lock owned by another process")
	}
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"no separator": "1234",
		"bad pid":      "abc|2026-10-16T08:00:00Z",
		"bad time":     "1234|yesterday",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Read(path); err == nil {
				t.Error("Read() expected error")
			}
		})
	}
}
