// Package lockfile keeps a single long-running fitlog process per user,
// recorded as "pid|started_at" in a file and checked against the process
// table.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/fitlog/internal/constants"
)

// ErrLocked is returned when a live process already holds the lock.
var ErrLocked = errors.New("lock held by another process")

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

// Lock is an acquired lockfile.
type Lock struct {
	path string
	pid  int
}

// Holder describes the process recorded in a lockfile.
type Holder struct {
	PID       int
	StartedAt time.Time
}

// Acquire takes the lock at path. A file left by a process that is no
// longer running, or by something other than fitlog, is replaced.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	if holder, err := Read(path); err == nil && alive(holder.PID) {
		return nil, fmt.Errorf("%w: pid %d since %s", ErrLocked, holder.PID, holder.StartedAt.Format(time.RFC3339))
	}

	pid := getpidFunc()
	content := fmt.Sprintf("%d|%s", pid, time.Now().UTC().Format(time.RFC3339))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0600); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return &Lock{path: path, pid: pid}, nil
}

// Release removes the lockfile if this process still owns it.
func (l *Lock) Release() error {
	holder, err := Read(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if holder.PID != l.pid {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

// Read parses the lockfile at path.
func Read(path string) (Holder, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Holder{}, err
	}
	pidStr, started, ok := strings.Cut(strings.TrimSpace(string(content)), "|")
	if !ok {
		return Holder{}, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return Holder{}, errors.New("invalid process ID in lockfile")
	}
	startedAt, err := time.Parse(time.RFC3339, started)
	if err != nil {
		return Holder{}, fmt.Errorf("invalid start time in lockfile: %w", err)
	}
	return Holder{PID: pid, StartedAt: startedAt}, nil
}

// alive reports whether pid is a running fitlog process.
func alive(pid int) bool {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return false
	}
	return strings.HasPrefix(process.Executable(), constants.AppName)
}

// DefaultPath is the watch lockfile under configDir.
func DefaultPath(configDir string) string {
	return filepath.Join(configDir, constants.WatchLockfileName)
}
