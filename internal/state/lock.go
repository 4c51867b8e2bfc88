package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// ErrRunInProgress is returned when another run holds the advisory lock.
// Callers must fail fast, never queue or wait.
var ErrRunInProgress = errors.New("state: another run is already in progress")

// Lock is the advisory run lock. A second invocation finding a live lock
// fails with ErrRunInProgress rather than interleave writes.
type Lock struct {
	RunID     string    `json:"runId"`
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"startedAt"`

	path string
}

func lockPath(docDir string) string {
	return filepath.Join(docDir, ".doclock")
}

// Acquire takes the run lock for this process. A lock left behind by a dead
// process on the same host is reclaimed; a live one yields ErrRunInProgress.
func Acquire(docDir string) (*Lock, error) {
	path := lockPath(docDir)
	host, _ := os.Hostname()

	l := &Lock{
		RunID:     uuid.NewString(),
		PID:       os.Getpid(),
		Hostname:  host,
		StartedAt: time.Now().UTC(),
		path:      path,
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			data, mErr := json.MarshalIndent(l, "", "  ")
			if mErr != nil {
				f.Close()
				os.Remove(path)
				return nil, mErr
			}
			if _, wErr := f.Write(data); wErr != nil {
				f.Close()
				os.Remove(path)
				return nil, wErr
			}
			if cErr := f.Close(); cErr != nil {
				os.Remove(path)
				return nil, cErr
			}
			return l, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, err
		}

		holder, rErr := readLock(path)
		if rErr != nil {
			// Unreadable lock file: treat as live, do not steal it.
			return nil, fmt.Errorf("%w (unreadable lock at %s)", ErrRunInProgress, path)
		}
		if holder.Hostname == host && !processAlive(holder.PID) {
			// Stale lock from a crashed run on this host.
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				return nil, rmErr
			}
			continue
		}
		return nil, fmt.Errorf("%w (held by pid %d on %s since %s)",
			ErrRunInProgress, holder.PID, holder.Hostname,
			holder.StartedAt.Format(time.RFC3339))
	}
	return nil, ErrRunInProgress
}

// Release removes the lock file. Safe to call on an already-released lock.
func (l *Lock) Release() error {
	if l == nil || l.path == "" {
		return nil
	}
	err := os.Remove(l.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	l.path = ""
	return nil
}

// Break removes any lock file unconditionally (the --force-unlock escape
// hatch). Returns true if a lock was removed.
func Break(docDir string) (bool, error) {
	err := os.Remove(lockPath(docDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func readLock(path string) (*Lock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var l Lock
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// processAlive reports whether pid refers to a running process. Signal 0
// performs the existence check without delivering anything.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
