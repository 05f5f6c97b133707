// Package lockfile grants a single process write access to a log directory.
// The lock is an advisory flock(2) on a file holding the owner's PID; the PID
// allows stale locks left on filesystems without flock support to be
// reclaimed once their owner is gone.
package lockfile

import (
	"encoding/binary"
	errs "errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"syscall"

	"github.com/go-stdlog/stdlog"
	"github.com/gofrs/flock"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/heyvito/walcursor/errors"
)

type Lock struct {
	fl   *flock.Flock
	path string
	log  stdlog.Logger
}

// Acquire obtains the lock at path. Returns CannotAcquireLogLockError in case
// another live process holds it.
func Acquire(path string, log stdlog.Logger) (*Lock, error) {
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed locking %s: %w", path, err)
	}
	if !locked {
		return nil, errors.CannotAcquireLogLockError{PID: holderPID(path, log)}
	}

	l := &Lock{fl: fl, path: path, log: log}
	pid, err := readPID(path)
	if err != nil {
		return nil, errs.Join(fmt.Errorf("failed reading lock file: %w", err), fl.Unlock())
	}

	if pid > 0 && pid != os.Getpid() {
		alive, err := ownerAlive(pid)
		if err != nil {
			return nil, errs.Join(err, fl.Unlock())
		}
		if alive {
			return nil, errs.Join(errors.CannotAcquireLogLockError{PID: pid}, fl.Unlock())
		}
		log.Warning("Reclaiming lock left by a finished process", "pid", pid)
	}

	if err = writePID(path, os.Getpid()); err != nil {
		return nil, errs.Join(fmt.Errorf("failed writing current pid to lockfile: %w", err), fl.Unlock())
	}
	return l, nil
}

// Release removes the lock file and releases the lock.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !errs.Is(err, fs.ErrNotExist) {
		return err
	}
	return l.fl.Unlock()
}

// holderPID returns the PID recorded in the lock file at path, or zero when
// it cannot be read.
func holderPID(path string, log stdlog.Logger) int {
	pid, err := readPID(path)
	if err != nil {
		log.Debug("Failed reading lock owner", "path", path, "error", err.Error())
		return 0
	}
	return pid
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return -1, err
	}
	if len(data) < 8 {
		return 0, nil
	}
	return int(binary.BigEndian.Uint64(data)), nil
}

func writePID(path string, pid int) error {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, uint64(pid))
	return os.WriteFile(path, data, 0644)
}

// ownerAlive reports whether pid still refers to the process that wrote it
// into the lock file.
func ownerAlive(pid int) (bool, error) {
	proc, err := process.NewProcess(int32(pid))
	if errs.Is(err, process.ErrorProcessNotRunning) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed querying pid %d: %w", pid, err)
	}

	running, err := proc.IsRunning()
	if err != nil {
		return false, fmt.Errorf("failed querying pid %d status: %w", pid, err)
	}
	if !running {
		return false, nil
	}

	cmd, err := proc.CmdlineSlice()
	if err != nil && !errs.Is(err, syscall.EINVAL) {
		return false, fmt.Errorf("failed querying pid %d cmdline: %w", pid, err)
	}

	// An empty command line usually means a zombie, which cannot be holding
	// the log anymore.
	if len(cmd) == 0 {
		status, err := proc.Status()
		if err != nil {
			return false, fmt.Errorf("failed querying pid %d state: %w", pid, err)
		}
		return !slices.Contains(status, process.Zombie), nil
	}

	exe, err := os.Executable()
	if err != nil {
		return false, fmt.Errorf("failed querying current executable path: %w", err)
	}

	// A different program reusing the PID means the owner is gone.
	return cmd[0] == exe, nil
}
