package daemon

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"crosswalk/internal/config"
)

// LockFilePath returns where crosswalkd places its instance lock. The lock
// lives next to the database it guards.
func LockFilePath(cfg *config.Config) string {
	if cfg == nil || strings.TrimSpace(cfg.Paths.DataDir) == "" {
		return ""
	}
	return filepath.Join(cfg.Paths.DataDir, "crosswalkd.lock")
}

// PIDFilePath returns where crosswalkd records its process id, or empty
// when no log directory is configured.
func PIDFilePath(cfg *config.Config) string {
	if cfg == nil || strings.TrimSpace(cfg.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(cfg.Paths.LogDir, "crosswalkd.pid")
}

// Probe reports whether a crosswalkd instance currently holds the database
// lock, and its pid when the pid file is readable. The probe briefly takes
// and releases the lock itself, so it must not be called from a process
// that is about to start a daemon.
func Probe(cfg *config.Config) (bool, int) {
	lockPath := LockFilePath(cfg)
	if lockPath == "" {
		return false, 0
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return false, 0
	}
	if ok {
		_ = lock.Unlock()
		return false, 0
	}
	return true, readPIDFile(PIDFilePath(cfg))
}

func readPIDFile(path string) int {
	if path == "" {
		return 0
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0
	}
	return pid
}
