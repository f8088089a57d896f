package cmd

import (
	"errors"
	"fmt"
	"strings"
)

// exitCode is returned by commands that signal a result through the exit
// status alone, without an error message.
type exitCode struct{ code int }

func (e exitCode) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

// ExitCode extracts the exit code from an exitCode error.
// Returns -1 if the error is not one.
func ExitCode(err error) int {
	var ec exitCode
	if errors.As(err, &ec) {
		return ec.code
	}
	return -1
}

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock returns actionable guidance when a bbolt open fails due to
// lock contention. bbolt allows one writer process per file, so a running
// "advise pull" holds the lock for as long as it runs.
func diagnoseDBLock(dbPath string) string {
	return fmt.Sprintf("database %s is locked by another process\n"+
		"  → a running 'advise pull' holds it; stop it first\n"+
		"  → find the process:  ps aux | grep 'advise'\n"+
		"  → or use the sqlite driver (storage.driver: sqlite) for shared access", dbPath)
}

// wrapOpenError adds lock guidance to a store open failure.
func wrapOpenError(err error, dbPath string) error {
	if isDBLockError(err) {
		return fmt.Errorf("%w\n%s", err, diagnoseDBLock(dbPath))
	}
	return err
}
