package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/fitlog/internal/lockfile"
	"github.com/julianstephens/fitlog/internal/logger"
	"github.com/julianstephens/fitlog/internal/storage"
)

// Format formats an error message with a consistent "Error: " prefix and,
// for errors the user can act on, a hint on the following line.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\n  hint: " + hint
	}
	return msg
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint returns a short remediation for well-known failures, or "".
func Hint(err error) string {
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		return "no local profile yet, run 'fitlog sync' while online to pull it"
	case stderrors.Is(err, storage.ErrNotInitialized):
		return "run 'fitlog init' first"
	case stderrors.Is(err, lockfile.ErrLocked):
		return "another 'fitlog sync watch' is already running"
	default:
		return ""
	}
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
