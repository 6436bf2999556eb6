// Package logger provides the engine-wide structured logger, a thin singleton
// over charmbracelet/log. All engine packages log through it so output stays
// uniform and the level can be raised in one place.
package logger

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	if singleton == nil {
		once.Do(
			func() {
				l := log.NewWithOptions(os.Stderr, log.Options{
					ReportTimestamp: true,
					TimeFormat:      time.RFC3339,
					Prefix:          "raygrid",
				})
				l.SetLevel(log.InfoLevel)
				singleton = &logger{l}
			})
	}
	return singleton
}

// SetDebug enables or disables debug-level output.
//
// Parameters:
//   - enabled: true to log debug messages, false for info and above
func SetDebug(enabled bool) {
	if enabled {
		getLogger().SetLevel(log.DebugLevel)
	} else {
		getLogger().SetLevel(log.InfoLevel)
	}
}

// Debug logs a debug message with structured key/value pairs.
func Debug(msg string, keyvals ...interface{}) {
	getLogger().Debug(msg, keyvals...)
}

// Info logs an informational message with structured key/value pairs.
func Info(msg string, keyvals ...interface{}) {
	getLogger().Info(msg, keyvals...)
}

// Warn logs a warning with structured key/value pairs.
func Warn(msg string, keyvals ...interface{}) {
	getLogger().Warn(msg, keyvals...)
}

// Error logs an error with structured key/value pairs.
func Error(msg string, keyvals ...interface{}) {
	getLogger().Error(msg, keyvals...)
}

// Fatal logs an error with structured key/value pairs and exits the process.
func Fatal(msg string, keyvals ...interface{}) {
	getLogger().Fatal(msg, keyvals...)
}
