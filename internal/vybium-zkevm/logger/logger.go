// Package logger creates the module-scoped loggers used across the circuit,
// the recorder and the command line tool.
package logger

import (
	"os"
	"time"

	"github.com/op/go-logging"
)

const defaultLogFormat = "%{color}%{time:15:04:05.000} %{level:.4s} %{module}%{color:reset}: %{message}"

// Logger is the subset of *logging.Logger the rest of the module uses.
type Logger interface {
	Critical(args ...interface{})
	Criticalf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Warning(args ...interface{})
	Warningf(format string, args ...interface{})
	Notice(args ...interface{})
	Noticef(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	IsEnabledFor(level logging.Level) bool
}

// NewLogger returns a logger for module writing to stderr at the given level.
// An unknown level falls back to INFO.
func NewLogger(level string, module string) Logger {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(defaultLogFormat))
	leveled := logging.AddModuleLevel(formatted)

	lvl, err := logging.LogLevel(level)
	if err != nil {
		lvl = logging.INFO
	}
	leveled.SetLevel(lvl, module)

	log := logging.MustGetLogger(module)
	log.SetBackend(leveled)
	return &moduleLogger{Logger: log, leveled: leveled}
}

// moduleLogger answers level queries from its own backend; the embedded
// logger would consult the package default backend instead.
type moduleLogger struct {
	*logging.Logger
	leveled logging.LeveledBackend
}

func (l *moduleLogger) IsEnabledFor(level logging.Level) bool {
	return l.leveled.IsEnabledFor(level, l.Module)
}

// ParseTime splits a duration into hours, minutes and seconds.
func ParseTime(elapsed time.Duration) (uint32, uint32, uint32) {
	total := uint32(elapsed.Round(time.Second).Seconds())
	return total / 3600, total % 3600 / 60, total % 60
}
