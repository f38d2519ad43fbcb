// Package diaglog is the implementation's own observability channel —
// command-runner stage tracing, async job lifecycle, signal terminations —
// never the user-facing diagnostics
// internal/diag carries. Those two are kept strictly separate: a syntax
// error belongs on stderr verbatim, a "spawned pid 1234" note belongs in
// a structured log line the user can turn off.
package diaglog

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	if v := os.Getenv("HUSK_LOG"); v != "" {
		if lvl, err := logrus.ParseLevel(v); err == nil {
			l.SetLevel(lvl)
		}
	}
	return l
}

// Logger returns the package-level logger so callers can attach fields:
// diaglog.Logger().WithFields(logrus.Fields{"pos": pos}).Debug("...").
func Logger() *logrus.Logger { return log }

func Debugf(format string, args ...any) { log.Debugf(format, args...) }
func Infof(format string, args ...any)  { log.Infof(format, args...) }
func Warnf(format string, args ...any)  { log.Warnf(format, args...) }
