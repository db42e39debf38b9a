package testutil

import (
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// Importing testutil silences logrus unless the test binary runs verbose.
func init() {
	for _, arg := range os.Args {
		if arg == "-test.v=true" || arg == "-test.v" {
			return
		}
	}

	logrus.SetLevel(logrus.TraceLevel)
	logrus.StandardLogger().Out = io.Discard
}

// CaptureLogs records every entry written to the standard logger until the
// test ends.
func CaptureLogs(t *testing.T) *logtest.Hook {
	logger := logrus.StandardLogger()

	original := make(logrus.LevelHooks)
	for level, hooks := range logger.Hooks {
		original[level] = append([]logrus.Hook(nil), hooks...)
	}
	level := logger.GetLevel()

	logger.SetLevel(logrus.TraceLevel)
	hook := logtest.NewLocal(logger)

	t.Cleanup(func() {
		logger.ReplaceHooks(original)
		logger.SetLevel(level)
	})
	return hook
}

// HasEntry reports whether hook captured an entry at level with msg.
func HasEntry(hook *logtest.Hook, level logrus.Level, msg string) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}
