package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before Init with logrus defaults.
var Log = logrus.New()

// Init configures the global logger. level is any logrus level name and
// defaults to info when empty or unknown. format is "json" or "text".
// Call it once at startup from main.
func Init(level, format string) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	Log.SetOutput(os.Stdout)
}

// SetOutput redirects the global logger. The stdio MCP transport owns stdout,
// so it sends logs to stderr.
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// WithComponent returns an entry tagged with the given component name
func WithComponent(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
