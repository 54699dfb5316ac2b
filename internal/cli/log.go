// Package cli implements the layerdeck command-line interface.
//
// The commands load a scene file, run the layer visibility controller over
// it, and either print, mutate, serve or render the result. The CLI is built
// using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - inspect: Print the decorated rows of a scene
//   - toggle: Apply a next, plus or minus click to one node
//   - compose: Add a composition map entry to a layered actor
//   - tui: Interactive terminal panel
//   - serve: HTTP panel with Prometheus metrics
//   - export: Graphviz DOT or SVG diagram of the hierarchy
//   - cache: Manage the render cache
//
// # Configuration
//
// Defaults come from $XDG_CONFIG_HOME/layerdeck/config.toml (or --config).
// Flags given on the command line win over the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with "15:04:05.00"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one operation. Start is logged at debug level, completion
// at info level with an "elapsed" field.
type progress struct {
	logger  *log.Logger
	msg     string
	keyvals []any
	start   time.Time
}

func startProgress(l *log.Logger, msg string, keyvals ...any) *progress {
	l.Debug(msg+" started", keyvals...)
	return &progress{logger: l, msg: msg, keyvals: keyvals, start: time.Now()}
}

// done logs completion. keyvals are appended to those given at start.
func (p *progress) done(keyvals ...any) {
	kv := append(append([]any{}, p.keyvals...), keyvals...)
	kv = append(kv, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(p.msg, kv...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a context carrying l.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
			return l
		}
	}
	return log.Default()
}
