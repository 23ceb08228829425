// Package cli implements the swanjson command-line interface.
//
// # Commands
//
//   - render: serialize a JSON, JSONC, YAML, TOML, CBOR or MessagePack document
//   - publish: serialize a document and publish it over NATS
//   - tail: print documents published on a subject
//   - env: list the environment variables the commands read
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/RobertWHurst/swanjson"
)

// newLogger creates a new logger with timestamp formatting.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey int

const (
	loggerKey ctxKey = iota
	configKey
)

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// LogObserver reports members the serializer had to leave out as warnings.
func LogObserver(l *log.Logger) swanjson.Observer {
	return swanjson.ObserverFunc(func(err *swanjson.MemberError) {
		l.Warn("member skipped", "type", err.Type, "member", err.Member, "err", err.Err)
	})
}
