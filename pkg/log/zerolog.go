package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	cerrors "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

const (
	// ErrAttrKey is the field name used for error values.
	ErrAttrKey = "error"
	// StacktraceAttrKey is the field name used for extracted stack traces.
	StacktraceAttrKey = "stacktrace"
)

// zerologLogger implements Logger on top of rs/zerolog.
type zerologLogger struct {
	zl    zerolog.Logger
	level Level
}

// NewZerologLogger creates a Logger writing JSON lines to w at the given level.
func NewZerologLogger(w io.Writer, level Level) Logger {
	zl := zerolog.New(w).With().Timestamp().Logger()
	return &zerologLogger{zl: zl, level: level}
}

func (l *zerologLogger) Debug(msg string, fields ...any) {
	if l.level <= LevelDebug {
		l.emit(l.zl.Debug(), msg, fields...)
	}
}

func (l *zerologLogger) Info(msg string, fields ...any) {
	if l.level <= LevelInfo {
		l.emit(l.zl.Info(), msg, fields...)
	}
}

func (l *zerologLogger) Warn(msg string, fields ...any) {
	if l.level <= LevelWarn {
		l.emit(l.zl.Warn(), msg, fields...)
	}
}

func (l *zerologLogger) Error(msg string, fields ...any) {
	if l.level <= LevelError {
		l.emit(l.zl.Error(), msg, fields...)
	}
}

func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger(), level: l.level}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return l.level <= level
}

// emit appends the structured fields onto a zerolog event and fires it.
// Error values additionally carry any cockroachdb/errors stack trace under
// StacktraceAttrKey.
func (l *zerologLogger) emit(ev *zerolog.Event, msg string, fields ...any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			ev = ev.Object(key, v)
			if err, ok := v.(error); ok {
				if st := extractStacktrace(err); st != "" {
					ev = ev.Str(StacktraceAttrKey, st)
				}
			}
		case error:
			ev = ev.AnErr(key, v)
			if st := extractStacktrace(v); st != "" {
				ev = ev.Str(StacktraceAttrKey, st)
			}
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

// extractStacktrace pulls the first safe detail (the formatted stack trace)
// out of a cockroachdb/errors error, if present.
func extractStacktrace(err error) string {
	safeDetails := cerrors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

// zerologProvider is the default LoggerProvider.
type zerologProvider struct {
	mu     sync.RWMutex
	out    io.Writer
	level  Level
	logger Logger
}

func (p *zerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.logger
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

func (p *zerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	p.logger = NewZerologLogger(p.out, level)
}

var (
	providerMu      sync.RWMutex
	defaultProvider LoggerProvider = &zerologProvider{
		out:    os.Stderr,
		level:  LevelInfo,
		logger: NewZerologLogger(os.Stderr, LevelInfo),
	}
)

// SetProvider replaces the package-level provider. Intended for tests and
// for applications that bring their own backend.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultProvider = p
}

// GetLogger returns the default logger.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLoggerWithName(name)
}

// SetLevel adjusts the minimum level of the default provider.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	defaultProvider.SetLevel(level)
}
