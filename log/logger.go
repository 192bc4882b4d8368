// Package log provides structured logging with build session context.
//
// Two logger variants are available:
//   - Logger: Non-sugared zap.Logger for the build engine (structured fields)
//   - SugaredLogger: Printf-style logging for CLI/debug surfaces
//
// A nil *Logger discards everything, so the engine can log unconditionally.
package log

import (
	"io"
	"os"
	"reflect"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pithecene-io/modelforge/types"
)

// Logger provides structured logging with session context.
// All log entries include the session identity fields.
type Logger struct {
	zap *zap.Logger
}

// SugaredLogger provides printf-style logging for CLI and debug surfaces.
type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a new logger with session context.
// Output defaults to os.Stderr.
func NewLogger(session *types.SessionMeta) *Logger {
	return newLoggerWithWriter(session, os.Stderr, zapcore.InfoLevel)
}

// NewDebugLogger creates a logger that also records per-step build entries.
func NewDebugLogger(session *types.SessionMeta, w io.Writer) *Logger {
	return newLoggerWithWriter(session, w, zapcore.DebugLevel)
}

// WithOutput returns a new logger with a different output writer.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	if l == nil {
		return nil
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return &Logger{zap: l.zap.WithOptions(zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
}

// newLoggerWithWriter creates a logger writing to the specified writer.
func newLoggerWithWriter(session *types.SessionMeta, w io.Writer, level zapcore.Level) *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(w),
		level,
	)

	var contextFields []zap.Field
	if session != nil {
		contextFields = append(contextFields, zap.String("session_id", session.SessionID))
		if session.Seed != nil {
			contextFields = append(contextFields, zap.Uint64("seed", *session.Seed))
		}
	}

	return &Logger{zap: zap.New(core).With(contextFields...)}
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields map[string]any) {
	if l == nil {
		return
	}
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs an info message.
func (l *Logger) Info(message string, fields map[string]any) {
	if l == nil {
		return
	}
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields map[string]any) {
	if l == nil {
		return
	}
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Error logs an error message.
func (l *Logger) Error(message string, fields map[string]any) {
	if l == nil {
		return
	}
	l.zap.Error(message, zap.Any("fields", fields))
}

// --- Build steps ---

// CreatingType records the start of a build.
func (l *Logger) CreatingType(t reflect.Type, reference string, depth int) {
	if l == nil || !l.zap.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	l.zap.Debug("creating type",
		zap.Stringer("type", t),
		zap.String("reference", reference),
		zap.Int("depth", depth),
	)
}

// MappedType records a type-mapping substitution.
func (l *Logger) MappedType(from, to reflect.Type) {
	if l == nil {
		return
	}
	l.zap.Debug("mapped type", zap.Stringer("from", from), zap.Stringer("to", to))
}

// ResolvedBy records which component produced a value.
func (l *Logger) ResolvedBy(t reflect.Type, reference, component string) {
	if l == nil || !l.zap.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	l.zap.Debug("resolved",
		zap.Stringer("type", t),
		zap.String("reference", reference),
		zap.String("by", component),
	)
}

// ConstructorSelected records the constructor chosen for a type.
func (l *Logger) ConstructorSelected(t reflect.Type, constructor string) {
	if l == nil {
		return
	}
	l.zap.Debug("constructor selected", zap.Stringer("type", t), zap.String("constructor", constructor))
}

// PopulatingProperty records a property about to be populated.
func (l *Logger) PopulatingProperty(owner reflect.Type, name string, priority int) {
	if l == nil || !l.zap.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	l.zap.Debug("populating property",
		zap.Stringer("type", owner),
		zap.String("property", name),
		zap.Int("priority", priority),
	)
}

// IgnoringProperty records a property skipped by an ignore rule.
func (l *Logger) IgnoringProperty(owner reflect.Type, name string) {
	if l == nil {
		return
	}
	l.zap.Debug("ignoring property", zap.Stringer("type", owner), zap.String("property", name))
}

// ReusingAncestor records an ancestor assigned in place of a new value.
func (l *Logger) ReusingAncestor(t reflect.Type, reference string) {
	if l == nil {
		return
	}
	l.zap.Debug("reusing ancestor", zap.Stringer("type", t), zap.String("reference", reference))
}

// BuildFailed records a failed top-level build.
func (l *Logger) BuildFailed(t reflect.Type, err error) {
	if l == nil {
		return
	}
	l.zap.Error("build failed", zap.Stringer("type", t), zap.Error(err))
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.zap.Sync()
}

// Sugar returns a SugaredLogger for printf-style logging.
func (l *Logger) Sugar() *SugaredLogger {
	if l == nil {
		return &SugaredLogger{sugar: zap.NewNop().Sugar()}
	}
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

// Debugf logs a debug message with printf-style formatting.
func (s *SugaredLogger) Debugf(template string, args ...any) {
	s.sugar.Debugf(template, args...)
}

// Infof logs an info message with printf-style formatting.
func (s *SugaredLogger) Infof(template string, args ...any) {
	s.sugar.Infof(template, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (s *SugaredLogger) Warnf(template string, args ...any) {
	s.sugar.Warnf(template, args...)
}

// Errorf logs an error message with printf-style formatting.
func (s *SugaredLogger) Errorf(template string, args ...any) {
	s.sugar.Errorf(template, args...)
}

// With returns a SugaredLogger with additional context fields.
func (s *SugaredLogger) With(args ...any) *SugaredLogger {
	return &SugaredLogger{sugar: s.sugar.With(args...)}
}
