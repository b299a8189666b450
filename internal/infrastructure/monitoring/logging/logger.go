// Package logging is the only place in the Ingredient Intelligence Engine
// allowed to import go.uber.org/zap directly. Every package that logs takes
// a Logger by constructor injection instead, so cmd/apiserver and cmd/worker
// are the only callers that ever build one from configuration.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a typed key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// zapField converts a single Field to its zap.Field equivalent. Keeping this
// as a method on Field rather than a bulk converter lets each call site's
// field fall through to the right zap constructor without reflection.
func (f Field) zapField() zap.Field {
	switch v := f.Value.(type) {
	case string:
		return zap.String(f.Key, v)
	case int:
		return zap.Int(f.Key, v)
	case int64:
		return zap.Int64(f.Key, v)
	case float64:
		return zap.Float64(f.Key, v)
	case bool:
		return zap.Bool(f.Key, v)
	case time.Duration:
		return zap.Duration(f.Key, v)
	case error:
		return zap.NamedError(f.Key, v)
	default:
		return zap.Any(f.Key, v)
	}
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = f.zapField()
	}
	return out
}

// String builds a string-valued Field.
func String(key, val string) Field { return Field{Key: key, Value: val} }

// Int builds an int-valued Field.
func Int(key string, val int) Field { return Field{Key: key, Value: val} }

// Int64 builds an int64-valued Field.
func Int64(key string, val int64) Field { return Field{Key: key, Value: val} }

// Float64 builds a float64-valued Field.
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }

// Bool builds a bool-valued Field.
func Bool(key string, val bool) Field { return Field{Key: key, Value: val} }

// Duration builds a time.Duration-valued Field.
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }

// Any builds a Field from an arbitrary value, falling back to zap's
// reflection-based encoder. Prefer a typed constructor when one exists.
func Any(key string, val interface{}) Field { return Field{Key: key, Value: val} }

// Err wraps err under the conventional "error" key. A nil err still produces
// a field rather than being dropped, so call sites don't need to branch.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Ingredient tags a log entry with the canonical ingredient name it concerns,
// used throughout the catalog, aggregator, and registry sync paths.
func Ingredient(name string) Field { return Field{Key: "ingredient", Value: name} }

// Logger is the structured logging contract every component depends on.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Fatal logs at FATAL and then terminates the process. Reserved for
	// startup failures in cmd/*/main.go; never call it on a request path.
	Fatal(msg string, fields ...Field)

	// With returns a child Logger carrying fields on every future entry.
	With(fields ...Field) Logger

	// Named returns a child Logger whose name is the parent's name plus
	// name, period-separated (e.g. "iie" -> "iie.worker").
	Named(name string) Logger
}

// LogConfig carries the parameters NewLogger needs, normally populated from
// internal/config.LogConfig.
type LogConfig struct {
	Level            string   `yaml:"level" json:"level"`
	Format           string   `yaml:"format" json:"format"`
	OutputPaths      []string `yaml:"output_paths" json:"output_paths"`
	ErrorOutputPaths []string `yaml:"error_output_paths" json:"error_output_paths"`
}

type zapLogger struct {
	z *zap.Logger
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, zapFields(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, zapFields(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, zapFields(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, zapFields(fields)...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.z.Fatal(msg, zapFields(fields)...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(zapFields(fields)...)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name)}
}

var levelByName = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

func resolveLevel(s string) zapcore.Level {
	if lvl, ok := levelByName[strings.ToLower(s)]; ok {
		return lvl
	}
	return zapcore.InfoLevel
}

// NewLogger builds a Logger from cfg. Unset fields default to level=info,
// format=json, outputs=[stdout], and error outputs=[stderr]. Fails only if
// zap cannot open a configured output path.
func NewLogger(cfg LogConfig) (Logger, error) {
	if len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = []string{"stdout"}
	}
	if len(cfg.ErrorOutputPaths) == 0 {
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	isConsole := cfg.Format == "console"

	encCfg := zap.NewProductionEncoderConfig()
	encoding := "json"
	if isConsole {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encoding = "console"
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(resolveLevel(cfg.Level)),
		Development:      isConsole,
		Encoding:         encoding,
		EncoderConfig:    encCfg,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: cfg.ErrorOutputPaths,
	}

	z, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logging: build zap logger: %w", err)
	}
	return &zapLogger{z: z}, nil
}

// NewLoggerFromCore wraps an existing zapcore.Core, used by tests that want
// to assert on captured log entries via zaptest/observer.
func NewLoggerFromCore(core zapcore.Core) Logger {
	return &zapLogger{z: zap.New(core, zap.AddCallerSkip(1))}
}

type nopLogger struct{}

func (nopLogger) Debug(_ string, _ ...Field) {}
func (nopLogger) Info(_ string, _ ...Field)  {}
func (nopLogger) Warn(_ string, _ ...Field)  {}
func (nopLogger) Error(_ string, _ ...Field) {}
func (nopLogger) Fatal(_ string, _ ...Field) {}
func (n nopLogger) With(_ ...Field) Logger   { return n }
func (n nopLogger) Named(_ string) Logger    { return n }

// NewNopLogger returns a Logger that discards everything, for unit tests
// that don't want log noise and components run without observability.
func NewNopLogger() Logger { return nopLogger{} }

type defaultHolder struct {
	mu  sync.RWMutex
	log Logger
}

var global = &defaultHolder{log: nopLogger{}}

// SetDefault replaces the process-wide Logger returned by Default. Call once
// during startup before any goroutine reads Default(); a nil l is ignored.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	global.mu.Lock()
	global.log = l
	global.mu.Unlock()
}

// Default returns the process-wide Logger, for the rare init-time code path
// that cannot receive one by injection.
func Default() Logger {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.log
}
