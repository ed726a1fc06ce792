package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// Logger defines a minimal logging contract compatible with go-logger.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider returns named loggers.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger allows attaching structured fields to a logger.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}

// Level orders log severities.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// String implements fmt.Stringer.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// BasicLogger writes `[LEVEL] msg key=value ...` lines. Fields are sorted by
// key; call arguments follow in the order given.
type BasicLogger struct {
	Writer   io.Writer
	MinLevel Level
	fields   map[string]any
	mu       *sync.Mutex
}

// Default returns a usable logger when none is provided.
func Default() Logger {
	return defaultLogger
}

// NewBasicLogger constructs a BasicLogger that logs to stdout by default.
func NewBasicLogger() *BasicLogger {
	return &BasicLogger{
		Writer:   os.Stdout,
		MinLevel: LevelInfo,
		mu:       &sync.Mutex{},
	}
}

// Or returns lgr, or the default logger when lgr is nil.
func Or(lgr Logger) Logger {
	if lgr == nil {
		return Default()
	}
	return lgr
}

// With attaches fields when lgr supports them.
func With(lgr Logger, fields map[string]any) Logger {
	lgr = Or(lgr)
	if fl, ok := lgr.(FieldsLogger); ok && len(fields) > 0 {
		return fl.WithFields(fields)
	}
	return lgr
}

// WithFields implements FieldsLogger.
func (l *BasicLogger) WithFields(fields map[string]any) Logger {
	if l == nil {
		out := NewBasicLogger()
		out.fields = copyFields(fields)
		return out
	}
	if len(fields) == 0 {
		return l
	}
	merged := copyFields(l.fields)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	for key, value := range fields {
		merged[key] = value
	}
	return &BasicLogger{
		Writer:   l.Writer,
		MinLevel: l.MinLevel,
		fields:   merged,
		mu:       l.lock(),
	}
}

// WithContext implements Logger.
func (l *BasicLogger) WithContext(ctx context.Context) Logger {
	return l
}

// Trace implements Logger.
func (l *BasicLogger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args...) }

// Debug implements Logger.
func (l *BasicLogger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }

// Info implements Logger.
func (l *BasicLogger) Info(msg string, args ...any) { l.log(LevelInfo, msg, args...) }

// Warn implements Logger.
func (l *BasicLogger) Warn(msg string, args ...any) { l.log(LevelWarn, msg, args...) }

// Error implements Logger.
func (l *BasicLogger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// Fatal implements Logger. It does not exit the process.
func (l *BasicLogger) Fatal(msg string, args ...any) { l.log(LevelFatal, msg, args...) }

func (l *BasicLogger) log(level Level, msg string, args ...any) {
	if l == nil || level < l.MinLevel {
		return
	}
	out := l.Writer
	if out == nil {
		out = os.Stdout
	}
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)
	writePairs(&b, fieldsToArgs(l.fields))
	writePairs(&b, args)

	mu := l.lock()
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, b.String())
}

// sharedMu serializes writes of loggers built without NewBasicLogger.
var sharedMu sync.Mutex

func (l *BasicLogger) lock() *sync.Mutex {
	if l.mu == nil {
		return &sharedMu
	}
	return l.mu
}

func writePairs(b *strings.Builder, args []any) {
	for i := 0; i < len(args); i += 2 {
		b.WriteByte(' ')
		if i+1 >= len(args) {
			fmt.Fprintf(b, "%v", args[i])
			return
		}
		fmt.Fprintf(b, "%v=%v", args[i], args[i+1])
	}
}

func copyFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		out[key] = value
	}
	return out
}

func fieldsToArgs(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(fields)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

var defaultLogger Logger = NewBasicLogger()

var _ Logger = (*BasicLogger)(nil)
var _ FieldsLogger = (*BasicLogger)(nil)
