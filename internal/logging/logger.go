// Package logging provides leveled, structured logging for dockyard role
// processes, backed by zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger with the key-value call shape every role
// process uses for its event trail.
type Logger struct {
	zl zerolog.Logger
}

var (
	defaultLogger *Logger
	mu            sync.RWMutex
)

// LogLevel is the dockyard level enum, mapped onto zerolog.Level.
type LogLevel int

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

// ParseLevel parses spec section 6's LOG_LEVEL values, case-insensitively.
// Unrecognized input falls back to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "err", "error":
		return LevelError
	case "crit", "critical":
		return LevelCritical
	case "off", "none":
		return LevelOff
	default:
		return LevelInfo
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LevelTrace:
		return zerolog.TraceLevel
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelCritical:
		return zerolog.FatalLevel
	case LevelOff:
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Config holds logging configuration, sourced from spec section 6 env vars
// via internal/config.
type Config struct {
	Level       LogLevel
	ToConsole   bool
	ToFile      bool
	FilePath    string
	Role        string
	ExtraOutput io.Writer // used by tests to capture output
}

// DefaultConfig returns console-only, info-level logging.
func DefaultConfig() *Config {
	return &Config{
		Level:     LevelInfo,
		ToConsole: true,
		ToFile:    false,
	}
}

// NewLogger builds a Logger from Config, wiring zerolog's ConsoleWriter for
// LOG_TO_CONSOLE and a plain JSON file writer for LOG_TO_FILE, composed with
// io.MultiWriter exactly as the teacher's Logger composed a single
// io.Writer into a stdlib log.Logger.
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	var writers []io.Writer
	if config.ToConsole {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if config.ToFile {
		path := config.FilePath
		if path == "" {
			path = "logs/dockyard.log"
		}
		if f, err := openLogFile(path); err == nil {
			writers = append(writers, f)
		}
	}
	if config.ExtraOutput != nil {
		writers = append(writers, config.ExtraOutput)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	out := io.MultiWriter(writers...)
	zl := zerolog.New(out).Level(config.Level.zerolog()).With().Timestamp().Logger()
	if config.Role != "" {
		zl = zl.With().Str("role", config.Role).Logger()
	}
	return &Logger{zl: zl}
}

func openLogFile(path string) (io.Writer, error) {
	if dir := dirOf(path); dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return ""
}

// Default returns the process-wide default logger, creating a console/info
// logger on first use.
func Default() *Logger {
	mu.RLock()
	if defaultLogger != nil {
		defer mu.RUnlock()
		return defaultLogger
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(nil)
	}
	return defaultLogger
}

// SetDefault installs logger as the process-wide default.
func SetDefault(logger *Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

// Init builds and installs the default logger for role from Config,
// returning it for callers that want to hold a reference directly.
func Init(role string, config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	config.Role = role
	l := NewLogger(config)
	SetDefault(l)
	return l
}

func withFields(e *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	return e
}

func (l *Logger) Trace(msg string, args ...any) { withFields(l.zl.Trace(), args).Msg(msg) }
func (l *Logger) Debug(msg string, args ...any) { withFields(l.zl.Debug(), args).Msg(msg) }
func (l *Logger) Info(msg string, args ...any)  { withFields(l.zl.Info(), args).Msg(msg) }
func (l *Logger) Warn(msg string, args ...any)  { withFields(l.zl.Warn(), args).Msg(msg) }
func (l *Logger) Error(msg string, args ...any) { withFields(l.zl.Error(), args).Msg(msg) }

// Critical logs an InvariantViolation-class event (spec section 7) without
// terminating the process — callers decide how the affected role unwinds.
func (l *Logger) Critical(msg string, args ...any) {
	withFields(l.zl.WithLevel(zerolog.FatalLevel), args).Msg(msg)
}

// Printf-style variants, kept for call sites ported verbatim from the
// teacher repo's command-construction code.
func (l *Logger) Debugf(format string, args ...any) { l.zl.Debug().Msgf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.zl.Info().Msgf(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.zl.Warn().Msgf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.zl.Error().Msgf(format, args...) }

// Printf satisfies simple Logger interfaces expected by library callbacks.
func (l *Logger) Printf(format string, args ...any) { l.Infof(format, args...) }

// Global convenience functions mirroring the teacher's package-level
// Debug/Info/Warn/Error helpers.
func Debug(msg string, args ...any) { Default().Debug(msg, args...) }
func Info(msg string, args ...any)  { Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }
