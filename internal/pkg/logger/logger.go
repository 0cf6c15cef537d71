package logger

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var zapLevels = map[Level]zapcore.Level{
	DEBUG: zapcore.DebugLevel,
	INFO:  zapcore.InfoLevel,
	WARN:  zapcore.WarnLevel,
	ERROR: zapcore.ErrorLevel,
}

// Logger wraps a zap SugaredLogger with key/value PII redaction.
type Logger struct {
	mu        sync.RWMutex
	sugar     *zap.SugaredLogger
	level     zap.AtomicLevel
	redactPII bool
}

var defaultLogger = newDefault()

func newDefault() *Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	z, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{sugar: z.Sugar(), level: level, redactPII: true}
}

// Init rebuilds the default logger for the given environment. "production"
// and "prod" use the JSON encoder, anything else the console encoder.
func Init(environment string, level string) error {
	var cfg zap.Config
	switch strings.ToLower(environment) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	lvl := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return fmt.Errorf("parse log level %q: %w", level, err)
		}
	}
	cfg.Level = lvl

	z, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return fmt.Errorf("build zap logger: %w", err)
	}

	defaultLogger.mu.Lock()
	defaultLogger.sugar = z.Sugar()
	defaultLogger.level = lvl
	defaultLogger.mu.Unlock()
	return nil
}

// Sync flushes buffered entries.
func Sync() {
	defaultLogger.mu.RLock()
	defer defaultLogger.mu.RUnlock()
	_ = defaultLogger.sugar.Sync()
}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(l Level) { defaultLogger.level.SetLevel(zapLevels[l]) }

// SetRedactPII enables or disables PII redaction for the default logger.
func SetRedactPII(r bool) {
	defaultLogger.mu.Lock()
	defaultLogger.redactPII = r
	defaultLogger.mu.Unlock()
}

// Debug emits a DEBUG-level structured log entry.
func Debug(msg string, fields ...interface{}) { defaultLogger.log(DEBUG, msg, fields...) }

// Info emits an INFO-level structured log entry.
func Info(msg string, fields ...interface{}) { defaultLogger.log(INFO, msg, fields...) }

// Warn emits a WARN-level structured log entry.
func Warn(msg string, fields ...interface{}) { defaultLogger.log(WARN, msg, fields...) }

// Error emits an ERROR-level structured log entry.
func Error(msg string, fields ...interface{}) { defaultLogger.log(ERROR, msg, fields...) }

func (l *Logger) log(level Level, msg string, fields ...interface{}) {
	l.mu.RLock()
	sugar, redact := l.sugar, l.redactPII
	l.mu.RUnlock()

	if redact {
		fields = sanitizeFields(fields)
	}

	switch level {
	case DEBUG:
		sugar.Debugw(msg, fields...)
	case WARN:
		sugar.Warnw(msg, fields...)
	case ERROR:
		sugar.Errorw(msg, fields...)
	default:
		sugar.Infow(msg, fields...)
	}
}

func sanitizeFields(fields []interface{}) []interface{} {
	if len(fields) == 0 {
		return fields
	}
	out := make([]interface{}, 0, len(fields))
	for i := 0; i < len(fields); i += 2 {
		if i == len(fields)-1 {
			out = append(out, fields[i])
			break
		}
		key := fmt.Sprintf("%v", fields[i])
		out = append(out, key, redactPIIValue(key, fields[i+1]))
	}
	return out
}

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

func redactPIIValue(key string, val interface{}) interface{} {
	s, ok := val.(string)
	if !ok {
		// errors and other scalars keep their type for zap
		return val
	}
	k := strings.ToLower(key)
	switch {
	case strings.Contains(k, "email"):
		return RedactEmail(s)
	case strings.Contains(k, "phone"):
		return RedactPhone(s)
	case strings.Contains(k, "secret"), strings.Contains(k, "signing_key"), strings.Contains(k, "password"):
		return "[REDACTED]"
	}
	return emailRegex.ReplaceAllStringFunc(s, RedactEmail)
}
