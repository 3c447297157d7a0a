package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var defaultLogger = build("info", "json")

// Init replaces the package logger. Called once from main; the default is
// an info-level JSON logger so packages can log before Init runs.
func Init(level, format string) {
	defaultLogger = build(level, format)
}

func build(levelStr, format string) *zap.Logger {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	l, _ := cfg.Build(zap.AddCallerSkip(1))
	return l
}

func Sync() {
	_ = defaultLogger.Sync()
}

func Debug(message string, fields ...map[string]interface{}) {
	defaultLogger.Debug(message, toZapFields(fields...)...)
}

func Info(message string, fields ...map[string]interface{}) {
	defaultLogger.Info(message, toZapFields(fields...)...)
}

func Warn(message string, fields ...map[string]interface{}) {
	defaultLogger.Warn(message, toZapFields(fields...)...)
}

func Error(message string, fields ...map[string]interface{}) {
	defaultLogger.Error(message, toZapFields(fields...)...)
}

var sensitiveKeys = []string{
	"key", "token", "secret", "password", "api_key",
	"signature", "authorization", "auth",
}

func toZapFields(fieldMaps ...map[string]interface{}) []zap.Field {
	var out []zap.Field
	for _, fields := range fieldMaps {
		for k, v := range fields {
			out = append(out, zap.Any(k, sanitize(k, v)))
		}
	}
	return out
}

// sanitize redacts values whose keys look like credentials so a misplaced
// log line cannot leak a secret.
func sanitize(key string, value interface{}) interface{} {
	keyLower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(keyLower, sensitive) {
			if str, ok := value.(string); ok && len(str) > 8 {
				return str[:3] + "..." + str[len(str)-3:]
			}
			return "[REDACTED]"
		}
	}
	return value
}
