package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. The level comes from NEWSGAP_LOG_LEVEL
// and defaults to info.
func New() *zap.Logger {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(currentLevel())
	log, err := config.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		// zap's production config only fails on bad output paths
		panic(err)
	}
	return log
}

func currentLevel() zapcore.Level {
	raw, _ := os.LookupEnv("NEWSGAP_LOG_LEVEL")
	switch strings.ToLower(raw) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warning", "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
