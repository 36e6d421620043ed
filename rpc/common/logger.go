package common

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/lni/dragonboat/v4/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerNames lists the package loggers used by hoxnet
var LoggerNames = []string{"transport", "client", "dispatcher", "codec", "lobby", "trace", "cmd"}

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger on top of zap)
// --------------------------------------------------------------------------

// hoxLogger implements the ILogger interface and writes through zap
type hoxLogger struct {
	level atomic.Int32
	sugar *zap.SugaredLogger
}

func (l *hoxLogger) SetLevel(level logger.LogLevel) {
	l.level.Store(int32(level))
}

func (l *hoxLogger) enabled(level logger.LogLevel) bool {
	return logger.LogLevel(l.level.Load()) >= level
}

func (l *hoxLogger) Debugf(format string, args ...interface{}) {
	if l.enabled(logger.DEBUG) {
		l.sugar.Debugf(format, args...)
	}
}

func (l *hoxLogger) Infof(format string, args ...interface{}) {
	if l.enabled(logger.INFO) {
		l.sugar.Infof(format, args...)
	}
}

func (l *hoxLogger) Warningf(format string, args ...interface{}) {
	if l.enabled(logger.WARNING) {
		l.sugar.Warnf(format, args...)
	}
}

func (l *hoxLogger) Errorf(format string, args ...interface{}) {
	if l.enabled(logger.ERROR) {
		l.sugar.Errorf(format, args...)
	}
}

func (l *hoxLogger) Panicf(format string, args ...interface{}) {
	l.sugar.Panicf(format, args...)
}

// NewZapLogger wraps a zap logger into a named ILogger. The returned logger
// starts at DEBUG level, filtering is left to the zap core.
func NewZapLogger(pkgName string, z *zap.Logger) logger.ILogger {
	l := &hoxLogger{sugar: z.Named(pkgName).Sugar()}
	l.SetLevel(logger.DEBUG)
	return l
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

var (
	baseMu sync.Mutex
	base   = newZap("console", os.Stdout)
)

// CreateLogger implements the dragonboat logger.Factory
func CreateLogger(pkgName string) logger.ILogger {
	baseMu.Lock()
	defer baseMu.Unlock()

	l := &hoxLogger{sugar: base.Named(pkgName).Sugar()}
	l.SetLevel(logger.INFO)
	return l
}

// newZap creates the zap logger all package loggers write through
func newZap(format string, out zapcore.WriteSyncer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if strings.ToLower(format) == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	// levels are filtered by the ILogger, the core lets everything pass
	core := zapcore.NewCore(encoder, out, zapcore.DebugLevel)
	return zap.New(core)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseLogLevel converts a string level to logger.LogLevel
func parseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info", "":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers initializes all loggers with the configured format and level
func InitLoggers(config ClientConfig) error {
	level, err := parseLogLevel(config.LogLevel)
	if err != nil {
		return err
	}

	baseMu.Lock()
	base = newZap(config.LogFormat, os.Stdout)
	baseMu.Unlock()

	// Set as the global logger factory
	logger.SetLoggerFactory(CreateLogger)

	for _, name := range LoggerNames {
		logger.GetLogger(name).SetLevel(level)
	}
	return nil
}

// SyncLoggers flushes buffered log entries
func SyncLoggers() {
	baseMu.Lock()
	defer baseMu.Unlock()
	_ = base.Sync()
}
