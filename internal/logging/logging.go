package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	AppLogFile   = "app.log"
	ErrorLogFile = "error.log"
	APILogFile   = "api.log"

	// Rotation threshold and backup count, in megabytes / files.
	maxSizeMB  = 10
	maxBackups = 5
)

// Loggers bundles the three process-wide log destinations. Construct once at
// startup and pass by reference; there is no package-level instance.
type Loggers struct {
	App   *zap.Logger
	Error *zap.Logger
	API   *zap.Logger
}

// New builds the app, error and api loggers, each rotating at 10MB with five
// backups. The app logger additionally mirrors to stdout. The log directory
// is created if missing.
func New(dir string) (*Loggers, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure logs dir: %w", err)
	}

	enc := zapcore.NewConsoleEncoder(encoderConfig(false))
	errEnc := zapcore.NewConsoleEncoder(encoderConfig(true))

	appCore := zapcore.NewTee(
		zapcore.NewCore(enc, rotatingSink(filepath.Join(dir, AppLogFile)), zap.InfoLevel),
		zapcore.NewCore(enc, zapcore.Lock(os.Stdout), zap.InfoLevel),
	)

	return &Loggers{
		App: zap.New(appCore).Named("intellichat"),
		Error: zap.New(
			zapcore.NewCore(errEnc, rotatingSink(filepath.Join(dir, ErrorLogFile)), zap.ErrorLevel),
			zap.AddCaller(),
			zap.AddCallerSkip(1),
		).Named("intellichat.error"),
		API: zap.New(
			zapcore.NewCore(enc, rotatingSink(filepath.Join(dir, APILogFile)), zap.InfoLevel),
		).Named("intellichat.api"),
	}, nil
}

// Line format: timestamp - level - name [- caller] - message.
func encoderConfig(withCaller bool) zapcore.EncoderConfig {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " - ",
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
	}
	if withCaller {
		cfg.CallerKey = "caller"
	}
	return cfg
}

func rotatingSink(path string) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	})
}

// LogException records an error with its stack trace in the error log.
func (l *Loggers) LogException(err error) {
	l.Error.Error("exception occurred", zap.Error(err), zap.Stack("stacktrace"))
}

// LogAPIRequest writes one line per request to the api log.
func (l *Loggers) LogAPIRequest(method, endpoint string, statusCode int, latency time.Duration) {
	l.API.Info(fmt.Sprintf("%s %s - %d - %.2fms",
		method, endpoint, statusCode, float64(latency.Microseconds())/1000))
}

// LogStartup writes the application startup banner to the app log.
func (l *Loggers) LogStartup(logsDir string) {
	banner := "============================================================"
	l.App.Info(banner)
	l.App.Info("IntelliChat starting")
	l.App.Info(fmt.Sprintf("Timestamp: %s", time.Now().Format(time.RFC3339)))
	l.App.Info(fmt.Sprintf("Logs directory: %s", logsDir))
	l.App.Info(banner)
}

// Sync flushes all three loggers. Call via defer in main.
func (l *Loggers) Sync() {
	l.App.Sync()
	l.Error.Sync()
	l.API.Sync()
}
