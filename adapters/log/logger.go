package log

import (
	"fmt"
	"os"

	"github.com/abhissng/chargehub/utils/helpers"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log struct holds the zap Logger instance.
type Log struct {
	*zap.Logger
	level    zap.AtomicLevel
	closeLog func() error
}

// NewBasicLogger creates a logger carrying the default configuration, used before config is loaded.
func NewBasicLogger(isProd bool) *Log {
	basicLogger, err := NewLogger(NewLoggerConfig(isProd))
	if err != nil {
		return NewNop()
	}
	return basicLogger
}

// NewNop returns a logger that discards everything.
func NewNop() *Log {
	return &Log{Logger: zap.NewNop(), level: zap.NewAtomicLevel()}
}

// FromZap wraps an existing zap logger; tests use it with zaptest/observer.
func FromZap(l *zap.Logger) *Log {
	return &Log{Logger: l, level: zap.NewAtomicLevel()}
}

// NewLogger creates a new Log instance from cfg.
func NewLogger(cfg *LoggerConfig) (*Log, error) {
	// 1. Set the log level
	atomicLevel := zap.NewAtomicLevel()
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	atomicLevel.SetLevel(level)

	// 2. Configure encoder settings
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "time",
		LevelKey:      "level",
		NameKey:       "log",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		EncodeLevel: func() zapcore.LevelEncoder {
			if cfg.IsProd {
				return zapcore.CapitalLevelEncoder
			}
			return zapcore.CapitalColorLevelEncoder
		}(),
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeCaller:   helpers.TailCallerEncoder(cfg.EncoderTailLength),
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	options := []zap.Option{
		zap.Fields(
			zap.String("environment", cfg.Environment),
			zap.String("service", cfg.ServiceName),
		),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
	}
	options = append(options, cfg.ZapOptions...)

	// 3. Select the encoder based on mode
	var encoder zapcore.Encoder
	if cfg.IsProd {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), atomicLevel)}

	// 4. Rotated file output, always JSON
	var closeFunc func() error
	if rotator := newRotator(cfg.File); rotator != nil {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), atomicLevel))
		closeFunc = rotator.Close
	}

	l := zap.New(zapcore.NewTee(cores...), options...)

	return &Log{Logger: l, level: atomicLevel, closeLog: closeFunc}, nil
}

// newRotator returns a lumberjack writer when a log file is configured.
func newRotator(file *FileConfig) *lumberjack.Logger {
	if file == nil || helpers.IsEmpty(file.Path) {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   file.Path,
		MaxSize:    valueOr(file.MaxSizeMB, 50),
		MaxBackups: valueOr(file.MaxBackups, 5),
		MaxAge:     valueOr(file.MaxAgeDays, 30),
		Compress:   file.Compress,
	}
}

func valueOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// SetLevel changes the level of this logger and every child created with With.
func (l *Log) SetLevel(level string) error {
	parsed, err := ParseLevel(level)
	if err != nil {
		return err
	}
	l.level.SetLevel(parsed)
	return nil
}

// Debug logs a message at the DebugLevel.
func (l *Log) Debug(msg string, fields ...zap.Field) {
	l.Logger.Debug(msg, fields...)
}

// Info logs a message at the InfoLevel.
func (l *Log) Info(msg string, fields ...zap.Field) {
	l.Logger.Info(msg, fields...)
}

// Warn logs a message at the WarnLevel.
func (l *Log) Warn(msg string, fields ...zap.Field) {
	l.Logger.Warn(msg, fields...)
}

// Error logs a message at the ErrorLevel.
func (l *Log) Error(msg string, fields ...zap.Field) {
	l.Logger.Error(msg, fields...)
}

// Fatal logs a message at the FatalLevel and then exits the program.
func (l *Log) Fatal(msg string, fields ...zap.Field) {
	l.Logger.Fatal(msg, fields...)
}

// With creates a child Log with the specified fields.
func (l *Log) With(fields ...zap.Field) *Log {
	return &Log{Logger: l.Logger.With(fields...), level: l.level}
}

// Printf logs a formatted message at the given level.
func (l *Log) Printf(level zapcore.Level, msg string, v ...any) {
	formattedMsg := fmt.Sprintf(msg, v...)
	switch level {
	case zap.DebugLevel:
		l.Logger.Debug(formattedMsg)
	case zap.InfoLevel:
		l.Logger.Info(formattedMsg)
	case zap.WarnLevel:
		l.Logger.Warn(formattedMsg)
	case zap.ErrorLevel:
		l.Logger.Error(formattedMsg)
	case zap.FatalLevel:
		l.Logger.Fatal(formattedMsg)
	}
}

// Sync flushes any buffered log entries. Applications should take care to call
// Sync before exiting.
func (l *Log) Sync() error {
	err := l.Logger.Sync()

	if l.closeLog != nil {
		if closeErr := l.closeLog(); closeErr != nil {
			if err != nil {
				return fmt.Errorf("zap sync error: %w; file close error: %v", err, closeErr)
			}
			return closeErr
		}
	}
	return err
}
