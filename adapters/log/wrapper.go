package log

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhissng/chargehub/blame"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/helpers"
	"github.com/abhissng/chargehub/utils/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity level of a log message.
type LogLevel string

const (
	// DebugLevel is the lowest severity level, used for detailed debugging information.
	DebugLevel LogLevel = "debug"
	// InfoLevel is used for general informational messages.
	InfoLevel LogLevel = "info"
	// WarnLevel is used for warnings and potential problems.
	WarnLevel LogLevel = "warn"
	// ErrorLevel is used for errors that have occurred.
	ErrorLevel LogLevel = "error"
	// FatalLevel is the highest severity level, used for critical errors that result in program termination.
	FatalLevel LogLevel = "fatal"
)

// ParseLevel converts a configured level name to a zap level; empty means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch LogLevel(strings.ToLower(strings.TrimSpace(level))) {
	case "", InfoLevel:
		return zapcore.InfoLevel, nil
	case DebugLevel:
		return zapcore.DebugLevel, nil
	case WarnLevel, "warning":
		return zapcore.WarnLevel, nil
	case ErrorLevel:
		return zapcore.ErrorLevel, nil
	case FatalLevel:
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// String creates a single types.Field (string) for a given key-value pair.
func String(key string, value string) types.Field {
	return zap.String(key, value)
}

// Int creates a single types.Field (int) for a given key-value pair.
func Int(key string, value int) types.Field {
	return zap.Int(key, value)
}

// Int64 creates a single types.Field (int64) for a given key-value pair.
func Int64(key string, value int64) types.Field {
	return zap.Int64(key, value)
}

// Bool creates a single types.Field (bool) for a given key-value pair.
func Bool(key string, value bool) types.Field {
	return zap.Bool(key, value)
}

// Duration creates a single types.Field (time.Duration) for a given key-value pair.
func Duration(key string, value time.Duration) types.Field {
	return zap.Duration(key, value)
}

// Any creates a single types.Field (any) for a given key-value pair.
func Any(key string, value any) types.Field {
	return zap.Any(key, value)
}

// Err creates a single types.Field (error) for a given error.
func Err(err error) types.Field {
	return zap.Error(err)
}

// Component tags a child logger with the component name.
func Component(name string) types.Field {
	return zap.String(constant.Component, name)
}

type errorArray []error

func (a errorArray) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, e := range a {
		if e == nil {
			enc.AppendString("<nil>")
		} else {
			enc.AppendString(e.Error())
		}
	}
	return nil
}

// Blame creates a field carrying the error code and causes of b.
func Blame(b blame.Blame) zap.Field {
	if b == nil {
		return zap.Skip()
	}
	cs := b.FetchCauses()
	switch len(cs) {
	case 0:
		return zap.String("error_code", b.FetchErrCode().String())
	case 1:
		return zap.NamedError(b.FetchErrCode().String(), cs[0])
	default:
		return zap.Array(b.FetchErrCode().String(), errorArray(cs))
	}
}

// FileConfig enables rotated file output.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// LoggerConfig configures NewLogger.
type LoggerConfig struct {
	// IsProd enables production mode (JSON output)
	IsProd bool

	// Level is one of debug, info, warn, error
	Level string

	// File, when set, adds a rotated JSON file output
	File *FileConfig

	// ZapOptions are the standard zap logger options
	ZapOptions []zap.Option

	// ServiceName overrides the default service name
	ServiceName string

	// Environment overrides the default environment
	Environment string

	// EncoderTailLength overrides the default encoder tail length
	EncoderTailLength int
}

// LoggerOption defines a function that modifies LoggerConfig
type LoggerOption func(*LoggerConfig)

// NewLoggerConfig creates a new LoggerConfig with default values
func NewLoggerConfig(isProd bool, opts ...LoggerOption) *LoggerConfig {
	cfg := &LoggerConfig{
		ServiceName:       constant.ServiceName,
		Environment:       helpers.GetEnvironment(),
		IsProd:            isProd,
		EncoderTailLength: 3,
	}
	if isProd {
		cfg.Level = string(InfoLevel)
	} else {
		cfg.Level = string(DebugLevel)
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// WithLevel sets the minimum level; empty keeps the default.
func WithLevel(level string) LoggerOption {
	return func(c *LoggerConfig) {
		if !helpers.IsEmpty(level) {
			c.Level = level
		}
	}
}

// WithFile adds rotated file output.
func WithFile(file *FileConfig) LoggerOption {
	return func(c *LoggerConfig) {
		c.File = file
	}
}

// WithZapOptions adds zap logger options
func WithZapOptions(opts ...zap.Option) LoggerOption {
	return func(c *LoggerConfig) {
		c.ZapOptions = append(c.ZapOptions, opts...)
	}
}

// WithServiceName sets the service name
func WithServiceName(name string) LoggerOption {
	return func(c *LoggerConfig) {
		if name != "" {
			c.ServiceName = name
		}
	}
}

// WithEnvironment sets the environment
func WithEnvironment(env string) LoggerOption {
	return func(c *LoggerConfig) {
		if env != "" {
			c.Environment = env
		}
	}
}

// WithEncoderTailLength sets the encoder tail length
func WithEncoderTailLength(length int) LoggerOption {
	return func(c *LoggerConfig) {
		if length > 0 {
			// Values <= 2 fall back to the short encoder
			if length <= 2 {
				length = 0
			}
			if length > 7 {
				length = 7
			}
			c.EncoderTailLength = length
		}
	}
}
