package observability

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/sumandas0/plantmodel/pkg/utils"
)

type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
	LogLevelPanic LogLevel = "panic"
)

type LogFormat string

const (
	LogFormatJSON    LogFormat = "json"
	LogFormatConsole LogFormat = "console"
)

type LoggingConfig struct {
	Level      LogLevel  `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic"`
	Format     LogFormat `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json console"`
	Output     string    `yaml:"output" mapstructure:"output"`
	TimeFormat string    `yaml:"time_format" mapstructure:"time_format"`
}

type Logger struct {
	logger zerolog.Logger
	config LoggingConfig
	closer io.Closer
}

// NewLogger builds a logger writing to stdout, stderr or the file named by
// config.Output.
func NewLogger(config LoggingConfig) (*Logger, error) {
	var output io.Writer
	var closer io.Closer
	switch config.Output {
	case "stderr", "":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, utils.NewAppError(utils.CodeIO, "failed to open log file", err).
				WithDetail("path", config.Output)
		}
		output = file
		closer = file
	}

	l := NewLoggerWithWriter(config, output)
	l.closer = closer
	return l, nil
}

// NewLoggerWithWriter builds a logger on an arbitrary writer.
func NewLoggerWithWriter(config LoggingConfig, output io.Writer) *Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	if config.Format == LogFormatConsole {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: getTimeFormat(config.TimeFormat),
		}
	}

	logger := zerolog.New(output).
		Level(parseLogLevel(config.Level)).
		With().
		Timestamp().
		Str("service", "plantmodel").
		Logger()

	return &Logger{
		logger: logger,
		config: config,
	}
}

// NopLogger discards everything.
func NopLogger() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.logger.With()
	if traceInfo := ExtractTraceInfo(ctx); traceInfo != nil {
		for key, value := range traceInfo {
			logger = logger.Str(key, value)
		}
	}
	contextLogger := logger.Logger()
	return &contextLogger
}

func (l *Logger) WithComponent(kind, name string) *zerolog.Logger {
	logger := l.logger.With().
		Str("kind", kind).
		Str("component", name).
		Logger()
	return &logger
}

func (l *Logger) WithOperation(operation string) *zerolog.Logger {
	logger := l.logger.With().
		Str("operation", operation).
		Logger()
	return &logger
}

func (l *Logger) WithDuration(duration time.Duration) *zerolog.Logger {
	logger := l.logger.With().
		Dur("duration", duration).
		Logger()
	return &logger
}

func (l *Logger) WithError(err error) *zerolog.Logger {
	logger := l.logger.With().
		Stack().
		Err(err).
		Logger()
	return &logger
}

// LogAppError writes err with its code and details.
func (l *Logger) LogAppError(ctx context.Context, err *utils.AppError) {
	event := l.WithContext(ctx).Error().
		Str("error_code", err.Code).
		Interface("error_details", err.Details)
	if err.Err != nil {
		event = event.AnErr("cause", err.Err)
	}
	event.Msg(err.Message)
}

func (l *Logger) GetZerologLogger() zerolog.Logger {
	return l.logger
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func parseLogLevel(level LogLevel) zerolog.Level {
	switch level {
	case LogLevelTrace:
		return zerolog.TraceLevel
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelFatal:
		return zerolog.FatalLevel
	case LogLevelPanic:
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

func getTimeFormat(format string) string {
	if format == "" {
		return time.RFC3339
	}
	return format
}

func SetGlobalLogger(logger *Logger) {
	log.Logger = logger.logger
}
