package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	zl   zerolog.Logger
	sink SinkFunc
}

func New() *Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	return &Logger{zl: logger}
}

func NewFromConfig(cfg LoggerConfig) *Logger {
	if cfg.LogLevel == zerolog.NoLevel {
		cfg.LogLevel = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(cfg.LogLevel)

	return &Logger{zl: logger}
}

func (l *Logger) WithOutput(w io.Writer) *Logger {
	l.zl = l.zl.Output(w)
	return l
}

func (l *Logger) WithLevel(level zerolog.Level) *Logger {
	l.zl = l.zl.Level(level)
	return l
}

// WithField returns a child logger carrying key=value on every entry. The sink is shared.
func (l *Logger) WithField(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger(), sink: l.sink}
}

func (l *Logger) WithContext(ctx context.Context) *Logger {
	return &Logger{zl: l.zl.With().Logger(), sink: l.sink}
}

func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

func (l *Logger) Debug(msg string) {
	l.zl.Debug().Msg(msg)
	l.activateSink(msg, zerolog.DebugLevel)
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.zl.Debug().Msgf(format, v...)
	l.activateSinkFormatted(zerolog.DebugLevel, format, v...)
}

func (l *Logger) Info(msg string) {
	l.zl.Info().Msg(msg)
	l.activateSink(msg, zerolog.InfoLevel)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
	l.activateSinkFormatted(zerolog.InfoLevel, format, v...)
}

func (l *Logger) Warn(msg string) {
	l.zl.Warn().Msg(msg)
	l.activateSink(msg, zerolog.WarnLevel)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
	l.activateSinkFormatted(zerolog.WarnLevel, format, v...)
}

func (l *Logger) Error(err error, msg string) {
	l.zl.Error().Err(err).Msg(msg)
	l.activateSink(msg, zerolog.ErrorLevel)
}

func (l *Logger) Errorf(err error, format string, v ...interface{}) {
	l.zl.Error().Err(err).Msgf(format, v...)
	l.activateSinkFormatted(zerolog.ErrorLevel, format, v...)
}

func (l *Logger) Fatal(err error, msg string) {
	l.activateSink(msg, zerolog.FatalLevel)
	l.zl.Fatal().Err(err).Msg(msg)
}

func (l *Logger) Fatalf(err error, format string, v ...interface{}) {
	l.activateSinkFormatted(zerolog.FatalLevel, format, v...)
	l.zl.Fatal().Err(err).Msgf(format, v...)
}

func (l *Logger) Panicf(err error, format string, v ...interface{}) {
	l.activateSinkFormatted(zerolog.PanicLevel, format, v...)
	l.zl.Panic().Err(err).Msgf(format, v...)
}

func (l *Logger) Log(level zerolog.Level, msg string) {
	l.zl.WithLevel(level).Msg(msg)
	l.activateSink(msg, level)
}

func (l *Logger) Logf(level zerolog.Level, format string, v ...interface{}) {
	l.zl.WithLevel(level).Msgf(format, v...)
	l.activateSinkFormatted(level, format, v...)
}
