package logger

import "sync"

type LoggerArg struct {
	Key   string
	Value string
}

type GlobalLoggerConfig struct {
	Args []LoggerArg
}

var (
	defaultLogger *Logger
	onceLogger    sync.Once
)

func InitDefaultLogger(config GlobalLoggerConfig) {
	onceLogger.Do(func() {
		defaultLogger = New()
		for _, arg := range config.Args {
			defaultLogger.zl = defaultLogger.zl.With().Str(arg.Key, arg.Value).Logger()
		}
	})
}

// Default returns the process logger, initializing it without extra fields when
// InitDefaultLogger was never called (tests, the CLI).
func Default() *Logger {
	InitDefaultLogger(GlobalLoggerConfig{})
	return defaultLogger
}

// ApplyConfig sets the level of the process logger once the config file is loaded.
func ApplyConfig(cfg LoggerConfig) {
	Default().WithLevel(cfg.LogLevel)
}
