package logger

import "github.com/rs/zerolog"

type LoggerConfigJson struct {
	LogLevel string `json:"log_level"`
}

type LoggerConfig struct {
	LogLevel zerolog.Level
}

// ConvertToDomain falls back to info for an empty or unknown level name.
func (lcj LoggerConfigJson) ConvertToDomain() LoggerConfig {
	level, err := zerolog.ParseLevel(lcj.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return LoggerConfig{LogLevel: level}
}
